package pack

import (
	"fmt"

	"rld/internal/space"
)

// substrate supplies the numeric primitives the shared traversal needs.
type substrate[L any] interface {
	// flatten coerces a leaf for box into a flat block (rank 1, or rank 2
	// for batched tensor leaves).
	flatten(leaf L, box space.Box) (L, error)
	// concat joins packed children in order.
	concat(parts []L) (L, error)
	// reshape turns a rank-1 block into shape.
	reshape(flat L, shape []int) (L, error)
	// split cuts a rank-1 block into consecutive pieces.
	split(flat L, sizes []int) ([]L, error)
}

// Size returns the flat element count of s.
func Size(s space.Space) (int, error) { return space.Size(s) }

func pack[L any](sub substrate[L], o Obs[L], s space.Space) (L, error) {
	var zero L
	switch sp := s.(type) {
	case space.Box:
		leaf, ok := o.(Leaf[L])
		if !ok {
			return zero, fmt.Errorf("%w: %s needs a leaf, got %s", ErrStructure, sp, obsKind[L](o))
		}
		return sub.flatten(leaf.Value, sp)
	case space.Dict:
		m, ok := o.(*Map[L])
		if !ok || m == nil {
			return zero, fmt.Errorf("%w: %s needs a mapping, got %s", ErrStructure, sp, obsKind[L](o))
		}
		parts := make([]L, 0, sp.Len())
		for _, e := range sp.Entries() {
			child, ok := m.Get(e.Name)
			if !ok {
				return zero, fmt.Errorf("%w %q", ErrMissingKey, e.Name)
			}
			p, err := pack(sub, child, e.Space)
			if err != nil {
				return zero, fmt.Errorf("%s: %w", e.Name, err)
			}
			parts = append(parts, p)
		}
		return sub.concat(parts)
	default:
		return zero, space.Unsupported(s)
	}
}

func unpack[L any](sub substrate[L], flat L, s space.Space) (Obs[L], error) {
	switch sp := s.(type) {
	case space.Box:
		v, err := sub.reshape(flat, sp.Shape())
		if err != nil {
			return nil, err
		}
		return Leaf[L]{Value: v}, nil
	case space.Dict:
		entries := sp.Entries()
		sizes := make([]int, len(entries))
		for i, e := range entries {
			n, err := space.Size(e.Space)
			if err != nil {
				return nil, err
			}
			sizes[i] = n
		}
		pieces, err := sub.split(flat, sizes)
		if err != nil {
			return nil, err
		}
		m := &Map[L]{fields: make([]Field[L], 0, len(entries))}
		for i, e := range entries {
			child, err := unpack(sub, pieces[i], e.Space)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", e.Name, err)
			}
			m.fields = append(m.fields, Field[L]{Name: e.Name, Value: child})
		}
		return m, nil
	default:
		return nil, space.Unsupported(s)
	}
}

func obsKind[L any](o Obs[L]) string {
	switch v := o.(type) {
	case nil:
		return "nothing"
	case Leaf[L]:
		return "leaf"
	case *Map[L]:
		if v == nil {
			return "nil mapping"
		}
		return "mapping"
	default:
		return fmt.Sprintf("%T", o)
	}
}
