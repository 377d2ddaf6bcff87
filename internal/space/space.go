// Package space describes the shape of a model observation or action.
//
// A Space is a closed sum type with exactly two variants:
//
//   - Box: a flat numeric block with a fixed shape.
//   - Dict: an ordered mapping of names to sub-spaces.
//
// Spaces are immutable once constructed and may be shared freely between
// goroutines. Traversal code should switch on the concrete type and treat
// any other value as unsupported (see UnsupportedSpaceKindError).
package space

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSpace is wrapped by constructor errors (non-positive dims, duplicate names).
var ErrInvalidSpace = errors.New("invalid space")

// Space is implemented only by Box and Dict.
type Space interface {
	isSpace()
	String() string
}

// Kind discriminates the Space variants.
type Kind int

const (
	KindUnknown Kind = iota
	KindBox
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindDict:
		return "dict"
	default:
		return "unknown"
	}
}

// KindOf reports the variant of s. A nil Space is KindUnknown.
func KindOf(s Space) Kind {
	switch s.(type) {
	case Box:
		return KindBox
	case Dict:
		return KindDict
	default:
		return KindUnknown
	}
}

// Box is a flat numeric block. An empty shape denotes a scalar.
type Box struct {
	shape []int
	// Optional bounds carried over from the host framework; nil when unknown.
	low, high []float32
}

func (Box) isSpace() {}

// NewBox validates shape and returns a Box.
func NewBox(shape ...int) (Box, error) {
	for i, d := range shape {
		if d <= 0 {
			return Box{}, fmt.Errorf("%w: box dim %d is %d", ErrInvalidSpace, i, d)
		}
	}
	return Box{shape: append([]int(nil), shape...)}, nil
}

// MustBox is NewBox that panics on error. Intended for literals and tests.
func MustBox(shape ...int) Box {
	b, err := NewBox(shape...)
	if err != nil {
		panic(err)
	}
	return b
}

// WithBounds returns a copy of b carrying element-wise bounds. Both slices
// must match the element count of b.
func (b Box) WithBounds(low, high []float32) (Box, error) {
	n := b.Size()
	if len(low) != n || len(high) != n {
		return Box{}, fmt.Errorf("%w: bounds length %d/%d, want %d", ErrInvalidSpace, len(low), len(high), n)
	}
	b.low = append([]float32(nil), low...)
	b.high = append([]float32(nil), high...)
	return b, nil
}

// Shape returns a copy of the box shape.
func (b Box) Shape() []int { return append([]int(nil), b.shape...) }

// Bounds returns copies of the low/high bounds, or nil when not set.
func (b Box) Bounds() (low, high []float32) {
	if b.low == nil {
		return nil, nil
	}
	return append([]float32(nil), b.low...), append([]float32(nil), b.high...)
}

// Size is the product of the shape dims.
func (b Box) Size() int {
	n := 1
	for _, d := range b.shape {
		n *= d
	}
	return n
}

func (b Box) String() string {
	parts := make([]string, len(b.shape))
	for i, d := range b.shape {
		parts[i] = fmt.Sprint(d)
	}
	return "Box(" + strings.Join(parts, ",") + ")"
}

// Entry is one named child of a Dict.
type Entry struct {
	Name  string
	Space Space
}

// Dict is an ordered mapping of names to sub-spaces.
type Dict struct {
	entries []Entry
}

func (Dict) isSpace() {}

// NewDict validates entries and returns a Dict preserving their order.
func NewDict(entries ...Entry) (Dict, error) {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return Dict{}, fmt.Errorf("%w: empty dict key", ErrInvalidSpace)
		}
		if _, dup := seen[e.Name]; dup {
			return Dict{}, fmt.Errorf("%w: duplicate dict key %q", ErrInvalidSpace, e.Name)
		}
		if e.Space == nil {
			return Dict{}, fmt.Errorf("%w: nil space for key %q", ErrInvalidSpace, e.Name)
		}
		seen[e.Name] = struct{}{}
	}
	return Dict{entries: append([]Entry(nil), entries...)}, nil
}

// MustDict is NewDict that panics on error.
func MustDict(entries ...Entry) Dict {
	d, err := NewDict(entries...)
	if err != nil {
		panic(err)
	}
	return d
}

// E is shorthand for Entry{Name: name, Space: s}.
func E(name string, s Space) Entry { return Entry{Name: name, Space: s} }

// Entries returns the children in declared order.
func (d Dict) Entries() []Entry { return append([]Entry(nil), d.entries...) }

// Names returns the child names in declared order.
func (d Dict) Names() []string {
	out := make([]string, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.Name
	}
	return out
}

// Len returns the number of children.
func (d Dict) Len() int { return len(d.entries) }

// Lookup returns the child space registered under name.
func (d Dict) Lookup(name string) (Space, bool) {
	for _, e := range d.entries {
		if e.Name == name {
			return e.Space, true
		}
	}
	return nil, false
}

func (d Dict) String() string {
	parts := make([]string, len(d.entries))
	for i, e := range d.entries {
		parts[i] = e.Name + ":" + describe(e.Space)
	}
	return "Dict(" + strings.Join(parts, ", ") + ")"
}

// Size returns the total element count of s: the product of the shape for a
// Box, the sum over children for a Dict.
func Size(s Space) (int, error) {
	switch v := s.(type) {
	case Box:
		return v.Size(), nil
	case Dict:
		total := 0
		for _, e := range v.entries {
			n, err := Size(e.Space)
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil
	default:
		return 0, Unsupported(s)
	}
}

// Equal reports whether a and b describe the same structure. Bounds are ignored.
func Equal(a, b Space) bool {
	switch x := a.(type) {
	case Box:
		y, ok := b.(Box)
		if !ok || len(x.shape) != len(y.shape) {
			return false
		}
		for i := range x.shape {
			if x.shape[i] != y.shape[i] {
				return false
			}
		}
		return true
	case Dict:
		y, ok := b.(Dict)
		if !ok || len(x.entries) != len(y.entries) {
			return false
		}
		for i := range x.entries {
			if x.entries[i].Name != y.entries[i].Name || !Equal(x.entries[i].Space, y.entries[i].Space) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func describe(s Space) string {
	if s == nil {
		return "<nil>"
	}
	return s.String()
}
