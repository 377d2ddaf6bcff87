package pack

import (
	"fmt"

	"rld/internal/tensor"
)

// mergeBatch stacks corresponding leaves of per-slice observations along a
// new leading dimension. Every slice must have the same keys in the same
// order and equally shaped leaves; otherwise ErrBatchMismatch is returned.
func mergeBatch(slices []TensorObs) (TensorObs, error) {
	switch first := slices[0].(type) {
	case Leaf[*tensor.Tensor]:
		leaves := make([]*tensor.Tensor, len(slices))
		for i, o := range slices {
			l, ok := o.(Leaf[*tensor.Tensor])
			if !ok {
				return nil, fmt.Errorf("%w: slice %d is a %s, slice 0 is a leaf", ErrBatchMismatch, i, obsKind[*tensor.Tensor](o))
			}
			if !tensor.SameShape(l.Value.Shape(), first.Value.Shape()) {
				return nil, fmt.Errorf("%w: slice %d has shape %v, slice 0 has %v", ErrBatchMismatch, i, l.Value.Shape(), first.Value.Shape())
			}
			leaves[i] = l.Value
		}
		stacked, err := tensor.Stack(leaves)
		if err != nil {
			return nil, err
		}
		return Leaf[*tensor.Tensor]{Value: stacked}, nil
	case *Map[*tensor.Tensor]:
		keys := first.Keys()
		out := &Map[*tensor.Tensor]{fields: make([]Field[*tensor.Tensor], 0, len(keys))}
		for _, k := range keys {
			children := make([]TensorObs, len(slices))
			for i, o := range slices {
				m, ok := o.(*Map[*tensor.Tensor])
				if !ok || !sameKeys(m.Keys(), keys) {
					return nil, fmt.Errorf("%w: slice %d keys differ from slice 0", ErrBatchMismatch, i)
				}
				children[i], _ = m.Get(k)
			}
			merged, err := mergeBatch(children)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out.fields = append(out.fields, Field[*tensor.Tensor]{Name: k, Value: merged})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unexpected %s", ErrBatchMismatch, obsKind[*tensor.Tensor](slices[0]))
	}
}

func sameKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
