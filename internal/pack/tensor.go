package pack

import (
	"fmt"

	"rld/internal/space"
	"rld/internal/tensor"
)

type tensors struct{}

// flatten accepts either an unbatched leaf with the box's element count or a
// batched leaf whose trailing dims equal the box shape. A [1] leaf for a
// scalar box is unbatched; concat lifts it when siblings carry a batch of one.
func (tensors) flatten(t *tensor.Tensor, box space.Box) (*tensor.Tensor, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil tensor for %s", ErrStructure, box)
	}
	shape := box.Shape()
	n := box.Size()
	scalarOne := len(shape) == 0 && t.Rank() == 1 && t.Dim(0) == 1
	if !scalarOne && t.Rank() == len(shape)+1 && tensor.SameShape(t.Shape()[1:], shape) {
		return t.Reshape(t.Dim(0), n)
	}
	if t.Len() != n {
		return nil, fmt.Errorf("%w: %s expects %d elements, got tensor %v", ErrShape, box, n, t.Shape())
	}
	return t.Flatten(), nil
}

// concat joins rank-1 parts end to end and rank-2 parts along dim 1. With a
// batch of one, unbatched parts are lifted to a single row.
func (tensors) concat(parts []*tensor.Tensor) (*tensor.Tensor, error) {
	if len(parts) == 0 {
		return tensor.Concat(nil)
	}
	batch := -1
	for _, p := range parts {
		if p.Rank() == 2 {
			batch = p.Dim(0)
			break
		}
	}
	if batch < 0 {
		return tensor.Concat(parts)
	}
	rows := make([]*tensor.Tensor, len(parts))
	for i, p := range parts {
		switch {
		case p.Rank() == 2:
			rows[i] = p
		case batch == 1:
			r, err := p.Reshape(1, p.Len())
			if err != nil {
				return nil, err
			}
			rows[i] = r
		default:
			return nil, fmt.Errorf("%w: mixing batched and unbatched leaves", ErrBatchMismatch)
		}
	}
	return tensor.Concat1(rows)
}

func (tensors) reshape(flat *tensor.Tensor, shape []int) (*tensor.Tensor, error) {
	return flat.Reshape(shape...)
}

func (tensors) split(flat *tensor.Tensor, sizes []int) ([]*tensor.Tensor, error) {
	return flat.Split(sizes)
}

// PackTensor flattens o into a tensor laid out by s. If the leaves carry a
// leading batch dimension the result has shape [N, Size(s)].
func PackTensor(o TensorObs, s space.Space) (*tensor.Tensor, error) {
	if _, err := space.Size(s); err != nil {
		return nil, err
	}
	return pack[*tensor.Tensor](tensors{}, o, s)
}

// UnpackTensor rebuilds the structured observation for s. A rank-1 input is
// unpacked directly. A higher-rank input is treated as a batch: every slice
// along the leading dimension is unpacked on its own and the results are
// stacked leaf by leaf, so each leaf gains a leading dimension of size N.
func UnpackTensor(flat *tensor.Tensor, s space.Space) (TensorObs, error) {
	n, err := space.Size(s)
	if err != nil {
		return nil, err
	}
	if flat == nil {
		return nil, fmt.Errorf("%w: nil tensor", ErrShape)
	}
	if flat.Rank() > 1 {
		return unpackBatched(flat, s)
	}
	if flat.Len() != n {
		return nil, fmt.Errorf("%w: %s expects %d elements, got tensor %v", ErrShape, s, n, flat.Shape())
	}
	return unpack[*tensor.Tensor](tensors{}, flat.Flatten(), s)
}

func unpackBatched(flat *tensor.Tensor, s space.Space) (TensorObs, error) {
	batch := flat.Dim(0)
	if batch == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrShape)
	}
	slices := make([]TensorObs, batch)
	for b := 0; b < batch; b++ {
		row, err := flat.Index(b)
		if err != nil {
			return nil, err
		}
		o, err := UnpackTensor(row, s)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", b, err)
		}
		slices[b] = o
	}
	return mergeBatch(slices)
}
