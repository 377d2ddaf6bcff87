package pack

import (
	"fmt"

	"rld/internal/space"
	"rld/internal/tensor"
)

type arrays struct{}

func (arrays) flatten(a tensor.Array, box space.Box) (tensor.Array, error) {
	if a.Len() != box.Size() {
		return tensor.Array{}, fmt.Errorf("%w: %s expects %d elements, got %d", ErrShape, box, box.Size(), a.Len())
	}
	return a.Flatten(), nil
}

func (arrays) concat(parts []tensor.Array) (tensor.Array, error) {
	n := 0
	for _, p := range parts {
		n += p.Len()
	}
	data := make([]float32, 0, n)
	for _, p := range parts {
		data = append(data, p.Data...)
	}
	return tensor.Array{Shape: []int{n}, Data: data}, nil
}

func (arrays) reshape(flat tensor.Array, shape []int) (tensor.Array, error) {
	return flat.Reshape(shape...)
}

func (arrays) split(flat tensor.Array, sizes []int) ([]tensor.Array, error) {
	total := 0
	for _, n := range sizes {
		total += n
	}
	if total != flat.Len() {
		return nil, fmt.Errorf("%w: children need %d elements, block has %d", ErrShape, total, flat.Len())
	}
	out := make([]tensor.Array, len(sizes))
	off := 0
	for i, n := range sizes {
		out[i] = tensor.Vector(flat.Data[off : off+n]...)
		off += n
	}
	return out, nil
}

// PackArray flattens o into a float32 block laid out by s.
func PackArray(o ArrayObs, s space.Space) ([]float32, error) {
	if _, err := space.Size(s); err != nil {
		return nil, err
	}
	flat, err := pack[tensor.Array](arrays{}, o, s)
	if err != nil {
		return nil, err
	}
	return flat.Data, nil
}

// UnpackArray rebuilds the structured observation for s from a flat block.
func UnpackArray(flat []float32, s space.Space) (ArrayObs, error) {
	n, err := space.Size(s)
	if err != nil {
		return nil, err
	}
	if len(flat) != n {
		return nil, fmt.Errorf("%w: %s expects %d elements, got %d", ErrShape, s, n, len(flat))
	}
	return unpack[tensor.Array](arrays{}, tensor.Vector(flat...), s)
}
