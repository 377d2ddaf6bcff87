package tensor

import "fmt"

// Tensor is a float32 tensor tagged with the device it lives on. The engine
// never moves tensors between devices; To only relabels a copy and exists so
// callers can materialize inputs where a model expects them.
type Tensor struct {
	shape  []int
	data   []float32
	device Device
}

// New copies data into a CPU tensor of the given shape.
func New(data []float32, shape ...int) (*Tensor, error) {
	if n := numel(shape); n != len(data) {
		return nil, fmt.Errorf("%w: %d elements for shape %v (%d)", ErrShape, len(data), shape, n)
	}
	return &Tensor{shape: append([]int(nil), shape...), data: append([]float32(nil), data...), device: CPU}, nil
}

// MustNew is New that panics on error.
func MustNew(data []float32, shape ...int) *Tensor {
	t, err := New(data, shape...)
	if err != nil {
		panic(err)
	}
	return t
}

// Zeros returns a zero-filled tensor on dev.
func Zeros(dev Device, shape ...int) *Tensor {
	return &Tensor{shape: append([]int(nil), shape...), data: make([]float32, numel(shape)), device: dev}
}

// FromArray copies a host array onto dev.
func FromArray(a Array, dev Device) *Tensor {
	return &Tensor{shape: append([]int(nil), a.Shape...), data: append([]float32(nil), a.Data...), device: dev}
}

// Array copies t back to a host array.
func (t *Tensor) Array() Array {
	return Array{Shape: t.Shape(), Data: t.Data()}
}

// Shape returns a copy of the tensor shape.
func (t *Tensor) Shape() []int { return append([]int(nil), t.shape...) }

// Rank is the number of dimensions.
func (t *Tensor) Rank() int { return len(t.shape) }

// Len is the total element count.
func (t *Tensor) Len() int { return len(t.data) }

// Dim returns the size of dimension i.
func (t *Tensor) Dim(i int) int { return t.shape[i] }

// Data returns a copy of the underlying values.
func (t *Tensor) Data() []float32 { return append([]float32(nil), t.data...) }

// At returns the element at flat index i.
func (t *Tensor) At(i int) float32 { return t.data[i] }

// Device reports where t lives.
func (t *Tensor) Device() Device { return t.device }

// To returns a copy of t placed on dev.
func (t *Tensor) To(dev Device) *Tensor {
	c := t.clone()
	c.device = dev
	return c
}

// Reshape returns a copy with a new shape of equal element count.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	if n := numel(shape); n != len(t.data) {
		return nil, fmt.Errorf("%w: cannot reshape %v into %v", ErrShape, t.shape, shape)
	}
	c := t.clone()
	c.shape = append([]int(nil), shape...)
	return c, nil
}

// Flatten returns a rank-1 copy.
func (t *Tensor) Flatten() *Tensor {
	c := t.clone()
	c.shape = []int{len(t.data)}
	return c
}

// Index returns a copy of slice i along the leading dimension.
func (t *Tensor) Index(i int) (*Tensor, error) {
	if t.Rank() == 0 {
		return nil, fmt.Errorf("%w: cannot index a scalar", ErrShape)
	}
	if i < 0 || i >= t.shape[0] {
		return nil, fmt.Errorf("index %d out of range [0,%d)", i, t.shape[0])
	}
	inner := t.shape[1:]
	stride := numel(inner)
	return &Tensor{
		shape:  append([]int(nil), inner...),
		data:   append([]float32(nil), t.data[i*stride:(i+1)*stride]...),
		device: t.device,
	}, nil
}

// Split cuts a rank-1 tensor into consecutive pieces of the given sizes.
// The sizes must sum to the tensor length.
func (t *Tensor) Split(sizes []int) ([]*Tensor, error) {
	if t.Rank() != 1 {
		return nil, fmt.Errorf("%w: split expects rank 1, got %v", ErrShape, t.shape)
	}
	if total := sum(sizes); total != len(t.data) {
		return nil, fmt.Errorf("%w: split sizes sum to %d, tensor has %d", ErrShape, total, len(t.data))
	}
	out := make([]*Tensor, len(sizes))
	off := 0
	for i, n := range sizes {
		out[i] = &Tensor{shape: []int{n}, data: append([]float32(nil), t.data[off:off+n]...), device: t.device}
		off += n
	}
	return out, nil
}

// Concat joins tensors along dimension 0. All inputs must share the device
// and the trailing dimensions.
func Concat(ts []*Tensor) (*Tensor, error) {
	if len(ts) == 0 {
		return &Tensor{shape: []int{0}, device: CPU}, nil
	}
	first := ts[0]
	if first.Rank() == 0 {
		return nil, fmt.Errorf("%w: cannot concat scalars", ErrShape)
	}
	tail := first.shape[1:]
	lead := 0
	var data []float32
	for _, t := range ts {
		if t.device != first.device {
			return nil, fmt.Errorf("concat across devices %s and %s", first.device, t.device)
		}
		if t.Rank() != first.Rank() || !SameShape(t.shape[1:], tail) {
			return nil, fmt.Errorf("%w: concat %v with %v", ErrShape, first.shape, t.shape)
		}
		lead += t.shape[0]
		data = append(data, t.data...)
	}
	shape := append([]int{lead}, tail...)
	return &Tensor{shape: shape, data: data, device: first.device}, nil
}

// Concat1 concatenates along the last dimension of rank-2 tensors that share
// the leading (batch) dimension.
func Concat1(ts []*Tensor) (*Tensor, error) {
	if len(ts) == 0 {
		return nil, fmt.Errorf("%w: nothing to concat", ErrShape)
	}
	rows := ts[0].shape[0]
	cols := 0
	for _, t := range ts {
		if t.Rank() != 2 || t.shape[0] != rows {
			return nil, fmt.Errorf("%w: batched concat of %v with %v", ErrShape, ts[0].shape, t.shape)
		}
		if t.device != ts[0].device {
			return nil, fmt.Errorf("concat across devices %s and %s", ts[0].device, t.device)
		}
		cols += t.shape[1]
	}
	data := make([]float32, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for _, t := range ts {
			w := t.shape[1]
			data = append(data, t.data[r*w:(r+1)*w]...)
		}
	}
	return &Tensor{shape: []int{rows, cols}, data: data, device: ts[0].device}, nil
}

// Stack joins equally shaped tensors along a new leading dimension.
func Stack(ts []*Tensor) (*Tensor, error) {
	if len(ts) == 0 {
		return nil, fmt.Errorf("%w: nothing to stack", ErrShape)
	}
	first := ts[0]
	data := make([]float32, 0, len(ts)*len(first.data))
	for _, t := range ts {
		if !SameShape(t.shape, first.shape) {
			return nil, fmt.Errorf("%w: stack %v with %v", ErrShape, first.shape, t.shape)
		}
		if t.device != first.device {
			return nil, fmt.Errorf("stack across devices %s and %s", first.device, t.device)
		}
		data = append(data, t.data...)
	}
	shape := append([]int{len(ts)}, first.shape...)
	return &Tensor{shape: shape, data: data, device: first.device}, nil
}

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(shape=%v, device=%s)", t.shape, t.device)
}

func (t *Tensor) clone() *Tensor {
	return &Tensor{shape: append([]int(nil), t.shape...), data: append([]float32(nil), t.data...), device: t.device}
}

// SameShape reports whether a and b have identical shapes.
func SameShape(a, b []int) bool {
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

func sum(xs []int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}
