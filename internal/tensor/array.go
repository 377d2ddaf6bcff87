// Package tensor provides the two float32 numeric substrates used by the
// pack/unpack engine: host arrays (Array) and device tensors (Tensor).
//
// Both are row-major and carry an explicit shape. Operations return new
// values and never alias the caller's backing storage unless documented.
package tensor

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrShape is wrapped by every shape mismatch reported by this package.
var ErrShape = errors.New("shape mismatch")

// Array is a host-resident n-dimensional float32 array.
type Array struct {
	Shape []int
	Data  []float32
}

// NewArray copies data into an Array of the given shape.
func NewArray(data []float32, shape ...int) (Array, error) {
	if n := numel(shape); n != len(data) {
		return Array{}, fmt.Errorf("%w: %d elements for shape %v (%d)", ErrShape, len(data), shape, n)
	}
	return Array{Shape: append([]int(nil), shape...), Data: append([]float32(nil), data...)}, nil
}

// Vector wraps values as a rank-1 Array.
func Vector(values ...float32) Array {
	return Array{Shape: []int{len(values)}, Data: append([]float32(nil), values...)}
}

// Len returns the number of elements.
func (a Array) Len() int { return len(a.Data) }

// Reshape returns a copy of a with a new shape of equal element count.
func (a Array) Reshape(shape ...int) (Array, error) {
	return NewArray(a.Data, shape...)
}

// Flatten returns a rank-1 copy of a.
func (a Array) Flatten() Array { return Vector(a.Data...) }

// AsArray coerces v to a float32 Array, inferring the shape from nesting.
// Accepted leaves are Go integer and float kinds; containers are slices,
// arrays and Array itself. Ragged nesting is rejected.
func AsArray(v any) (Array, error) {
	switch x := v.(type) {
	case Array:
		return NewArray(x.Data, x.Shape...)
	case *Tensor:
		return x.Array(), nil
	case []float32:
		return Vector(x...), nil
	case []float64:
		out := make([]float32, len(x))
		for i, f := range x {
			out[i] = float32(f)
		}
		return Array{Shape: []int{len(x)}, Data: out}, nil
	}
	var a Array
	shape, err := inferShape(reflect.ValueOf(v))
	if err != nil {
		return a, err
	}
	a.Shape = shape
	a.Data = make([]float32, 0, numel(shape))
	if err := appendValues(&a.Data, reflect.ValueOf(v), shape); err != nil {
		return Array{}, err
	}
	return a, nil
}

func inferShape(v reflect.Value) ([]int, error) {
	if !v.IsValid() {
		return nil, fmt.Errorf("cannot convert nil to array")
	}
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("cannot convert nil to array")
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return []int{0}, nil
		}
		inner, err := inferShape(v.Index(0))
		if err != nil {
			return nil, err
		}
		return append([]int{v.Len()}, inner...), nil
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Bool:
		return nil, nil
	default:
		return nil, fmt.Errorf("cannot convert %s to array", v.Type())
	}
}

// appendValues walks v depth-first, requiring every container to match
// shape at its depth.
func appendValues(dst *[]float32, v reflect.Value, shape []int) error {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return fmt.Errorf("cannot convert nil to array")
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if len(shape) == 0 || v.Len() != shape[0] {
			return fmt.Errorf("%w: ragged input", ErrShape)
		}
		for i := 0; i < v.Len(); i++ {
			if err := appendValues(dst, v.Index(i), shape[1:]); err != nil {
				return err
			}
		}
		return nil
	}
	if len(shape) != 0 {
		return fmt.Errorf("%w: ragged input, got %s where %d elements were expected", ErrShape, v.Type(), shape[0])
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		*dst = append(*dst, float32(v.Float()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		*dst = append(*dst, float32(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		*dst = append(*dst, float32(v.Uint()))
	case reflect.Bool:
		if v.Bool() {
			*dst = append(*dst, 1)
		} else {
			*dst = append(*dst, 0)
		}
	default:
		return fmt.Errorf("cannot convert %s to array", v.Type())
	}
	return nil
}

func numel(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
