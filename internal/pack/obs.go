// Package pack converts between structured observations and the flat numeric
// blocks consumed by models and attribution code.
//
// The flat layout is fixed by the space: a Box contributes its elements in
// row-major order, a Dict contributes its children back to back in declared
// order. Every consumer of flat observations (baselines included) must follow
// this layout.
//
// The engine is written once over a generic leaf type and instantiated for
// two substrates: host arrays (tensor.Array) and device tensors
// (*tensor.Tensor). All functions are pure and safe for concurrent use.
package pack

import (
	"rld/internal/tensor"
)

// Obs is a structured observation: either a Leaf or a *Map.
type Obs[L any] interface {
	isObs()
}

// Leaf holds the numeric block for a Box.
type Leaf[L any] struct {
	Value L
}

func (Leaf[L]) isObs() {}

// Field is one named child of a Map.
type Field[L any] struct {
	Name  string
	Value Obs[L]
}

// Map is an ordered mapping of names to observations, matching a Dict.
type Map[L any] struct {
	fields []Field[L]
}

func (*Map[L]) isObs() {}

// NewMap returns a Map holding fields in the given order. A later field with
// a repeated name replaces the earlier one in place.
func NewMap[L any](fields ...Field[L]) *Map[L] {
	m := &Map[L]{}
	for _, f := range fields {
		m.Set(f.Name, f.Value)
	}
	return m
}

// Set stores v under name, appending new names at the end.
func (m *Map[L]) Set(name string, v Obs[L]) {
	for i := range m.fields {
		if m.fields[i].Name == name {
			m.fields[i].Value = v
			return
		}
	}
	m.fields = append(m.fields, Field[L]{Name: name, Value: v})
}

// Get returns the child stored under name.
func (m *Map[L]) Get(name string) (Obs[L], bool) {
	for _, f := range m.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns names in insertion order.
func (m *Map[L]) Keys() []string {
	out := make([]string, len(m.fields))
	for i, f := range m.fields {
		out[i] = f.Name
	}
	return out
}

// Fields returns a copy of the ordered fields.
func (m *Map[L]) Fields() []Field[L] { return append([]Field[L](nil), m.fields...) }

// Len returns the number of fields.
func (m *Map[L]) Len() int { return len(m.fields) }

// ArrayObs is a structured observation over host arrays.
type ArrayObs = Obs[tensor.Array]

// TensorObs is a structured observation over device tensors.
type TensorObs = Obs[*tensor.Tensor]

// A and F build array observations tersely, mostly for tests and examples:
//
//	pack.M(pack.F("pos", pack.A(1, 2)), pack.F("vel", pack.A(3)))
func A(values ...float32) ArrayObs { return Leaf[tensor.Array]{Value: tensor.Vector(values...)} }

// F names an array observation.
func F(name string, v ArrayObs) Field[tensor.Array] { return Field[tensor.Array]{Name: name, Value: v} }

// M builds an ordered array Map.
func M(fields ...Field[tensor.Array]) *Map[tensor.Array] { return NewMap(fields...) }

// T wraps a tensor as a leaf observation.
func T(t *tensor.Tensor) TensorObs { return Leaf[*tensor.Tensor]{Value: t} }

// TF names a tensor observation.
func TF(name string, v TensorObs) Field[*tensor.Tensor] {
	return Field[*tensor.Tensor]{Name: name, Value: v}
}

// TM builds an ordered tensor Map.
func TM(fields ...Field[*tensor.Tensor]) *Map[*tensor.Tensor] { return NewMap(fields...) }
