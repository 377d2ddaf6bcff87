// Package host defines the contract of the framework that owns trained
// models: its space types, its forward-call input bundle and its model
// interface. It mirrors the shape of an RLlib-style ModelV2 so that wrappers
// in package model can be written against it.
package host

import "fmt"

// Space is a host framework space. Only Box, Dict and Preprocessed can be
// translated into rld spaces; the other kinds exist because real models
// declare them (e.g. a Discrete action space).
type Space interface {
	hostSpace()
}

// Box is a continuous n-dimensional range.
type Box struct {
	Shape     []int
	Low, High []float32
}

// Dict is an ordered collection of named spaces. Keys fixes the order.
type Dict struct {
	Keys   []string
	Spaces map[string]Space
}

// Discrete is the set {0, 1, ..., N-1}.
type Discrete struct{ N int }

// MultiBinary is a vector of N binary flags.
type MultiBinary struct{ N int }

// Tuple is a positional product of spaces.
type Tuple struct{ Spaces []Space }

// Preprocessed is the flat Box a host preprocessor exposes after flattening
// a structured observation space. Original keeps the structured space.
type Preprocessed struct {
	Box
	Original Space
}

func (Box) hostSpace()         {}
func (Dict) hostSpace()        {}
func (Discrete) hostSpace()    {}
func (MultiBinary) hostSpace() {}
func (Tuple) hostSpace()       {}

// OriginalSpace returns the pre-flattening space.
func (p Preprocessed) OriginalSpace() Space { return p.Original }

// NewDict builds a Dict from alternating name/space pairs in order.
func NewDict(pairs ...any) (Dict, error) {
	if len(pairs)%2 != 0 {
		return Dict{}, fmt.Errorf("host dict: odd number of arguments")
	}
	d := Dict{Spaces: make(map[string]Space, len(pairs)/2)}
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			return Dict{}, fmt.Errorf("host dict: key %d is %T", i/2, pairs[i])
		}
		s, ok := pairs[i+1].(Space)
		if !ok {
			return Dict{}, fmt.Errorf("host dict: value for %q is %T", name, pairs[i+1])
		}
		if _, dup := d.Spaces[name]; dup {
			return Dict{}, fmt.Errorf("host dict: duplicate key %q", name)
		}
		d.Keys = append(d.Keys, name)
		d.Spaces[name] = s
	}
	return d, nil
}

// Flatten wraps s the way a host preprocessor does: the model sees a flat
// Box of FlatSize(s) elements and the original is kept alongside.
func Flatten(s Space) (Preprocessed, error) {
	n, err := FlatSize(s)
	if err != nil {
		return Preprocessed{}, err
	}
	return Preprocessed{Box: Box{Shape: []int{n}}, Original: s}, nil
}

// FlatSize is the element count of s once flattened by the host.
func FlatSize(s Space) (int, error) {
	switch v := s.(type) {
	case Preprocessed:
		return FlatSize(v.Box)
	case Box:
		n := 1
		for _, d := range v.Shape {
			n *= d
		}
		return n, nil
	case Dict:
		total := 0
		for _, k := range v.Keys {
			n, err := FlatSize(v.Spaces[k])
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil
	case Discrete:
		return v.N, nil
	case MultiBinary:
		return v.N, nil
	case Tuple:
		total := 0
		for _, c := range v.Spaces {
			n, err := FlatSize(c)
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil
	default:
		return 0, fmt.Errorf("host: unknown space %T", s)
	}
}
