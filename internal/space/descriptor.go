package space

import (
	"fmt"
	"strings"
)

// Descriptor is the serializable form of a Space used by config files and
// the HTTP API.
//
//	{kind: box, shape: [2]}
//	{kind: dict, entries: [{name: pos, space: {kind: box, shape: [2]}}]}
type Descriptor struct {
	Kind    string            `json:"kind" yaml:"kind" toml:"kind"`
	Shape   []int             `json:"shape,omitempty" yaml:"shape,omitempty" toml:"shape,omitempty"`
	Low     []float32         `json:"low,omitempty" yaml:"low,omitempty" toml:"low,omitempty"`
	High    []float32         `json:"high,omitempty" yaml:"high,omitempty" toml:"high,omitempty"`
	Entries []DescriptorEntry `json:"entries,omitempty" yaml:"entries,omitempty" toml:"entries,omitempty"`
}

// DescriptorEntry is one named child of a dict Descriptor.
type DescriptorEntry struct {
	Name  string     `json:"name" yaml:"name" toml:"name"`
	Space Descriptor `json:"space" yaml:"space" toml:"space"`
}

// Encode converts s into its serializable form.
func Encode(s Space) (Descriptor, error) {
	switch v := s.(type) {
	case Box:
		d := Descriptor{Kind: KindBox.String(), Shape: v.Shape()}
		d.Low, d.High = v.Bounds()
		return d, nil
	case Dict:
		d := Descriptor{Kind: KindDict.String(), Entries: make([]DescriptorEntry, 0, v.Len())}
		for _, e := range v.entries {
			child, err := Encode(e.Space)
			if err != nil {
				return Descriptor{}, err
			}
			d.Entries = append(d.Entries, DescriptorEntry{Name: e.Name, Space: child})
		}
		return d, nil
	default:
		return Descriptor{}, Unsupported(s)
	}
}

// Decode builds a Space from its serializable form. Kinds other than box and
// dict yield an UnsupportedSpaceKindError.
func Decode(d Descriptor) (Space, error) {
	switch strings.ToLower(strings.TrimSpace(d.Kind)) {
	case "box":
		b, err := NewBox(d.Shape...)
		if err != nil {
			return nil, err
		}
		if d.Low != nil || d.High != nil {
			return b.WithBounds(d.Low, d.High)
		}
		return b, nil
	case "dict":
		entries := make([]Entry, 0, len(d.Entries))
		for _, de := range d.Entries {
			child, err := Decode(de.Space)
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", de.Name, err)
			}
			entries = append(entries, Entry{Name: de.Name, Space: child})
		}
		return NewDict(entries...)
	default:
		return nil, &UnsupportedSpaceKindError{Desc: fmt.Sprintf("descriptor kind %q", d.Kind)}
	}
}
