package model

import (
	"fmt"

	"rld/internal/host"
	"rld/internal/space"
)

// originalSpacer is implemented by host spaces that remember the structured
// space they were flattened from.
type originalSpacer interface {
	OriginalSpace() host.Space
}

// FromHostSpace translates a host space into an rld space. Flattened spaces
// are unwrapped to their original structure; Box and Dict translate
// directly; every other kind is an UnsupportedSpaceKindError.
func FromHostSpace(h host.Space) (space.Space, error) {
	if o, ok := h.(originalSpacer); ok && o.OriginalSpace() != nil {
		return FromHostSpace(o.OriginalSpace())
	}
	switch v := h.(type) {
	case host.Box:
		b, err := space.NewBox(v.Shape...)
		if err != nil {
			return nil, err
		}
		if v.Low != nil && v.High != nil {
			return b.WithBounds(v.Low, v.High)
		}
		return b, nil
	case host.Preprocessed:
		return FromHostSpace(v.Box)
	case host.Dict:
		entries := make([]space.Entry, 0, len(v.Keys))
		for _, k := range v.Keys {
			child, ok := v.Spaces[k]
			if !ok {
				return nil, fmt.Errorf("host dict key %q has no space", k)
			}
			s, err := FromHostSpace(child)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			entries = append(entries, space.Entry{Name: k, Space: s})
		}
		return space.NewDict(entries...)
	default:
		return nil, space.Unsupported(h)
	}
}
