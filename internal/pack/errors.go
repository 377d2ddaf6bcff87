package pack

import (
	"errors"

	"rld/internal/space"
	"rld/internal/tensor"
)

var (
	// ErrShape is returned when a block has the wrong element count or rank.
	ErrShape = tensor.ErrShape
	// ErrStructure is returned when an observation does not follow its space
	// (a leaf where a mapping is expected, or the reverse).
	ErrStructure = errors.New("observation does not match space")
	// ErrMissingKey is returned when a mapping lacks a key declared by its space.
	ErrMissingKey = errors.New("missing key")
	// ErrUnexpectedKey is returned when decoded input carries a key the space does not declare.
	ErrUnexpectedKey = errors.New("unexpected key")
	// ErrBatchMismatch is returned when batch slices do not decode to the same structure.
	ErrBatchMismatch = errors.New("batch slices differ in structure")
)

// IsInputError reports whether err was caused by caller input rather than
// by the space itself.
func IsInputError(err error) bool {
	return errors.Is(err, ErrShape) || errors.Is(err, ErrStructure) ||
		errors.Is(err, ErrMissingKey) || errors.Is(err, ErrUnexpectedKey) ||
		errors.Is(err, ErrBatchMismatch)
}

// IsUnsupportedSpaceKind reports whether err came from an unsupported space variant.
func IsUnsupportedSpaceKind(err error) bool { return space.IsUnsupportedSpaceKind(err) }
