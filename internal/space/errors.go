package space

import (
	"errors"
	"fmt"
)

// UnsupportedSpaceKindError is returned whenever a space variant other than
// Box or Dict is encountered. Desc names the offending descriptor.
type UnsupportedSpaceKindError struct {
	Desc string
}

func (e *UnsupportedSpaceKindError) Error() string {
	return "unsupported space kind: " + e.Desc
}

// StatusCode lets the HTTP layer map this error to 422.
func (e *UnsupportedSpaceKindError) StatusCode() int { return 422 }

// Unsupported builds an UnsupportedSpaceKindError describing v.
func Unsupported(v any) error {
	if v == nil {
		return &UnsupportedSpaceKindError{Desc: "<nil>"}
	}
	if s, ok := v.(fmt.Stringer); ok {
		return &UnsupportedSpaceKindError{Desc: fmt.Sprintf("%T %s", v, s.String())}
	}
	return &UnsupportedSpaceKindError{Desc: fmt.Sprintf("%T %v", v, v)}
}

// IsUnsupportedSpaceKind reports whether err (or anything it wraps) is an
// UnsupportedSpaceKindError.
func IsUnsupportedSpaceKind(err error) bool {
	var e *UnsupportedSpaceKindError
	return errors.As(err, &e)
}
