package service

import (
	"errors"
	"net/http"

	"rld/internal/pack"
	"rld/internal/space"
)

// modelNotFoundError is returned when a requested model id is not registered.
type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string   { return "model not found: " + e.id }
func (e modelNotFoundError) StatusCode() int { return http.StatusNotFound }

// ErrModelNotFound constructs a modelNotFoundError.
func ErrModelNotFound(id string) error { return modelNotFoundError{id: id} }

// IsModelNotFound reports whether the error indicates a missing model id.
func IsModelNotFound(err error) bool {
	var e modelNotFoundError
	return errors.As(err, &e)
}

// badInputError marks errors caused by the request payload.
type badInputError struct{ err error }

func (e badInputError) Error() string   { return e.err.Error() }
func (e badInputError) Unwrap() error   { return e.err }
func (e badInputError) StatusCode() int { return http.StatusBadRequest }

// BadInput wraps err so transports report it as a client error.
func BadInput(err error) error {
	if err == nil {
		return nil
	}
	return badInputError{err: err}
}

// IsBadInput reports whether err was caused by the request payload.
func IsBadInput(err error) bool {
	var e badInputError
	return errors.As(err, &e)
}

// classify tags engine errors for transports. Unsupported space kinds keep
// their own status; malformed observations become bad input.
func classify(err error) error {
	if err == nil || space.IsUnsupportedSpaceKind(err) || IsBadInput(err) {
		return err
	}
	if pack.IsInputError(err) {
		return BadInput(err)
	}
	return err
}
