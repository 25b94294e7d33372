package core

import "errors"

// ErrNotFound is wrapped by lookups that match no row.
var ErrNotFound = errors.New("not found")

// ValidationError reports input rejected before it reached the database.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func errInvalid(msg string) error { return &ValidationError{Msg: msg} }
