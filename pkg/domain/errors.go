package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or malformed caller-supplied field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError is returned when no dish with ID exists.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("dish %s not found", e.ID)
}

// ParseError is returned when a stored price cannot be read as a decimal.
type ParseError struct {
	ID    string
	Value string
	Err   error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("dish %s: unparseable price %q", e.ID, e.Value)
}

func (e ParseError) Unwrap() error { return e.Err }

// PersistenceError wraps a failure of the underlying store. Op is "load" or "save".
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("dish store %s failed: %v", e.Op, e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsParse reports whether err is or wraps a ParseError.
func IsParse(err error) bool {
	var p ParseError
	return errors.As(err, &p)
}

// IsPersistence reports whether err is or wraps a PersistenceError.
func IsPersistence(err error) bool {
	var p PersistenceError
	return errors.As(err, &p)
}
