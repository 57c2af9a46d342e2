package memory

import (
	"errors"
	"fmt"
)

var (
	errNotFound = errors.New("not found")
	errConflict = errors.New("already exists")
)

// Error implements repositories.RepositoryError for the in-memory repositories.
type Error struct {
	op       string
	err      error
	notFound bool
	conflict bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.op != "" {
		return fmt.Sprintf("%s: %v", e.op, e.err)
	}
	return e.err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// IsNotFound reports whether the error represents a missing record.
func (e *Error) IsNotFound() bool {
	return e != nil && e.notFound
}

// IsConflict reports whether the error represents a duplicate key.
func (e *Error) IsConflict() bool {
	return e != nil && e.conflict
}

// IsUnavailable is always false; memory storage has no backend to lose.
func (e *Error) IsUnavailable() bool {
	return false
}

func notFound(op string, key any) error {
	return &Error{op: op, err: fmt.Errorf("%w: %v", errNotFound, key), notFound: true}
}

func conflict(op string, key any) error {
	return &Error{op: op, err: fmt.Errorf("%w: %v", errConflict, key), conflict: true}
}
