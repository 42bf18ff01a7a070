package store

import (
	"errors"
	"fmt"
)

// ErrCodePersistence is the code carried by PersistenceError.
const ErrCodePersistence = "PERSISTENCE"

// PersistenceError reports a load or save failure of a backend.
//
// A failed Load must halt startup; a failed Save leaves the in-memory
// state ahead of durable storage until a later Save succeeds.
type PersistenceError struct {
	// Op is "load" or "save".
	Op string

	// Backend names the backend ("file", "sqlite", "memory").
	Backend string

	// Path is the file or database path, if any.
	Path string

	Err error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s %s %s: %v", ErrCodePersistence, e.Backend, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: %v", ErrCodePersistence, e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError returns true if err is a PersistenceError.
// Uses errors.As to handle wrapped errors.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
