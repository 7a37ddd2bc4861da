package credential

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when the entered value is empty after trimming.
	ErrEmptyInput = errors.New("no value entered")

	// ErrInvalidValue is returned when a value cannot be stored on one line.
	ErrInvalidValue = errors.New("value contains a line break or NUL byte")

	// ErrNoInput is returned by an input source that has nothing to offer.
	ErrNoInput = errors.New("input source has no value")

	// ErrUnsupported is returned by a backend that does not exist on this platform.
	ErrUnsupported = errors.New("store not available on this platform")

	// ErrNotFound is returned when a backend holds no value for a name.
	ErrNotFound = errors.New("variable not found")

	// ErrInvalidName is returned for names that are not valid environment variables.
	ErrInvalidName = errors.New("invalid variable name")
)

// PersistenceError reports a failed backend write.
type PersistenceError struct {
	// Backend describes where the write was attempted.
	Backend string
	// Name is the variable being written.
	Name string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storing %s in %s: %v", e.Name, e.Backend, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ExitCode is the process exit status of a setter run.
type ExitCode int

const (
	// ExitOK means the value was stored.
	ExitOK ExitCode = 0
	// ExitEmptyInput means no usable value was read; nothing was written.
	ExitEmptyInput ExitCode = 1
	// ExitPersistence means the backend failed to store the value.
	ExitPersistence ExitCode = 2
)
