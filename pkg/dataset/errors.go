package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrDataLoad marks every failure that prevents the graph from being
	// built. Callers check it with errors.Is.
	ErrDataLoad = errors.New("cannot load graph data")

	ErrShape        = errors.New("table shape mismatch")
	ErrInvalidLevel = errors.New("invalid link level")
)

// LoadError describes which file failed and at which step.
type LoadError struct {
	File  string // object name relative to the source
	Op    string // "fetch", "decode", "validate"
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.File, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Is reports ErrDataLoad for every LoadError, and otherwise defers to the cause.
func (e *LoadError) Is(target error) bool {
	if target == ErrDataLoad {
		return true
	}
	return errors.Is(e.Cause, target)
}

func loadErr(file, op string, cause error) error {
	return &LoadError{File: file, Op: op, Cause: cause}
}
