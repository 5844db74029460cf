package metrics

import (
	"errors"
	"fmt"
)

// TypeMismatchError is returned when a metric's value does not have the shape
// its kind requires, e.g. a mapping for a gauge or a number for an info metric.
type TypeMismatchError struct {
	Name  string
	Kind  Kind
	Value any
	// Want describes the accepted value shape.
	Want string
}

// Error returns the formatted error string.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("metrics: %s %q: value %v (%T) is not %s", e.Kind, e.Name, e.Value, e.Value, e.Want)
}

// Is supports errors.Is matching against ErrTypeMismatch.
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// DuplicateNameError is returned when a metric name is registered twice
// within the same Registry.
type DuplicateNameError struct {
	Name string
}

// Error returns the formatted error string.
func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("metrics: duplicate metric name %q", e.Name)
}

// Is supports errors.Is matching against ErrDuplicateName.
func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// Sentinel errors for errors.Is matching.
var (
	ErrTypeMismatch  = errors.New("metrics: value does not match metric kind")
	ErrDuplicateName = errors.New("metrics: duplicate metric name")
)
