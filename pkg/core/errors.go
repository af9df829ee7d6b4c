package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrUnknownCallable is returned when a name does not resolve.
	ErrUnknownCallable = errors.New("unknown callable")

	// ErrDuplicateCallable is returned when a name appears twice in one request.
	ErrDuplicateCallable = errors.New("duplicate callable")
)

// UnknownCallableError reports a name that the registry could not resolve.
type UnknownCallableError struct {
	Name string
}

func (e *UnknownCallableError) Error() string {
	return fmt.Sprintf("unknown callable %q", e.Name)
}

// Is lets errors.Is match ErrUnknownCallable.
func (e *UnknownCallableError) Is(target error) bool {
	return target == ErrUnknownCallable
}

// DuplicateCallableError reports a name requested more than once.
type DuplicateCallableError struct {
	Name string
}

func (e *DuplicateCallableError) Error() string {
	return fmt.Sprintf("duplicate callable %q", e.Name)
}

// Is lets errors.Is match ErrDuplicateCallable.
func (e *DuplicateCallableError) Is(target error) bool {
	return target == ErrDuplicateCallable
}
