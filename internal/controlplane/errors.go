package controlplane

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every "resource does not exist" answer.
var ErrNotFound = errors.New("resource not found")

// NotFoundError carries the resource that was missing and the backend's
// original error, if any.
type NotFoundError struct {
	Kind ResourceKind
	Name string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %q not found: %v", e.Kind, e.Name, e.Err)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound builds a NotFoundError.
func NotFound(kind ResourceKind, name string, cause error) error {
	return &NotFoundError{Kind: kind, Name: name, Err: cause}
}

// IsNotFound reports whether err means the resource does not exist.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// alreadyExistsError is returned by Memory when a name is reused.
type alreadyExistsError struct {
	kind ResourceKind
	name string
}

func (e alreadyExistsError) Error() string {
	return fmt.Sprintf("cannot create already existing %s %q", e.kind, e.name)
}

// IsAlreadyExists reports whether err is a duplicate-name rejection.
func IsAlreadyExists(err error) bool {
	var ae alreadyExistsError
	return errors.As(err, &ae)
}
