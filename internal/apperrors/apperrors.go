// Package apperrors defines the error kinds shared by the store, the core and
// the transport. Every kind is local to the operation that raised it.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")

	ErrInvalidRequest  = errors.New("invalid request body")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("actor is not signed in")

	ErrForbidden         = errors.New("task is not assigned to you")
	ErrSupervisorOnly    = errors.New("only a supervisor may do this")
	ErrInvalidTransition = errors.New("transition is not allowed from the current status")
	ErrConflict          = errors.New("task was changed by another crew member")

	ErrConnectivity = errors.New("store is unreachable")
)

// ConnectivityError marks a failed round-trip to the backing store. It is
// retryable by the caller; the core never retries on its own.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrConnectivity, e.Err)
}
func (e *ConnectivityError) Is(target error) bool { return target == ErrConnectivity }
func (e *ConnectivityError) Unwrap() error        { return e.Err }

type TransitionError struct {
	From  string
	Event string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a task that is %s", e.Event, e.From)
}
func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

type TurnaroundAlreadyExistsError struct{ TurnaroundID string }

func (e *TurnaroundAlreadyExistsError) Error() string {
	return fmt.Sprintf("turnaround '%s' already exists", e.TurnaroundID)
}
func (e *TurnaroundAlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }

// TaskAlreadyExistsError is a checklist task id that is already stored.
type TaskAlreadyExistsError struct{ TurnaroundID string }

func (e *TaskAlreadyExistsError) Error() string {
	return fmt.Sprintf("a task id of turnaround '%s' is already in use", e.TurnaroundID)
}
func (e *TaskAlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }
