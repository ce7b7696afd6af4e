package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnbalanced indicates that the debit and credit totals of a proposed entry differ.
// This is always a caller or mapping bug and is never corrected silently.
var ErrUnbalanced = errors.New("entry debits do not equal credits")

// ErrAlreadyVoided indicates that a journal entry has already been voided.
var ErrAlreadyVoided = errors.New("journal entry already voided")

// ErrStateTransition indicates an invalid lifecycle transition was attempted.
// Callers should re-fetch the current state before retrying.
var ErrStateTransition = errors.New("invalid state transition")

// ErrConflict indicates a referential or concurrency conflict (e.g. reusing an
// idempotency key with a different payload, or voiding a reversal entry).
var ErrConflict = errors.New("conflict with current resource state")

// ErrPersistence indicates the underlying store was unavailable or a transaction
// aborted. Operations guarded by an idempotency key or a status precondition are
// safe to retry.
var ErrPersistence = errors.New("persistence failure")

// ErrForbidden indicates the actor is not allowed to perform the operation.
var ErrForbidden = errors.New("forbidden")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports ErrPersistence for server-class codes, so store failures stay
// matchable via errors.Is no matter which driver error they wrap.
func (e *AppError) Is(target error) bool {
	return target == ErrPersistence && e.Code >= 500
}

// NewAppError creates an AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches errors.Is(err, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
