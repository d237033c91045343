// Package apperr defines the ledger error taxonomy. Services return these;
// handlers translate them into HTTP statuses. Anything that is not an
// *Error is an infrastructure failure.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Match with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrState      = errors.New("illegal state transition")
	ErrConflict   = errors.New("conflict")
	ErrCapability = errors.New("operation not permitted for this sale")
)

// Error wraps a kind with a human-readable detail. State is set on
// ErrState errors so callers can see where the sale currently stands.
type Error struct {
	Kind   error
	Detail string
	State  string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Detail)
}

func (e *Error) Unwrap() error { return e.Kind }

func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Detail: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Detail: fmt.Sprintf(format, args...)}
}

// State reports an illegal transition from the given current state.
func State(current, format string, args ...any) error {
	return &Error{Kind: ErrState, Detail: fmt.Sprintf(format, args...), State: current}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Detail: fmt.Sprintf(format, args...)}
}

func Capability(format string, args ...any) error {
	return &Error{Kind: ErrCapability, Detail: fmt.Sprintf(format, args...)}
}

// StateOf extracts the state carried by an ErrState error, if any.
func StateOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.State
	}
	return ""
}
