package apperr

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Every error that should reach a caller with a specific
// status unwraps to exactly one of them.
var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("conflict")
)

// ErrConcurrentModification is returned by storage when a versioned update
// finds the row already changed. Callers translate it to one of the kinds.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// Error carries a caller-facing message and the kind it belongs to.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func BadRequestf(format string, args ...any) error {
	return &Error{Kind: ErrBadRequest, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// Message returns the caller-facing text of err. Errors that are not
// *Error fall back to their kind so internal details stay hidden.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	case errors.Is(err, ErrBadRequest):
		return ErrBadRequest.Error()
	case errors.Is(err, ErrConflict):
		return ErrConflict.Error()
	}
	return "internal server error"
}
