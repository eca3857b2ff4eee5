package session

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned by Advance when an event is not legal in
// the session's current state.
var ErrInvalidTransition = errors.New("invalid transition")

type ErrorKind string

const (
	ErrValidation ErrorKind = "VALIDATION_ERROR"
	ErrUpload     ErrorKind = "UPLOAD_ERROR"
	ErrAnalysis   ErrorKind = "ANALYSIS_ERROR"
	ErrReport     ErrorKind = "REPORT_ERROR"
)

// Error is the single error shape that reaches the session and the UI.
// Transport and backend failures are folded into it at the gateway boundary.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
