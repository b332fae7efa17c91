package errors

import (
	"errors"
	"fmt"
	"strings"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports a payload or request body that does not have the
// expected shape.
type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Details))
	for i, d := range e.Details {
		parts[i] = d.Field + " " + d.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(parts, "; "))
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}

// TransportError is a request that did not complete: network failure or a
// non-2xx response. StatusCode is zero when no response was received.
type TransportError struct {
	Call       string
	StatusCode int
	Message    string
	Cause      error
}

func (e *TransportError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed with status %d: %s", e.Call, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s failed: %s", e.Call, msg)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

func NewTransportError(call string, statusCode int, message string, cause error) *TransportError {
	return &TransportError{
		Call:       call,
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}

func IsTransportError(err error) (*TransportError, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}
