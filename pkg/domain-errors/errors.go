// Package domainerrors defines the error taxonomy shared by services and
// transport. Every error crossing a layer boundary carries a Code so callers
// can branch on kind instead of matching message strings, and so the HTTP
// layer can map errors to status codes in one place.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the category of a domain error.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeUnavailable  Code = "unavailable"
	CodeInternal     Code = "internal"

	// CodeInvariantViolation marks a domain invariant breach detected inside
	// an aggregate. Services translate it before it reaches transport.
	CodeInvariantViolation Code = "invariant_violation"

	// Connection-graph specific codes. These are part of the public contract:
	// clients decide whether to retry based on the code, so the graph
	// transitions each get their own.
	CodeSelfReference    Code = "self_reference"
	CodeAlreadyConnected Code = "already_connected"
	CodeDuplicateRequest Code = "duplicate_request"
	CodeNoSuchRequest    Code = "no_such_request"
)

// Error is a code-carrying error. Message is safe to show to API clients;
// the wrapped cause is for logs only.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a domain error with the given code and client-safe message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is a readability alias for HasCode used at handler call sites.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// untyped errors so unexpected failures never leak details.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the client-safe message from err.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a code to its HTTP status. The graph transition codes
// map to 400 per the API contract: the request was understood but the
// relation state does not allow it.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidInput,
		CodeSelfReference, CodeAlreadyConnected,
		CodeDuplicateRequest, CodeNoSuchRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvariantViolation:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
