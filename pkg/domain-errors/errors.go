// Package domainerrors defines coded errors for the AML engine.
//
// Services return these so transport layers can translate them into HTTP
// responses without string matching. Infrastructure facts (not found, expired)
// live in pkg/platform/sentinel; stores return those and services wrap them
// into coded errors at the boundary.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks a missing or malformed mandatory field. Always
	// surfaced to the caller, never silently defaulted.
	CodeValidation Code = "validation_error"

	// CodeBadRequest marks a structurally broken request (bad JSON, bad ID).
	CodeBadRequest Code = "bad_request"

	// CodeNotFound marks a missing entity.
	CodeNotFound Code = "not_found"

	// CodeConflict marks a state conflict (duplicate, already deleted).
	CodeConflict Code = "conflict"

	// CodeBlocked marks the hard terminal state: the client hit a blocking
	// watchlist and no transaction may be registered. Rendered distinctly
	// from field-level validation failures.
	CodeBlocked Code = "client_blocked"

	// CodeAuditPolicy marks an operation that violates ledger policy, such
	// as a deletion without a reason.
	CodeAuditPolicy Code = "audit_policy_violation"

	// CodeStaleData is an internal signal that a screening is too old and
	// must be refreshed. Callers see it only as added latency; it escapes
	// to the transport layer only when the refresh itself fails.
	CodeStaleData Code = "stale_screening"

	// CodeForbidden marks a capability violation (e.g. changing a locked
	// default activity without an elevated role).
	CodeForbidden Code = "forbidden"

	// CodeUnavailable marks a dependency outage the caller may retry.
	CodeUnavailable Code = "unavailable"

	// CodeInternal marks unexpected failures. Details are logged, not returned.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error with an optional wrapped cause.
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

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from an error, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the safe-to-expose message from an error.
// Internal errors expose nothing.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Code != CodeInternal {
		return de.Message
	}
	return ""
}

// ToHTTPStatus maps a code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeAuditPolicy:
		return http.StatusConflict
	case CodeBlocked, CodeForbidden:
		return http.StatusForbidden
	case CodeStaleData, CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
