package cloudsync

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies adapter failures so callers can decide between
// fallback and surfacing without string matching.
type ErrorKind string

const (
	KindNotAuthenticated ErrorKind = "not_authenticated"
	KindNetwork          ErrorKind = "network_error"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindNotFound         ErrorKind = "not_found"
	KindUnknown          ErrorKind = "unknown"
)

// Error is the only error type adapter implementations are allowed to
// return. It carries a classification, a human-readable message and an
// optional underlying cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cloudsync: %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("cloudsync: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds a classified adapter error.
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the classification from an adapter error,
// returning KindUnknown for foreign errors.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is a classified not-found failure.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// classifyStatus maps an HTTP status code from the remote backend onto the
// error taxonomy.
func classifyStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindNotAuthenticated
	case http.StatusForbidden:
		return KindPermissionDenied
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindUnknown
	}
}
