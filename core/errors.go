package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failure for the HTTP boundary. Kinds are stable
// contract values; messages are human-readable and carry no internal detail.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindForbidden      ErrorKind = "forbidden"
	KindNotFound       ErrorKind = "not_found"
	KindPartialFailure ErrorKind = "partial_failure"
	KindUpstream       ErrorKind = "upstream"
)

// Error is the single error type crossing the service boundary. Fields is
// populated for validation errors only and lists every violated field.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  []string
	Err     error
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// ValidationError reports that client-supplied data violates the data model,
// naming every violated field.
func ValidationError(message string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Forbiddenf reports that the acting identity is not the resource owner.
func Forbiddenf(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf reports an absent resource. Ownership mismatches use the same
// kind so a caller cannot distinguish another user's resource from absence.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// PartialFailure reports that a later step of a multi-step operation failed
// after an earlier step committed.
func PartialFailure(message string, err error) *Error {
	return &Error{Kind: KindPartialFailure, Message: message, Err: err}
}

// UpstreamFailure reports a failed or timed-out store/blob-service call.
func UpstreamFailure(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

// KindOf extracts the kind of err, defaulting to KindUpstream for errors
// that did not originate in this package.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// IsNotFound reports whether err carries the not-found kind.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
