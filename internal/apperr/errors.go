// Package apperr defines the closed error-kind taxonomy shared across the
// host and sandbox processes. Errors crossing the IPC boundary are encoded
// as {kind, message} pairs rather than arbitrary Go error strings, so the
// sandbox can never smuggle a stack trace or internal path back to the host
// and the host can make policy decisions (retry vs fail vs escalate) off
// the kind alone.
package apperr

import "fmt"

// Kind is a closed tagged enum of error categories. New kinds must be added
// here, never invented ad hoc at call sites.
type Kind string

const (
	// KindValidation marks malformed input: schema violations, bad IDs,
	// oversized payloads. Never retried.
	KindValidation Kind = "validation"
	// KindPolicy marks a request that was well-formed but denied by a
	// policy decision: taint budget exceeded, tool not permitted,
	// vendor path not allowlisted.
	KindPolicy Kind = "policy"
	// KindProvider marks a failure from an upstream vendor or external
	// service (LLM API, web search, channel API). Usually retryable.
	KindProvider Kind = "provider"
	// KindFatal marks an unrecoverable internal failure: corrupted
	// state, a programming invariant violated. The caller should stop,
	// not retry.
	KindFatal Kind = "fatal"
)

// Error is the concrete error type. It satisfies the standard error
// interface and additionally carries a Kind for programmatic dispatch.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a KindValidation error.
func Validation(format string, args ...any) *Error { return newf(KindValidation, format, args...) }

// Policy builds a KindPolicy error.
func Policy(format string, args ...any) *Error { return newf(KindPolicy, format, args...) }

// Provider builds a KindProvider error, optionally wrapping a cause.
func Provider(cause error, format string, args ...any) *Error {
	e := newf(KindProvider, format, args...)
	e.Cause = cause
	return e
}

// Fatal builds a KindFatal error, optionally wrapping a cause.
func Fatal(cause error, format string, args ...any) *Error {
	e := newf(KindFatal, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}

// KindOf extracts the Kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ""
}
