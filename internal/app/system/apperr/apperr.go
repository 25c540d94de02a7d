// Package apperr defines the error taxonomy shared by all features.
//
// Every authorization or validation failure surfaces as an *Error with
// a stable Kind and a human-readable reason. Stores return sentinel
// errors; features map them to kinds before responding.
package apperr

import "errors"

// Kind classifies an error for transport mapping and tests.
type Kind int

const (
	// Unauthenticated means the credential is missing or invalid.
	Unauthenticated Kind = iota + 1
	// Forbidden means the caller is authenticated but not permitted.
	Forbidden
	// NotFound means the entity is absent or, for project-scoped
	// actions, access is reported as absence to avoid leaking existence.
	NotFound
	// BadRequest means the request is malformed (bad identifier,
	// empty update payload, unknown enum value).
	BadRequest
	// Conflict means a uniqueness or membership-set invariant was hit.
	Conflict
	// Inconsistent means stored data violates an internal invariant
	// (e.g. a task referencing a project that no longer exists).
	Inconsistent
)

// Error carries a kind and a reason suitable for the response body.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }

// Is matches by kind so tests can compare against a bare kinded error.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates an error with the given kind and reason.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error that keeps the underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the kind from err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
