package types

import (
	"errors"
	"fmt"
)

// Kind is one of the five error kinds named in the error-handling design
// (§7): a closed, small set checked by callers via errors.As, never by
// string matching.
type Kind string

const (
	// KindInvalidInput marks a request validation failure.
	KindInvalidInput Kind = "invalid_input"
	// KindUpstreamUnavailable marks an exhausted weather or elevation
	// provider retry budget.
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	// KindResourceUnavailable marks a database or cache connection pool
	// exhaustion.
	KindResourceUnavailable Kind = "resource_unavailable"
	// KindTimeout marks a per-request deadline expiry.
	KindTimeout Kind = "timeout"
	// KindInternalInconsistency marks a kernel producing NaN or a matrix
	// lookup failing in a way that indicates a bug rather than bad input.
	KindInternalInconsistency Kind = "internal_inconsistency"
)

// Error is the typed-kind error threaded through every core component.
// Field-level validation detail is optional and only populated for
// KindInvalidInput.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewInvalidInput builds a KindInvalidInput error scoped to one field.
func NewInvalidInput(field, message string) *Error {
	return &Error{Kind: KindInvalidInput, Field: field, Message: message}
}

// NewUpstreamUnavailable wraps an upstream transport failure.
func NewUpstreamUnavailable(message string, err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Message: message, Err: err}
}

// NewResourceUnavailable wraps a pool-exhaustion failure.
func NewResourceUnavailable(message string, err error) *Error {
	return &Error{Kind: KindResourceUnavailable, Message: message, Err: err}
}

// NewTimeout builds a KindTimeout error.
func NewTimeout(message string) *Error {
	return &Error{Kind: KindTimeout, Message: message}
}

// NewInternalInconsistency wraps a kernel/bug-shaped failure.
func NewInternalInconsistency(message string, err error) *Error {
	return &Error{Kind: KindInternalInconsistency, Message: message, Err: err}
}

// IsKind reports whether err wraps a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
