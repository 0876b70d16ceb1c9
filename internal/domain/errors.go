package domain

import "fmt"

// ErrorKind classifies business-rule failures so the HTTP layer can map
// them to status codes without string matching.
type ErrorKind string

const (
	ErrUnauthenticated      ErrorKind = "unauthenticated"
	ErrUnauthorized         ErrorKind = "unauthorized"
	ErrNotFound             ErrorKind = "not_found"
	ErrValidation           ErrorKind = "validation_failed"
	ErrKycRequired          ErrorKind = "identity_not_verified"
	ErrIllegalTransition    ErrorKind = "illegal_transition"
	ErrInsufficientCapacity ErrorKind = "insufficient_capacity"
	ErrTokenMismatch        ErrorKind = "token_mismatch"
	ErrRateLimited          ErrorKind = "rate_limited"
	ErrAmountCapExceeded    ErrorKind = "amount_cap_exceeded"
	ErrPaymentUnavailable   ErrorKind = "payment_mode_unavailable"
	ErrInternal             ErrorKind = "internal"
)

// Error is the result shape every public operation returns for expected
// business-rule violations. Field tags field-level validation failures
// (e.g. "kyc", "kilos_requested"); Details carries an optional
// user-facing elaboration such as a KYC rejection reason.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
	Details string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func E(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Ef(kind ErrorKind, message string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(message, args...)}
}

// FieldError builds a validation-style error tagged with the offending field.
func FieldError(kind ErrorKind, field, message string) *Error {
	return &Error{Kind: kind, Field: field, Message: message}
}

// Internal wraps an unexpected failure. The underlying error goes into
// Details for logs; the message stays generic for the caller.
func Internal(err error) *Error {
	return &Error{Kind: ErrInternal, Message: "internal error", Details: err.Error()}
}

// KindOf extracts the kind from an error, returning ErrInternal for
// anything that is not a *domain.Error.
func KindOf(err error) ErrorKind {
	if de, ok := err.(*Error); ok {
		return de.Kind
	}
	return ErrInternal
}
