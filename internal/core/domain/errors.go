package domain

import "errors"

// ErrorKind classifies domain errors so the transport layer can map them
// to a status code without inspecting messages.
type ErrorKind string

const (
	KindUnauthorized       ErrorKind = "unauthorized"
	KindNotFound           ErrorKind = "not_found"
	KindInvalidState       ErrorKind = "invalid_state_transition"
	KindPreconditionFailed ErrorKind = "precondition_failed"
	KindDataIntegrity      ErrorKind = "data_integrity"
	KindInvalidInput       ErrorKind = "invalid_input"
	KindConflict           ErrorKind = "conflict"
)

// Error is a structured domain error: a kind plus a human-readable message.
// Services return these values directly; handlers switch on the kind.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is lets errors.Is match any error of the same kind, so sentinel values
// below double as kind matchers.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf extracts the error kind, or empty string for non-domain errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// Common domain errors
var (
	ErrUnauthorized = &Error{KindUnauthorized, "unauthorized"}
	ErrInvalidInput = &Error{KindInvalidInput, "invalid input"}
)

// User errors
var (
	ErrUserNotFound    = &Error{KindNotFound, "user not found"}
	ErrEmailTaken      = &Error{KindConflict, "email already registered"}
	ErrUserNotLoanable = &Error{KindPreconditionFailed, "cannot create a new request: user has pending requests or unpaid loans"}
)

// Request errors
var (
	ErrRequestNotFound   = &Error{KindNotFound, "request not found"}
	ErrRequestNotPending = &Error{KindInvalidState, "request is not pending"}
	ErrRequestHasLoan    = &Error{KindPreconditionFailed, "request cannot be deleted: delete linked loan(s) first"}
)

// Loan errors
var (
	ErrLoanNotFound    = &Error{KindNotFound, "loan not found"}
	ErrLoanAlreadyPaid = &Error{KindInvalidState, "loan has already been paid"}
	ErrOrphanedLoan    = &Error{KindDataIntegrity, "orphaned loan: no parent request found"}
)
