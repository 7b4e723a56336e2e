package ledger

import (
	"errors"
	"fmt"
)

// Kind discriminates the failure classes callers must tell apart.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
)

// String returns the public name of the kind, as surfaced to API clients.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFoundError"
	case KindForbidden:
		return "ForbiddenError"
	default:
		return "InternalError"
	}
}

// Sentinels for errors.Is checks against a *Error of the matching kind.
var (
	ErrValidation = errors.New("ledger: validation failed")
	ErrNotFound   = errors.New("ledger: not found")
	ErrForbidden  = errors.New("ledger: forbidden")
	ErrInternal   = errors.New("ledger: internal failure")
)

// Error is the only error type the ledger returns. Message is safe to show
// to callers; Err carries the underlying cause for logs and never leaves
// the process.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrForbidden:
		return e.Kind == KindForbidden
	case ErrInternal:
		return e.Kind == KindInternal
	}
	return false
}

// KindOf reports the kind of err. Errors that did not come from the ledger
// are treated as internal.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindInternal
}

// PublicMessage returns the caller-safe message of err.
func PublicMessage(err error) string {
	var le *Error
	if errors.As(err, &le) {
		return le.Message
	}
	return internalMessage
}

const internalMessage = "internal error"

func validationError(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func notFoundError(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func forbiddenError() error {
	return &Error{Kind: KindForbidden, Message: "caller does not own this account"}
}

func internalError(cause error) error {
	return &Error{Kind: KindInternal, Message: internalMessage, Err: cause}
}
