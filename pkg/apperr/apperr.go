// Package apperr defines the application error taxonomy.
//
// Every failure that crosses a service boundary is classified into a Kind so
// controllers can map it to an HTTP status without inspecting error strings,
// and so internal detail (driver errors, provider bodies) never leaks to the
// client. Wrap at the point where the classification is known:
//
//	if errors.Is(err, gorm.ErrRecordNotFound) {
//	    return apperr.New(apperr.NotFound, "product not found")
//	}
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	// Internal is the fallback for unclassified failures.
	Internal Kind = iota
	// Validation covers malformed or out-of-range client input.
	Validation
	// Unauthorized means the caller is not authenticated.
	Unauthorized
	// Forbidden means the caller is authenticated but not allowed.
	// Never downgraded to NotFound: hiding the resource would still
	// leak its existence through timing, and the UX needs the distinction.
	Forbidden
	// NotFound means a referenced entity does not resolve.
	NotFound
	// Conflict covers uniqueness clashes and illegal state transitions.
	Conflict
	// Integrity covers referential-integrity failures at the persistence
	// boundary (e.g. a cart referencing a deleted product).
	Integrity
	// Unavailable covers external-dependency failures (storage signing,
	// payment processor). Retried zero times; the client sees only
	// "service temporarily unavailable".
	Unavailable
)

// Error carries a Kind, a client-safe message, and an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with no underlying cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error. The message is what the client may
// see; err is logged server-side only.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the Kind from err, unwrapping as needed.
// A nil error has no kind; anything unclassified is Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message returns the client-safe message for err. Unclassified errors get
// a generic message so internals never reach the wire.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "Internal Server Error"
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
