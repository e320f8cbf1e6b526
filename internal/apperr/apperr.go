// Package apperr defines the error taxonomy shared by the core components.
// Every failure a caller can act on is one of five kinds; conflict and
// validation errors additionally carry a machine-readable reason and a
// human retry hint for the requesting interface to display.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and for HTTP status mapping.
type Kind int

const (
	// KindNotFound means an identifier did not resolve.
	KindNotFound Kind = iota + 1

	// KindValidation means the input was malformed (bad price, bad
	// percentage, empty field).
	KindValidation

	// KindConflict means a state precondition was violated (item not
	// Available, double-sale race).
	KindConflict

	// KindUnauthorized means the token's role lacks the capability for
	// the requested operation.
	KindUnauthorized

	// KindStore means the record store failed to complete a write; no
	// partial state was applied.
	KindStore
)

// Reason is a machine-readable rejection code.
type Reason string

const (
	ReasonItemUnavailable   Reason = "item_unavailable"
	ReasonPriceMismatch     Reason = "price_mismatch"
	ReasonBuyerUnauthorized Reason = "buyer_unauthorized"
	ReasonItemSold          Reason = "item_sold"
)

// Error is the concrete error type carried across component boundaries.
type Error struct {
	Kind   Kind
	Reason Reason
	// Hint is retry guidance for the end user, e.g.
	// "item already sold — refresh listing".
	Hint string
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// NotFound reports an unresolved identifier.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

// Validation reports malformed input.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, msg: fmt.Sprintf(format, args...)}
}

// Conflict reports a violated state precondition.
func Conflict(reason Reason, hint, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Reason: reason, Hint: hint, msg: fmt.Sprintf(format, args...)}
}

// Unauthorized reports a missing capability. Purchase rejections attach
// ReasonBuyerUnauthorized via WithReason; other callers carry no reason.
func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, msg: fmt.Sprintf(format, args...)}
}

// Store wraps a record store failure.
func Store(err error, format string, args ...any) *Error {
	return &Error{Kind: KindStore, msg: fmt.Sprintf(format, args...), err: err}
}

// WithReason returns a copy of e carrying the given reason code.
func (e *Error) WithReason(r Reason) *Error {
	c := *e
	c.Reason = r
	return &c
}

// KindOf extracts the kind from any error in err's chain, or 0 if err is
// not an apperr.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// ReasonOf extracts the reason code from err's chain, if any.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}

// IsKind reports whether err's chain contains an apperr of the given kind.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
