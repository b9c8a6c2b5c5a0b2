// Package errs defines the error kinds surfaced by the checkout workflow.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for callers and transports.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindPayment     Kind = "payment"
	KindPersistence Kind = "persistence"
	KindInternal    Kind = "internal"
)

// PaymentReason details a payment failure.
type PaymentReason string

const (
	ReasonDeclined       PaymentReason = "declined"
	ReasonInvalidToken   PaymentReason = "invalid_token"
	ReasonNetworkFailure PaymentReason = "network_failure"
)

// Error is a kind-tagged error.
type Error struct {
	Kind   Kind
	Op     string
	Msg    string
	Reason PaymentReason
	Err    error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Reason != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Reason)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds an error of the given kind.
func E(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// Validation reports malformed input.
func Validation(op, msg string) *Error {
	return E(KindValidation, op, msg, nil)
}

// NotFound reports a missing entity.
func NotFound(op, msg string) *Error {
	return E(KindNotFound, op, msg, nil)
}

// Payment reports a gateway failure with the given reason.
func Payment(op string, reason PaymentReason, err error) *Error {
	e := E(KindPayment, op, "payment failed", err)
	e.Reason = reason

	return e
}

// Persistence reports a storage failure.
func Persistence(op string, err error) *Error {
	return E(KindPersistence, op, "failed to persist order", err)
}

// Internal reports an unexpected condition.
func Internal(op, msg string, err error) *Error {
	return E(KindInternal, op, msg, err)
}

// KindOf returns the kind of the first *Error in the chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}

	return KindOf(err) == kind
}

// ReasonOf returns the payment reason of err, if any.
func ReasonOf(err error) PaymentReason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}

	return ""
}
