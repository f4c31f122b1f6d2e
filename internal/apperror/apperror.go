// Package apperror defines the error taxonomy shared by the pricing and booking pipeline.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindNotFound     Kind = "NOT_FOUND"
	KindUpstream     Kind = "UPSTREAM"
	KindComputation  Kind = "COMPUTATION"
	KindPersistence  Kind = "PERSISTENCE"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
)

// Error is a classified pipeline failure. Code is the stable identifier surfaced to API clients.
type Error struct {
	Kind      Kind
	Code      string
	Message   string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two errors of the same code so that sentinels below work with errors.Is
// regardless of the message or the attached cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrValidation             = &Error{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: "invalid request"}
	ErrInvalidPassengerCounts = &Error{Kind: KindValidation, Code: "INVALID_PASSENGER_COUNTS", Message: "invalid passenger counts"}
	ErrInvalidTransition      = &Error{Kind: KindValidation, Code: "INVALID_STATUS_TRANSITION", Message: "booking status transition not allowed"}
	ErrPriceWarning           = &Error{Kind: KindValidation, Code: "PRICE_WARNING", Message: "provider returned pricing warnings"}
	ErrFlightNotFound         = &Error{Kind: KindNotFound, Code: "FLIGHT_NOT_FOUND", Message: "flight not found"}
	ErrFareUnavailable        = &Error{Kind: KindNotFound, Code: "FARE_UNAVAILABLE", Message: "fare not available for cabin class"}
	ErrBookingNotFound        = &Error{Kind: KindNotFound, Code: "BOOKING_NOT_FOUND", Message: "booking not found"}
	ErrUpstream               = &Error{Kind: KindUpstream, Code: "UPSTREAM_ERROR", Message: "flight provider request failed", Retryable: true}
	ErrInvalidFareData        = &Error{Kind: KindComputation, Code: "INVALID_FARE_DATA", Message: "invalid fare data"}
	ErrComputation            = &Error{Kind: KindComputation, Code: "PRICING_ERROR", Message: "price computation failed"}
	ErrDuplicateBookingID     = &Error{Kind: KindPersistence, Code: "DUPLICATE_BOOKING_ID", Message: "booking identifier already exists", Retryable: true}
	ErrBookingPersistFailed   = &Error{Kind: KindPersistence, Code: "BOOKING_PERSIST_FAILED", Message: "failed to persist booking"}
	ErrUnauthorized           = &Error{Kind: KindUnauthorized, Code: "UNAUTHORIZED", Message: "access token required"}
	ErrForbidden              = &Error{Kind: KindForbidden, Code: "INVALID_TOKEN", Message: "invalid token"}
)

// New derives an error from a sentinel with a specific message and cause.
func New(base *Error, message string, cause error) *Error {
	e := *base
	if message != "" {
		e.Message = message
	}
	e.Err = cause
	return &e
}

// Newf is New with a formatted message and no cause.
func Newf(base *Error, format string, args ...any) *Error {
	return New(base, fmt.Sprintf(format, args...), nil)
}

// Validation is a shortcut for a user-fixable request error.
func Validation(message string) *Error {
	return New(ErrValidation, message, nil)
}

// As extracts the classified error from a chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsRetryable reports whether the caller may retry the failed operation.
func IsRetryable(err error) bool {
	if e, ok := As(err); ok {
		return e.Retryable
	}
	return false
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
