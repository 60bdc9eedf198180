package model

import (
	"context"
	"errors"
)

var (
	// ErrInsufficientHistory means fewer bars or rows than required are available.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrInvalidSnapshot means a required indicator value is undefined at the requested row.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	// ErrDivisionByZero means a ratio's denominator is zero.
	ErrDivisionByZero = errors.New("division by zero")
)

// Failure reason codes.
const (
	ReasonInsufficientHistory = "insufficient_history"
	ReasonInvalidSnapshot     = "invalid_snapshot"
	ReasonDivisionByZero      = "division_by_zero"
	ReasonCanceled            = "canceled"
	ReasonFetchFailed         = "fetch_failed"
)

// FailureReason maps an error to a stable reason code.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientHistory):
		return ReasonInsufficientHistory
	case errors.Is(err, ErrInvalidSnapshot):
		return ReasonInvalidSnapshot
	case errors.Is(err, ErrDivisionByZero):
		return ReasonDivisionByZero
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCanceled
	default:
		return ReasonFetchFailed
	}
}

// IsDataQuality reports whether err is one of the classification errors,
// as opposed to a retrieval failure.
func IsDataQuality(err error) bool {
	return errors.Is(err, ErrInsufficientHistory) ||
		errors.Is(err, ErrInvalidSnapshot) ||
		errors.Is(err, ErrDivisionByZero)
}
