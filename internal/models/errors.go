package models

import "errors"

var (
	// ErrOrderNotFound is returned when the backend does not know the order code.
	ErrOrderNotFound = errors.New("order not found")
	// ErrNoCachedResult is returned when the result cache has no entry for the order code.
	ErrNoCachedResult = errors.New("no cached payment result")
	// ErrInvalidDeepLink is returned for URLs that are not payment-result links.
	ErrInvalidDeepLink = errors.New("not a payment result link")
	// ErrEmptySignal is returned when a link carries no parameters.
	ErrEmptySignal = errors.New("empty payment signal")
	// ErrResultNotFound is returned when no result has been recorded for an order code.
	ErrResultNotFound = errors.New("payment result not found")
)
