package payment

import "errors"

// Service errors
var (
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrProcessorUnavailable = errors.New("payment processor unavailable")
	ErrUnknownReference     = errors.New("unknown payment reference")
	ErrAmountMismatch       = errors.New("confirmed amount does not match payment")
)
