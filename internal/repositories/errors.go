package repositories

import "errors"

// Repository errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateReference  = errors.New("duplicate external reference")
	ErrDatabaseOperation   = errors.New("database operation failed")
)
