package wallet

import (
	"errors"

	"kredo/internal/repositories"
)

// Service errors. The balance sentinels alias the ledger's so callers only
// ever match against this package, while wrapped detail (have X, need Y)
// survives intact.
var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrSelfTransfer        = errors.New("cannot transfer to self")
	ErrInsufficientBalance = repositories.ErrInsufficientBalance
	ErrUserNotFound        = repositories.ErrUserNotFound
)
