// Package wallet implements the balance mutator: the single primitive every
// money-moving operation goes through. It guarantees that no mutation can
// push a balance negative and that the mutation and its audit row commit
// atomically or not at all.
package wallet

import (
	"context"
	"errors"
	"fmt"

	"kredo/internal/repositories"

	"github.com/shopspring/decimal"
)

// RecordFn writes the audit row for a balance mutation. It runs inside the
// same transaction as the mutation itself, so the two are never observable
// apart.
type RecordFn func(tx repositories.Ledger) error

// TransferResult carries both resulting balances of a transfer.
type TransferResult struct {
	FromBalance decimal.Decimal
	ToBalance   decimal.Decimal
}

// Service is the balance mutator contract. Every successful call returns
// the resulting balance(s) for the caller's response payload; callers must
// not read the balance again afterwards, as that would open a second race
// window.
type Service interface {
	GetBalance(ctx context.Context, userID uint) (decimal.Decimal, error)
	Debit(ctx context.Context, userID uint, amount decimal.Decimal, record RecordFn) (decimal.Decimal, error)
	Credit(ctx context.Context, userID uint, amount decimal.Decimal, record RecordFn) (decimal.Decimal, error)
	Transfer(ctx context.Context, fromID, toID uint, amount decimal.Decimal, record RecordFn) (*TransferResult, error)
}

type service struct {
	ledger repositories.Ledger
}

// NewService creates a new wallet service.
func NewService(ledger repositories.Ledger) Service {
	if ledger == nil {
		panic("ledger is required")
	}
	return &service{ledger: ledger}
}

func (s *service) GetBalance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return decimal.Zero, err
		}
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

func (s *service) Debit(ctx context.Context, userID uint, amount decimal.Decimal, record RecordFn) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	var newBalance decimal.Decimal
	err := s.ledger.ExecuteInTransaction(ctx, func(tx repositories.Ledger) error {
		balance, err := tx.DebitBalance(ctx, userID, amount)
		if err != nil {
			return err
		}
		newBalance = balance
		if record != nil {
			return record(tx)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, translateLedgerErr(err)
	}
	return newBalance, nil
}

func (s *service) Credit(ctx context.Context, userID uint, amount decimal.Decimal, record RecordFn) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	var newBalance decimal.Decimal
	err := s.ledger.ExecuteInTransaction(ctx, func(tx repositories.Ledger) error {
		balance, err := tx.CreditBalance(ctx, userID, amount)
		if err != nil {
			return err
		}
		newBalance = balance
		if record != nil {
			return record(tx)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, translateLedgerErr(err)
	}
	return newBalance, nil
}

// Transfer debits from and credits to inside one transaction. If the debit
// fails, no credit occurs and no partial state is ever visible.
func (s *service) Transfer(ctx context.Context, fromID, toID uint, amount decimal.Decimal, record RecordFn) (*TransferResult, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if fromID == toID {
		return nil, ErrSelfTransfer
	}

	var result TransferResult
	err := s.ledger.ExecuteInTransaction(ctx, func(tx repositories.Ledger) error {
		fromBalance, err := tx.DebitBalance(ctx, fromID, amount)
		if err != nil {
			return err
		}
		toBalance, err := tx.CreditBalance(ctx, toID, amount)
		if err != nil {
			return err
		}
		result = TransferResult{FromBalance: fromBalance, ToBalance: toBalance}
		if record != nil {
			return record(tx)
		}
		return nil
	})
	if err != nil {
		return nil, translateLedgerErr(err)
	}
	return &result, nil
}

func translateLedgerErr(err error) error {
	if errors.Is(err, ErrInsufficientBalance) || errors.Is(err, ErrUserNotFound) {
		return err
	}
	return fmt.Errorf("ledger operation failed: %w", err)
}
