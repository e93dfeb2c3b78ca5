// Package transfer implements peer-to-peer credit transfers: the sender is
// debited and the receiver credited atomically, with a CreditTransfer row
// recorded in the same transaction.
package transfer

import (
	"context"
	"errors"
	"fmt"

	"kredo/internal/models"
	"kredo/internal/repositories"
	"kredo/internal/services/wallet"

	"github.com/shopspring/decimal"
)

// Service errors
var (
	ErrRecipientNotFound = errors.New("recipient not found")
)

// Result is the success payload of a credit transfer.
type Result struct {
	Transfer        *models.CreditTransfer
	SenderBalance   decimal.Decimal
	ReceiverBalance decimal.Decimal
}

type Service interface {
	Transfer(ctx context.Context, senderID uint, recipientEmail string, amount decimal.Decimal, message string) (*Result, error)
	ListTransfers(ctx context.Context, userID uint, limit, offset int) ([]models.CreditTransfer, error)
}

type service struct {
	walletSvc wallet.Service
	users     repositories.UserRepository
	ledger    repositories.Ledger
}

// NewService creates a new credit transfer service.
func NewService(walletSvc wallet.Service, users repositories.UserRepository, ledger repositories.Ledger) Service {
	return &service{
		walletSvc: walletSvc,
		users:     users,
		ledger:    ledger,
	}
}

func (s *service) Transfer(ctx context.Context, senderID uint, recipientEmail string, amount decimal.Decimal, message string) (*Result, error) {
	receiver, err := s.users.GetByEmail(ctx, recipientEmail)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to resolve recipient: %w", err)
	}

	record := &models.CreditTransfer{
		SenderID:   senderID,
		ReceiverID: receiver.ID,
		Amount:     amount,
		Message:    message,
	}

	balances, err := s.walletSvc.Transfer(ctx, senderID, receiver.ID, amount, func(tx repositories.Ledger) error {
		return tx.CreateCreditTransfer(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Transfer:        record,
		SenderBalance:   balances.FromBalance,
		ReceiverBalance: balances.ToBalance,
	}, nil
}

func (s *service) ListTransfers(ctx context.Context, userID uint, limit, offset int) ([]models.CreditTransfer, error) {
	return s.ledger.ListCreditTransfersByUser(ctx, userID, limit, offset)
}
