// Package gift implements product gifting. A gift debits the sender for
// the priced product and records who receives it; the receiver's balance
// is deliberately untouched — they receive the product grant, not currency.
// This differs from a credit transfer by design.
package gift

import (
	"context"
	"errors"
	"fmt"

	"kredo/internal/models"
	"kredo/internal/repositories"
	"kredo/internal/services/catalog"
	"kredo/internal/services/wallet"

	"github.com/shopspring/decimal"
)

// Service errors
var (
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrRecipientNotFound  = errors.New("recipient not found")
	ErrSelfGiftNotAllowed = errors.New("cannot gift to yourself")
	ErrInsufficientStock  = errors.New("insufficient stock")
)

// Result is the success payload of a gift.
type Result struct {
	Gift       *models.Gift
	NewBalance decimal.Decimal
}

type Service interface {
	Gift(ctx context.Context, senderID, productID uint, quantity int, recipientEmail, message string) (*Result, error)
	ListGifts(ctx context.Context, userID uint, limit, offset int) ([]models.Gift, error)
}

type service struct {
	walletSvc wallet.Service
	catalog   catalog.Service
	users     repositories.UserRepository
	ledger    repositories.Ledger
}

// NewService creates a new gift service.
func NewService(walletSvc wallet.Service, catalogSvc catalog.Service, users repositories.UserRepository, ledger repositories.Ledger) Service {
	return &service{
		walletSvc: walletSvc,
		catalog:   catalogSvc,
		users:     users,
		ledger:    ledger,
	}
}

func (s *service) Gift(ctx context.Context, senderID, productID uint, quantity int, recipientEmail, message string) (*Result, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	receiver, err := s.users.GetByEmail(ctx, recipientEmail)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to resolve recipient: %w", err)
	}
	if receiver.ID == senderID {
		return nil, ErrSelfGiftNotAllowed
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity > product.Stock {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrInsufficientStock, product.Stock, quantity)
	}

	total := product.UnitPrice().Mul(decimal.NewFromInt(int64(quantity)))

	g := &models.Gift{
		SenderID:    senderID,
		ReceiverID:  receiver.ID,
		ProductID:   productID,
		Quantity:    quantity,
		TotalAmount: total,
		Message:     message,
	}

	// A fully discounted product totals zero; record the gift without a
	// debit, which the balance mutator would reject as an invalid amount.
	if total.IsZero() {
		if err := s.ledger.ExecuteInTransaction(ctx, func(tx repositories.Ledger) error {
			return tx.CreateGift(ctx, g)
		}); err != nil {
			return nil, fmt.Errorf("failed to record gift: %w", err)
		}
		balance, err := s.walletSvc.GetBalance(ctx, senderID)
		if err != nil {
			return nil, err
		}
		return &Result{Gift: g, NewBalance: balance}, nil
	}

	newBalance, err := s.walletSvc.Debit(ctx, senderID, total, func(tx repositories.Ledger) error {
		return tx.CreateGift(ctx, g)
	})
	if err != nil {
		return nil, err
	}

	return &Result{Gift: g, NewBalance: newBalance}, nil
}

func (s *service) ListGifts(ctx context.Context, userID uint, limit, offset int) ([]models.Gift, error) {
	return s.ledger.ListGiftsByUser(ctx, userID, limit, offset)
}
