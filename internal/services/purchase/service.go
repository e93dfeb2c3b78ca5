// Package purchase implements direct product purchases: price the product
// via the catalog collaborator, debit the buyer and record the Order, all
// in one transaction.
package purchase

import (
	"context"
	"errors"
	"fmt"

	"kredo/internal/models"
	"kredo/internal/repositories"
	"kredo/internal/services/catalog"
	"kredo/internal/services/wallet"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service errors
var (
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Result is the success payload of a purchase.
type Result struct {
	Order      *models.Order
	NewBalance decimal.Decimal
}

type Service interface {
	Purchase(ctx context.Context, buyerID, productID uint, quantity int) (*Result, error)
	ListOrders(ctx context.Context, buyerID uint, limit, offset int) ([]models.Order, error)
}

type service struct {
	walletSvc wallet.Service
	catalog   catalog.Service
	ledger    repositories.Ledger
}

// NewService creates a new purchase service.
func NewService(walletSvc wallet.Service, catalogSvc catalog.Service, ledger repositories.Ledger) Service {
	return &service{
		walletSvc: walletSvc,
		catalog:   catalogSvc,
		ledger:    ledger,
	}
}

// Purchase debits the buyer and records the Order atomically. On failure
// there are no side effects: the product lookup happens before any
// mutation, and a failed debit inserts nothing.
func (s *service) Purchase(ctx context.Context, buyerID, productID uint, quantity int) (*Result, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity > product.Stock {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrInsufficientStock, product.Stock, quantity)
	}

	total := product.UnitPrice().Mul(decimal.NewFromInt(int64(quantity)))

	order := &models.Order{
		Reference:   uuid.NewString(),
		BuyerID:     buyerID,
		ProductID:   productID,
		Quantity:    quantity,
		TotalAmount: total,
	}

	// A fully discounted product totals zero; record the order without a
	// debit, which the balance mutator would reject as an invalid amount.
	if total.IsZero() {
		if err := s.ledger.ExecuteInTransaction(ctx, func(tx repositories.Ledger) error {
			return tx.CreateOrder(ctx, order)
		}); err != nil {
			return nil, fmt.Errorf("failed to record order: %w", err)
		}
		balance, err := s.walletSvc.GetBalance(ctx, buyerID)
		if err != nil {
			return nil, err
		}
		return &Result{Order: order, NewBalance: balance}, nil
	}

	newBalance, err := s.walletSvc.Debit(ctx, buyerID, total, func(tx repositories.Ledger) error {
		return tx.CreateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	return &Result{Order: order, NewBalance: newBalance}, nil
}

func (s *service) ListOrders(ctx context.Context, buyerID uint, limit, offset int) ([]models.Order, error) {
	return s.ledger.ListOrdersByBuyer(ctx, buyerID, limit, offset)
}
