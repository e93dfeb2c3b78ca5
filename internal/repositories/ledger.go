package repositories

import (
	"context"

	"kredo/internal/models"

	"github.com/shopspring/decimal"
)

// Ledger is the durable store for balances and the audit rows that produced
// them. Every balance mutation must happen inside ExecuteInTransaction
// together with its corresponding Order/Gift/CreditTransfer/Payment row, so
// balance and history never diverge, even under crash-and-restart.
//
// Balance updates are conditional single statements (check-and-adjust in one
// UPDATE), never read-then-write: concurrent mutations of the same row are
// serialized by the database, not by application-level locking.
type Ledger interface {
	// ExecuteInTransaction runs fn against a transaction-scoped Ledger.
	// Any error rolls the whole transaction back.
	ExecuteInTransaction(ctx context.Context, fn func(tx Ledger) error) error

	// Balance primitives. Both return the resulting balance so callers
	// never need a second read (and its race window).
	DebitBalance(ctx context.Context, userID uint, amount decimal.Decimal) (decimal.Decimal, error)
	CreditBalance(ctx context.Context, userID uint, amount decimal.Decimal) (decimal.Decimal, error)
	GetBalance(ctx context.Context, userID uint) (decimal.Decimal, error)

	// Audit rows.
	CreateOrder(ctx context.Context, order *models.Order) error
	ListOrdersByBuyer(ctx context.Context, buyerID uint, limit, offset int) ([]models.Order, error)

	CreateGift(ctx context.Context, gift *models.Gift) error
	ListGiftsByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Gift, error)

	CreateCreditTransfer(ctx context.Context, transfer *models.CreditTransfer) error
	ListCreditTransfersByUser(ctx context.Context, userID uint, limit, offset int) ([]models.CreditTransfer, error)

	// Payments. MarkPaymentSucceeded is the guarded pending->succeeded
	// transition: it reports whether this call won the transition, so the
	// notification path and the reconciliation sweep can race on the same
	// row and credit the wallet exactly once between them.
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPaymentByReference(ctx context.Context, reference string) (*models.Payment, error)
	ListPendingPayments(ctx context.Context, userID uint) ([]models.Payment, error)
	MarkPaymentSucceeded(ctx context.Context, reference string) (bool, error)
}
