package repositories

import (
	"context"
	"errors"
	"fmt"

	"kredo/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository backed by Postgres.
func NewLedgerRepository(db *gorm.DB) Ledger {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) ExecuteInTransaction(ctx context.Context, fn func(tx Ledger) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx})
	})
}

// DebitBalance decrements a user's balance only if it covers the amount.
// The check and the decrement are one UPDATE statement, so two concurrent
// debits that would jointly overdraw can never both succeed.
func (r *ledgerRepository) DebitBalance(ctx context.Context, userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	var user models.User
	result := r.db.WithContext(ctx).Model(&user).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "balance"}}}).
		Where("id = ? AND balance >= ?", userID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return decimal.Zero, fmt.Errorf("failed to debit balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Zero rows means either the user is missing or the balance
		// check failed; tell them apart for the caller.
		var current models.User
		if err := r.db.WithContext(ctx).Select("balance").First(&current, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return decimal.Zero, ErrUserNotFound
			}
			return decimal.Zero, fmt.Errorf("failed to debit balance: %w", err)
		}
		return decimal.Zero, fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, current.Balance, amount)
	}
	return user.Balance, nil
}

// CreditBalance increments a user's balance unconditionally.
func (r *ledgerRepository) CreditBalance(ctx context.Context, userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	var user models.User
	result := r.db.WithContext(ctx).Model(&user).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "balance"}}}).
		Where("id = ?", userID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return decimal.Zero, fmt.Errorf("failed to credit balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return decimal.Zero, ErrUserNotFound
	}
	return user.Balance, nil
}

func (r *ledgerRepository) GetBalance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Select("balance").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}
	return user.Balance, nil
}

func (r *ledgerRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *ledgerRepository) ListOrdersByBuyer(ctx context.Context, buyerID uint, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *ledgerRepository) CreateGift(ctx context.Context, gift *models.Gift) error {
	if err := r.db.WithContext(ctx).Create(gift).Error; err != nil {
		return fmt.Errorf("failed to create gift: %w", err)
	}
	return nil
}

func (r *ledgerRepository) ListGiftsByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Gift, error) {
	var gifts []models.Gift
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&gifts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list gifts: %w", err)
	}
	return gifts, nil
}

func (r *ledgerRepository) CreateCreditTransfer(ctx context.Context, transfer *models.CreditTransfer) error {
	if err := r.db.WithContext(ctx).Create(transfer).Error; err != nil {
		return fmt.Errorf("failed to create credit transfer: %w", err)
	}
	return nil
}

func (r *ledgerRepository) ListCreditTransfersByUser(ctx context.Context, userID uint, limit, offset int) ([]models.CreditTransfer, error) {
	var transfers []models.CreditTransfer
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&transfers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list credit transfers: %w", err)
	}
	return transfers, nil
}

func (r *ledgerRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateReference
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetPaymentByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("external_reference = ?", reference).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *ledgerRepository) ListPendingPayments(ctx context.Context, userID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.PaymentStatusPending).
		Order("created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending payments: %w", err)
	}
	return payments, nil
}

// MarkPaymentSucceeded flips a payment to succeeded only if it is still
// pending, as a single conditional UPDATE. The affected-row count decides
// the race between the webhook and the reconciliation sweep: whichever path
// gets here first wins, the other observes zero rows.
func (r *ledgerRepository) MarkPaymentSucceeded(ctx context.Context, reference string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("external_reference = ? AND status = ?", reference, models.PaymentStatusPending).
		Update("status", models.PaymentStatusSucceeded)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark payment succeeded: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
