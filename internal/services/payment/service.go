// Package payment implements external top-ups and their reconciliation.
//
// A top-up creates a pending Payment row tied to a processor checkout
// session, then exactly one of two racing completion paths credits the
// wallet: the asynchronous webhook notification or the synchronous
// reconciliation sweep. Both paths share the same guarded pending->succeeded
// transition in the ledger, so whichever reaches a row first wins and the
// other observes a no-op. Credit is applied at most once per Payment for
// the lifetime of the system, however the paths interleave or redeliver.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log"

	"kredo/internal/models"
	"kredo/internal/repositories"

	"github.com/shopspring/decimal"
)

// TopUpIntent is the success payload of an initiated top-up.
type TopUpIntent struct {
	Reference   string
	RedirectURL string
}

// ReconcileResult reports what a reconciliation sweep accomplished.
type ReconcileResult struct {
	Completed int
	Total     decimal.Decimal
	Balance   decimal.Decimal
}

type Service interface {
	InitiateTopUp(ctx context.Context, userID uint, amount decimal.Decimal) (*TopUpIntent, error)
	CompleteViaNotification(ctx context.Context, reference string, confirmedAmount decimal.Decimal) error
	ReconcilePending(ctx context.Context, userID uint) (*ReconcileResult, error)
}

type service struct {
	ledger   repositories.Ledger
	provider CheckoutProvider
}

// NewService creates a new payment reconciliation service.
func NewService(ledger repositories.Ledger, provider CheckoutProvider) Service {
	if ledger == nil {
		panic("ledger is required")
	}
	if provider == nil {
		panic("checkout provider is required")
	}
	return &service{ledger: ledger, provider: provider}
}

// InitiateTopUp opens a checkout session and records the pending Payment.
// The row is inserted before the redirect target is returned, so any later
// notification referencing the session already has a row to match.
func (s *service) InitiateTopUp(ctx context.Context, userID uint, amount decimal.Decimal) (*TopUpIntent, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	// The processor charges whole cents. A sub-cent amount would be stored
	// here but charged truncated, so the confirmed amount could never match
	// and the payment would stay pending despite a completed charge.
	if !amount.Equal(amount.Round(2)) {
		return nil, fmt.Errorf("%w: at most two decimal places", ErrInvalidAmount)
	}

	session, err := s.provider.CreateCheckoutSession(ctx, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessorUnavailable, err)
	}

	p := &models.Payment{
		UserID:            userID,
		ExternalReference: session.Reference,
		Amount:            amount,
		Status:            models.PaymentStatusPending,
		Metadata: models.JSON{
			"redirect_url": session.RedirectURL,
		},
	}
	if err := s.ledger.CreatePayment(ctx, p); err != nil {
		// The session exists at the processor but has no row here; the
		// client will see a failure and the session simply expires
		// unpaid, so no credit can ever result from it.
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	return &TopUpIntent{Reference: session.Reference, RedirectURL: session.RedirectURL}, nil
}

// CompleteViaNotification handles a signature-verified processor
// notification. It is idempotent: redeliveries of an already-succeeded
// reference are a successful no-op.
func (s *service) CompleteViaNotification(ctx context.Context, reference string, confirmedAmount decimal.Decimal) error {
	p, err := s.ledger.GetPaymentByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			log.Printf("notification for unknown payment reference %q", reference)
			return ErrUnknownReference
		}
		return fmt.Errorf("failed to look up payment: %w", err)
	}

	if p.Status == models.PaymentStatusSucceeded {
		return nil
	}

	// The stored amount is authoritative for the credit; a notification
	// carrying a different amount must not transition the payment.
	if !confirmedAmount.Equal(p.Amount) {
		return fmt.Errorf("%w: have %s, confirmed %s", ErrAmountMismatch, p.Amount, confirmedAmount)
	}

	return s.complete(ctx, p, nil)
}

// ReconcilePending is the synchronous fallback for delayed or dropped
// notifications. It promotes every pending payment the processor reports
// as paid, using the identical guarded transition as the notification
// path.
func (s *service) ReconcilePending(ctx context.Context, userID uint) (*ReconcileResult, error) {
	pending, err := s.ledger.ListPendingPayments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending payments: %w", err)
	}

	result := &ReconcileResult{Total: decimal.Zero}
	credited := false

	for i := range pending {
		p := pending[i]

		paid, err := s.provider.SessionPaid(ctx, p.ExternalReference)
		if err != nil {
			log.Printf("reconcile: cannot verify session %q: %v", p.ExternalReference, err)
			continue
		}
		if !paid {
			continue
		}

		if err := s.complete(ctx, &p, func(balance decimal.Decimal) {
			result.Completed++
			result.Total = result.Total.Add(p.Amount)
			result.Balance = balance
			credited = true
		}); err != nil {
			// Earlier iterations have already committed; hand the partial
			// result back so the caller can report what was credited.
			return result, fmt.Errorf("reconcile stopped after %d completion(s): %w", result.Completed, err)
		}
	}

	if !credited {
		balance, err := s.ledger.GetBalance(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get balance: %w", err)
		}
		result.Balance = balance
	}
	return result, nil
}

// complete performs the guarded transition and the wallet credit in one
// transaction. Losing the guard is not an error: the other completion path
// already handled the row.
func (s *service) complete(ctx context.Context, p *models.Payment, onCredit func(balance decimal.Decimal)) error {
	return s.ledger.ExecuteInTransaction(ctx, func(tx repositories.Ledger) error {
		won, err := tx.MarkPaymentSucceeded(ctx, p.ExternalReference)
		if err != nil {
			return err
		}
		if !won {
			return nil
		}
		balance, err := tx.CreditBalance(ctx, p.UserID, p.Amount)
		if err != nil {
			return err
		}
		if onCredit != nil {
			onCredit(balance)
		}
		return nil
	})
}
