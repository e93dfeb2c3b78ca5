package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// CheckoutSession is the processor's handle for an external card checkout.
// Reference is the session id used as the Payment idempotency key.
type CheckoutSession struct {
	Reference   string
	RedirectURL string
}

// CheckoutProvider is the external payment processor collaborator. It
// opens checkout sessions and can be asked, during a reconciliation sweep,
// whether a session has actually been paid.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, userID uint, amount decimal.Decimal) (*CheckoutSession, error)
	SessionPaid(ctx context.Context, reference string) (bool, error)
}
