package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/checkout/session"
)

// stripeProvider implements CheckoutProvider on Stripe Checkout. Amounts
// are wallet credits priced 1:1 in the configured currency.
type stripeProvider struct {
	currency   string
	successURL string
	cancelURL  string
}

// NewStripeProvider configures the Stripe client and returns a provider.
func NewStripeProvider(secretKey, currency, successURL, cancelURL string) CheckoutProvider {
	stripe.Key = secretKey
	return &stripeProvider{
		currency:   currency,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

func (p *stripeProvider) CreateCheckoutSession(ctx context.Context, userID uint, amount decimal.Decimal) (*CheckoutSession, error) {
	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()

	params := &stripe.CheckoutSessionParams{
		Params:            stripe.Params{Context: ctx},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(p.successURL),
		CancelURL:         stripe.String(p.cancelURL),
		ClientReferenceID: stripe.String(strconv.FormatUint(uint64(userID), 10)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.currency),
					UnitAmount: stripe.Int64(cents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Wallet top-up"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return &CheckoutSession{Reference: sess.ID, RedirectURL: sess.URL}, nil
}

func (p *stripeProvider) SessionPaid(ctx context.Context, reference string) (bool, error) {
	params := &stripe.CheckoutSessionParams{Params: stripe.Params{Context: ctx}}
	sess, err := session.Get(reference, params)
	if err != nil {
		return false, fmt.Errorf("stripe session lookup: %w", err)
	}
	return sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid, nil
}
