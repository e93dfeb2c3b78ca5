package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"kredo/internal/services/payment"
	"kredo/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/webhook"
)

type PaymentHandler struct {
	paymentService payment.Service
	webhookSecret  string
}

func NewPaymentHandler(paymentService payment.Service, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		webhookSecret:  webhookSecret,
	}
}

func (h *PaymentHandler) InitiateTopUp(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	intent, err := h.paymentService.InitiateTopUp(c.Context(), claims.UserID, input.Amount)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidAmount):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, payment.ErrProcessorUnavailable):
			return utils.BadGateway(c, "payment processor unavailable")
		default:
			return utils.InternalError(c)
		}
	}

	return utils.Respond(c, fiber.StatusCreated, fiber.Map{
		"reference":    intent.Reference,
		"redirect_url": intent.RedirectURL,
	})
}

// StripeWebhook receives asynchronous completion notifications. The
// signature check happens here, at the boundary, before the reconciliation
// service is ever invoked.
func (h *PaymentHandler) StripeWebhook(c *fiber.Ctx) error {
	event, err := webhook.ConstructEvent(c.Body(), c.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		log.Printf("webhook signature verification failed: %v", err)
		return utils.BadRequest(c, "invalid signature")
	}

	if event.Type != "checkout.session.completed" {
		return utils.Success(c, fiber.Map{"received": true})
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		log.Printf("webhook payload decode failed: %v", err)
		return utils.BadRequest(c, "invalid payload")
	}

	confirmed := decimal.New(sess.AmountTotal, -2)
	if err := h.paymentService.CompleteViaNotification(c.Context(), sess.ID, confirmed); err != nil {
		switch {
		case errors.Is(err, payment.ErrUnknownReference):
			// Logged by the service; acknowledging stops redelivery of
			// a notification that can never match a payment.
			return utils.Success(c, fiber.Map{"received": true})
		case errors.Is(err, payment.ErrAmountMismatch):
			return utils.BadRequest(c, "amount mismatch")
		default:
			// Transient failure: let the processor redeliver.
			return utils.InternalError(c)
		}
	}

	return utils.Success(c, fiber.Map{"received": true})
}

// ReconcilePending is the manual fallback when a notification is delayed
// or dropped.
func (h *PaymentHandler) ReconcilePending(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	result, err := h.paymentService.ReconcilePending(c.Context(), claims.UserID)
	if err != nil {
		if result != nil && result.Completed > 0 {
			// Some payments were credited before the sweep failed; report
			// them rather than hiding committed credits behind a 500.
			return utils.Respond(c, fiber.StatusInternalServerError, fiber.Map{
				"error":       "reconciliation incomplete",
				"completed":   result.Completed,
				"total":       result.Total,
				"new_balance": result.Balance,
			})
		}
		return utils.InternalError(c)
	}

	return utils.Success(c, fiber.Map{
		"completed":   result.Completed,
		"total":       result.Total,
		"new_balance": result.Balance,
	})
}
