package handlers

import (
	"errors"

	"kredo/internal/services/transfer"
	"kredo/internal/services/wallet"
	"kredo/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type TransferHandler struct {
	transferService transfer.Service
}

func NewTransferHandler(transferService transfer.Service) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

func (h *TransferHandler) Transfer(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		RecipientEmail string          `json:"recipient_email"`
		Amount         decimal.Decimal `json:"amount"`
		Message        string          `json:"message"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if input.RecipientEmail == "" {
		return utils.BadRequest(c, "recipient_email is required")
	}

	result, err := h.transferService.Transfer(c.Context(), claims.UserID, input.RecipientEmail, input.Amount, input.Message)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInvalidAmount),
			errors.Is(err, wallet.ErrSelfTransfer):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, transfer.ErrRecipientNotFound):
			return utils.NotFound(c, "recipient not found")
		case errors.Is(err, wallet.ErrInsufficientBalance):
			return utils.PaymentRequired(c, err.Error())
		default:
			return utils.InternalError(c)
		}
	}

	return utils.Respond(c, fiber.StatusCreated, fiber.Map{
		"transfer":    result.Transfer,
		"new_balance": result.SenderBalance,
	})
}

func (h *TransferHandler) ListTransfers(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	limit, offset := paginationParams(c)
	transfers, err := h.transferService.ListTransfers(c.Context(), claims.UserID, limit, offset)
	if err != nil {
		return utils.InternalError(c)
	}

	return utils.Success(c, fiber.Map{"transfers": transfers})
}
