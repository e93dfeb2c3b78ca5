package handlers

import (
	"errors"

	"kredo/internal/services/catalog"
	"kredo/internal/services/gift"
	"kredo/internal/services/wallet"
	"kredo/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type GiftHandler struct {
	giftService gift.Service
}

func NewGiftHandler(giftService gift.Service) *GiftHandler {
	return &GiftHandler{giftService: giftService}
}

func (h *GiftHandler) Gift(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		ProductID      uint   `json:"product_id"`
		Quantity       int    `json:"quantity"`
		RecipientEmail string `json:"recipient_email"`
		Message        string `json:"message"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if input.RecipientEmail == "" {
		return utils.BadRequest(c, "recipient_email is required")
	}

	result, err := h.giftService.Gift(c.Context(), claims.UserID, input.ProductID, input.Quantity, input.RecipientEmail, input.Message)
	if err != nil {
		switch {
		case errors.Is(err, gift.ErrInvalidQuantity),
			errors.Is(err, gift.ErrSelfGiftNotAllowed),
			errors.Is(err, gift.ErrInsufficientStock),
			errors.Is(err, wallet.ErrInvalidAmount):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, gift.ErrRecipientNotFound):
			return utils.NotFound(c, "recipient not found")
		case errors.Is(err, catalog.ErrProductNotFound):
			return utils.NotFound(c, "product not found")
		case errors.Is(err, catalog.ErrCatalogUnavailable):
			return utils.BadGateway(c, "catalog unavailable")
		case errors.Is(err, wallet.ErrInsufficientBalance):
			return utils.PaymentRequired(c, err.Error())
		default:
			return utils.InternalError(c)
		}
	}

	return utils.Respond(c, fiber.StatusCreated, fiber.Map{
		"gift":        result.Gift,
		"new_balance": result.NewBalance,
	})
}

func (h *GiftHandler) ListGifts(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	limit, offset := paginationParams(c)
	gifts, err := h.giftService.ListGifts(c.Context(), claims.UserID, limit, offset)
	if err != nil {
		return utils.InternalError(c)
	}

	return utils.Success(c, fiber.Map{"gifts": gifts})
}
