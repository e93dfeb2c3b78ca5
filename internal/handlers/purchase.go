package handlers

import (
	"errors"

	"kredo/internal/services/catalog"
	"kredo/internal/services/purchase"
	"kredo/internal/services/wallet"
	"kredo/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type PurchaseHandler struct {
	purchaseService purchase.Service
}

func NewPurchaseHandler(purchaseService purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

func (h *PurchaseHandler) Purchase(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	result, err := h.purchaseService.Purchase(c.Context(), claims.UserID, input.ProductID, input.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, purchase.ErrInvalidQuantity),
			errors.Is(err, purchase.ErrInsufficientStock),
			errors.Is(err, wallet.ErrInvalidAmount):
			return utils.BadRequest(c, err.Error())
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
		"order":       result.Order,
		"new_balance": result.NewBalance,
	})
}

func (h *PurchaseHandler) ListOrders(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	limit, offset := paginationParams(c)
	orders, err := h.purchaseService.ListOrders(c.Context(), claims.UserID, limit, offset)
	if err != nil {
		return utils.InternalError(c)
	}

	return utils.Success(c, fiber.Map{"orders": orders})
}

// paginationParams parses limit/offset query params with sane bounds.
func paginationParams(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
