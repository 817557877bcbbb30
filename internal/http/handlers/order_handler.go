package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "agrimarket/internal/log"
	"agrimarket/internal/repos"
)

type OrderHandler struct {
	Orders *repos.OrderRepo
}

// GET /orders — buyer only (guarded in routing), own orders newest first.
func (h *OrderHandler) ListMine(c *fiber.Ctx) error {
	ident := identityFrom(c)
	orders, err := h.Orders.ListByBuyer(ident.ID)
	if err != nil {
		applog.Error(c, "orders.list.fail", err, map[string]any{"buyer_id": ident.ID})
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	if orders == nil {
		orders = []repos.OrderView{}
	}
	return c.JSON(fiber.Map{"orders": orders})
}
