package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "agrimarket/internal/log"
	"agrimarket/internal/services"
)

type AnalyticsHandler struct {
	Analytics *services.AnalyticsService
}

// GET /analytics — any authenticated role; the view is shaped by the role.
func (h *AnalyticsHandler) Get(c *fiber.Ctx) error {
	ident := identityFrom(c)
	view, err := h.Analytics.Compute(*ident)
	if err != nil {
		applog.Error(c, "analytics.fail", err, map[string]any{"user_id": ident.ID, "role": ident.Role})
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"analytics": view})
}
