package handlers

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"

	"agrimarket/internal/domain"
	applog "agrimarket/internal/log"
	"agrimarket/internal/repos"
	"agrimarket/internal/services"
)

// AdminHandler is the moderation gateway: one GET for the three full
// listings and one PUT for the two direct mutations, both admin-gated in
// routing (401 before 403).
type AdminHandler struct {
	Users    *repos.UserRepo
	Products *repos.ProductRepo
	Orders   *repos.OrderRepo
	Activity *services.ActivityRecorder
}

// GET /admin?endpoint=users|products|orders
func (h *AdminHandler) Get(c *fiber.Ctx) error {
	switch c.Query("endpoint") {
	case "users":
		users, err := h.Users.ListAll()
		if err != nil {
			applog.Error(c, "admin.users.list.fail", err, nil)
			return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
		}
		return c.JSON(fiber.Map{"users": users})

	case "products":
		products, err := h.Products.ListAllAdmin()
		if err != nil {
			applog.Error(c, "admin.products.list.fail", err, nil)
			return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
		}
		return c.JSON(fiber.Map{"products": products})

	case "orders":
		orders, err := h.Orders.ListAllAdmin()
		if err != nil {
			applog.Error(c, "admin.orders.list.fail", err, nil)
			return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
		}
		return c.JSON(fiber.Map{"orders": orders})
	}
	return jsonError(c, fiber.StatusBadRequest, "Invalid endpoint")
}

// PUT /admin with {endpoint, data}.
func (h *AdminHandler) Put(c *fiber.Ctx) error {
	var body struct {
		Endpoint string `json:"endpoint"`
		Data     struct {
			UserID    string `json:"userId"`
			Role      string `json:"role"`
			ProductID string `json:"productId"`
			Status    string `json:"status"`
		} `json:"data"`
	}
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	admin := identityFrom(c)

	switch body.Endpoint {
	case "user-status":
		role, ok := domain.StorageRole(body.Data.Role)
		if !ok || body.Data.UserID == "" {
			return jsonError(c, fiber.StatusBadRequest, "userId and a valid role are required")
		}
		u, err := h.Users.UpdateRole(body.Data.UserID, role)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return jsonError(c, fiber.StatusNotFound, "User not found")
			}
			applog.Error(c, "admin.user.role.fail", err, map[string]any{"user_id": body.Data.UserID})
			return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
		}
		h.Activity.Record(domain.ActivityEntry{
			UserID:      admin.ID,
			Type:        services.ActivityRoleChanged,
			Description: "Set role of " + u.ID + " to " + domain.WireRole(role),
		})
		applog.Audit(c, "admin.user.role", map[string]any{"user_id": u.ID, "role": domain.WireRole(role)})
		return c.JSON(fiber.Map{"user": u.Sanitize()})

	case "product-status":
		status, ok := domain.StorageProductStatus(body.Data.Status)
		if !ok || body.Data.ProductID == "" {
			return jsonError(c, fiber.StatusBadRequest, "productId and a valid status are required")
		}
		p, err := h.Products.UpdateStatus(body.Data.ProductID, status)
		if err != nil {
			if errors.Is(err, repos.ErrNotFound) {
				return jsonError(c, fiber.StatusNotFound, "Product not found")
			}
			applog.Error(c, "admin.product.status.fail", err, map[string]any{"product_id": body.Data.ProductID})
			return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
		}
		h.Activity.Record(domain.ActivityEntry{
			UserID:      admin.ID,
			Type:        services.ActivityStatusChanged,
			Description: "Set status of " + p.ID + " to " + p.Status,
			ProductID:   p.ID,
		})
		applog.Audit(c, "admin.product.status", map[string]any{"product_id": p.ID, "status": p.Status})
		return c.JSON(fiber.Map{"product": p})
	}
	return jsonError(c, fiber.StatusBadRequest, "Invalid endpoint")
}
