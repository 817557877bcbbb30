package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"agrimarket/internal/auth"
	"agrimarket/internal/domain"
	applog "agrimarket/internal/log"
	"agrimarket/internal/services"
	"agrimarket/internal/validate"
)

type AuthHandler struct {
	Auth     *services.AuthService
	Tokens   *auth.Tokens
	Activity *services.ActivityRecorder
	Secure   bool // Secure cookie flag; on in production
}

func (h *AuthHandler) setSession(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Secure:   h.Secure,
		MaxAge:   int(auth.TokenTTL / time.Second),
	})
}

// clearSession expires the cookie with a past Expires stamp; fiber drops
// negative MaxAge values from Set-Cookie, so MaxAge alone cannot delete it.
func (h *AuthHandler) clearSession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Secure:   h.Secure,
		Expires:  time.Now().Add(-time.Hour),
	})
}

// POST /auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil || body.Email == "" || body.Password == "" {
		return jsonError(c, fiber.StatusBadRequest, "Email and password are required")
	}

	u, err := h.Auth.Login(body.Email, body.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": body.Email})
		return jsonError(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	token, err := h.Tokens.Issue(auth.Identity{
		ID: u.ID, Email: u.Email, Name: u.Name, Role: domain.WireRole(u.Role),
	})
	if err != nil {
		applog.Error(c, "auth.token.issue", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	h.setSession(c, token)

	h.Activity.Record(domain.ActivityEntry{
		UserID:      u.ID,
		Type:        services.ActivityUserLogin,
		Description: "User logged in",
		Metadata:    string(c.Request().Header.UserAgent()),
	})
	applog.Audit(c, "auth.login.success", map[string]any{"user_id": u.ID})

	return c.JSON(fiber.Map{"message": "Login successful", "user": u.Sanitize()})
}

// POST|GET /auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearSession(c)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// POST /auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Role     string `json:"role"`
		Phone    string `json:"phone"`
	}
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	email, ok := validate.Email(body.Email)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "A valid email is required")
	}
	name, ok := validate.Name(body.Name)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "Name is required")
	}
	if !validate.Password(body.Password) {
		return jsonError(c, fiber.StatusBadRequest, "Password must be 8-72 characters")
	}
	role, ok := domain.StorageRole(body.Role)
	if !ok || role == domain.RoleAdmin {
		return jsonError(c, fiber.StatusBadRequest, "Role must be farmer or buyer")
	}

	u, err := h.Auth.Register(email, body.Password, name, body.Phone, role)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return jsonError(c, fiber.StatusConflict, "Email already registered")
		}
		applog.Error(c, "auth.register.fail", err, map[string]any{"email": email})
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	h.Activity.Record(domain.ActivityEntry{
		UserID:      u.ID,
		Type:        services.ActivityUserRegistered,
		Description: "User registered as " + domain.WireRole(role),
	})
	applog.Audit(c, "auth.register", map[string]any{"user_id": u.ID, "role": domain.WireRole(role)})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": u.Sanitize()})
}

// POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err != nil || body.Email == "" {
		return jsonError(c, fiber.StatusBadRequest, "Email is required")
	}
	if err := h.Auth.ForgotPassword(body.Email); err != nil {
		applog.Error(c, "auth.forgot.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	// Identical response whether or not the account exists.
	return c.JSON(fiber.Map{"message": "If the account exists, a reset email has been sent"})
}

// POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var body struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil || body.Token == "" {
		return jsonError(c, fiber.StatusBadRequest, "Token and password are required")
	}
	if !validate.Password(body.Password) {
		return jsonError(c, fiber.StatusBadRequest, "Password must be 8-72 characters")
	}
	if err := h.Auth.ResetPassword(body.Token, body.Password); err != nil {
		if errors.Is(err, services.ErrBadToken) {
			return jsonError(c, fiber.StatusBadRequest, "Invalid or expired reset token")
		}
		applog.Error(c, "auth.reset.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	applog.Audit(c, "auth.reset.success", nil)
	return c.JSON(fiber.Map{"message": "Password updated"})
}
