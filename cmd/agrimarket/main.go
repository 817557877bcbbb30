package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"agrimarket/internal/blob"
	"agrimarket/internal/config"
	"agrimarket/internal/domain"
	"agrimarket/internal/http/handlers"
	applog "agrimarket/internal/log"
	"agrimarket/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := repos.EnsureAdmin(db, uuid.NewString(), cfg.AdminEmail, "AgriMarket Admin", cfg.AdminPassword); err != nil {
		log.Fatal(err)
	}

	mediaDir := cfg.MediaDir
	if !filepath.IsAbs(mediaDir) {
		if abs, err := filepath.Abs(mediaDir); err == nil {
			mediaDir = abs
		}
	}
	blobs := blob.NewLocalStore(mediaDir, cfg.MediaBaseURL)
	deps := handlers.NewDeps(db, cfg, blobs)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			// never leak internals from the catch-all
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		},
	})
	// Multipart product creation carries up to 6 x 5 MiB images.
	app.Server().MaxRequestBodySize = 32 << 20

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), cfg.MediaBaseURL+"/")
		},
	}))
	app.Use(handlers.ResolveIdentity(deps.Tokens))

	// ---------- Media (guarded against traversal) ----------
	log.Printf("[static] %s -> %s", cfg.MediaBaseURL, mediaDir)
	app.Get(cfg.MediaBaseURL+"/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(mediaDir, clean), true)
	})

	// ---------- Auth (login throttled) ----------
	app.Post("/auth/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many attempts, try again later"})
		},
	}), deps.AuthHandler.Login)
	app.Post("/auth/logout", deps.AuthHandler.Logout)
	app.Get("/auth/logout", deps.AuthHandler.Logout)
	app.Post("/auth/register", deps.AuthHandler.Register)
	app.Post("/auth/forgot-password", deps.AuthHandler.ForgotPassword)
	app.Post("/auth/reset-password", deps.AuthHandler.ResetPassword)

	// ---------- Marketplace ----------
	app.Get("/products", deps.ProductHandler.List)
	app.Post("/products", handlers.RequireRole(domain.RoleFarmer), deps.ProductHandler.Create)
	app.Get("/products/:id", deps.ProductHandler.Detail)
	app.Get("/orders", handlers.RequireRole(domain.RoleBuyer), deps.OrderHandler.ListMine)
	app.Get("/analytics", handlers.RequireAuth(), deps.AnalyticsHandler.Get)

	// ---------- Admin ----------
	admin := app.Group("/admin", handlers.RequireRole(domain.RoleAdmin))
	admin.Get("/", deps.AdminHandler.Get)
	admin.Put("/", deps.AdminHandler.Put)

	// ---------- Predictions ----------
	app.Post("/predictions", handlers.RequireAuth(), deps.PredictionHandler.Predict)
	app.Get("/predictions", deps.PredictionHandler.Insights)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
