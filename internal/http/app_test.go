package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"agrimarket/internal/auth"
	"agrimarket/internal/blob"
	"agrimarket/internal/config"
	"agrimarket/internal/domain"
	"agrimarket/internal/http/handlers"
	"agrimarket/internal/repos"
)

// newApp wires the full route table against an in-memory database, seeded
// with one user per role (password "hunter22" for all of them).
func newApp(t *testing.T) (*fiber.App, *sqlx.DB, *auth.Tokens) {
	t.Helper()
	cfg := config.Config{JWTSecret: "test-secret", MediaBaseURL: "/media"}
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	for _, u := range []struct{ id, name, role string }{
		{"a1", "Admin", "ADMIN"},
		{"f1", "Ama", "FARMER"},
		{"b1", "Kojo", "BUYER"},
	} {
		if _, err := db.Exec(`INSERT INTO users(id,email,name,password_hash,role) VALUES(?,?,?,?,?)`,
			u.id, u.id+"@test.local", u.name, string(hash), u.role); err != nil {
			t.Fatalf("seed %s: %v", u.id, err)
		}
	}

	blobs := blob.NewLocalStore(t.TempDir(), cfg.MediaBaseURL)
	deps := handlers.NewDeps(db, cfg, blobs)

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(handlers.ResolveIdentity(deps.Tokens))

	app.Post("/auth/login", deps.AuthHandler.Login)
	app.Post("/auth/logout", deps.AuthHandler.Logout)
	app.Post("/auth/register", deps.AuthHandler.Register)
	app.Post("/auth/forgot-password", deps.AuthHandler.ForgotPassword)
	app.Post("/auth/reset-password", deps.AuthHandler.ResetPassword)

	app.Get("/products", deps.ProductHandler.List)
	app.Post("/products", handlers.RequireRole(domain.RoleFarmer), deps.ProductHandler.Create)
	app.Get("/products/:id", deps.ProductHandler.Detail)
	app.Get("/orders", handlers.RequireRole(domain.RoleBuyer), deps.OrderHandler.ListMine)
	app.Get("/analytics", handlers.RequireAuth(), deps.AnalyticsHandler.Get)

	admin := app.Group("/admin", handlers.RequireRole(domain.RoleAdmin))
	admin.Get("/", deps.AdminHandler.Get)
	admin.Put("/", deps.AdminHandler.Put)

	return app, db, deps.Tokens
}

// sessionFor issues a valid session cookie for one of the seeded users.
func sessionFor(t *testing.T, tokens *auth.Tokens, id, role string) *http.Cookie {
	t.Helper()
	raw, err := tokens.Issue(auth.Identity{
		ID: id, Email: id + "@test.local", Name: id, Role: role,
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return &http.Cookie{Name: handlers.SessionCookie, Value: raw}
}

func decodeBody(t *testing.T, resp *http.Response) map[string]json.RawMessage {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	out := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	return out
}
