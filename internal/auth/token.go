// Package auth issues and verifies the signed session tokens that every
// scoped operation starts from.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"agrimarket/internal/domain"
)

// TokenTTL is how long a session token stays valid.
const TokenTTL = 7 * 24 * time.Hour

// Identity is the authenticated principal carried by a valid token.
// Role is in wire (lowercase) form.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (i Identity) Is(storageRole string) bool { return i.Role == domain.WireRole(storageRole) }

type Tokens struct {
	Secret []byte
}

func NewTokens(secret string) *Tokens { return &Tokens{Secret: []byte(secret)} }

// Issue signs an HS256 token carrying the identity, expiring after TokenTTL.
func (t *Tokens) Issue(id Identity) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"id":    id.ID,
		"email": id.Email,
		"name":  id.Name,
		"role":  id.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
}

// Verify decodes a token and returns the identity it carries. Missing,
// malformed, forged and expired tokens all come back as (nil, false);
// absence of identity is a normal outcome, not an error.
func (t *Tokens) Verify(raw string) (*Identity, bool) {
	if raw == "" {
		return nil, false
	}
	tok, err := jwt.Parse(raw, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.Secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	id, _ := claims["id"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	if id == "" || email == "" || role == "" {
		return nil, false
	}
	if _, known := domain.StorageRole(role); !known {
		return nil, false
	}
	return &Identity{ID: id, Email: email, Name: name, Role: role}, true
}
