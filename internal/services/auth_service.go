package services

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"agrimarket/internal/domain"
	"agrimarket/internal/mail"
	"agrimarket/internal/repos"
)

var (
	ErrBadCreds   = errors.New("invalid email or password")
	ErrEmailTaken = errors.New("email already registered")
	ErrBadToken   = errors.New("invalid or expired reset token")
)

const resetTokenTTL = 60 * time.Minute

type AuthService struct {
	Users  *repos.UserRepo
	Mailer mail.Mailer
	AppURL string
}

// Login verifies credentials and stamps last_login_at. The caller issues
// the session token; failure reveals nothing about which check missed.
func (s *AuthService) Login(email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if at, err := s.Users.RecordLogin(u.ID); err == nil {
		u.LastLoginAt = &at
	}
	return u, nil
}

// Register creates a farmer or buyer account. Admin accounts only come from
// bootstrap, never from self-service registration.
func (s *AuthService) Register(email, password, name, phone, role string) (*domain.User, error) {
	if role != domain.RoleFarmer && role != domain.RoleBuyer {
		return nil, errors.New("role must be farmer or buyer")
	}
	if _, err := s.Users.ByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	if err := s.Users.Create(id, email, name, phone, string(hash), role); err != nil {
		return nil, err
	}
	return s.Users.ByID(id)
}

// ForgotPassword issues a 60-minute reset token and mails the link. Only a
// SHA-256 hash of the token is stored; a stolen users table cannot reset
// anyone's password. Unknown emails succeed silently (no enumeration).
func (s *AuthService) ForgotPassword(email string) error {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	raw, err := randomHex(32)
	if err != nil {
		return err
	}
	if err := s.Users.SetResetToken(u.ID, hashToken(raw), time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}
	if s.Mailer == nil {
		return nil
	}
	link := s.AppURL + "/reset-password?token=" + raw
	return s.Mailer.Send(u.Email, "Reset your AgriMarket password",
		"We received a request to reset your password. The link below is valid for 60 minutes.\r\n\r\n"+link+
			"\r\n\r\nIf you did not request a reset you can ignore this email.")
}

// ResetPassword consumes a reset token and installs the new password.
func (s *AuthService) ResetPassword(rawToken, password string) error {
	u, err := s.Users.ByResetToken(hashToken(rawToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBadToken
		}
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	return s.Users.UpdatePassword(u.ID, string(hash))
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
