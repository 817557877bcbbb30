package repos

import (
	"time"

	"github.com/jmoiron/sqlx"

	"agrimarket/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id,email,name,phone,password_hash,role,last_login_at,created_at`

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(id, email, name, phone, hash, role string) error {
	_, err := r.DB.Exec(`INSERT INTO users(id,email,name,phone,password_hash,role) VALUES(?,?,?,?,?,?)`,
		id, email, name, phone, hash, role)
	return err
}

// RecordLogin stamps last_login_at and returns the stored timestamp.
func (r *UserRepo) RecordLogin(id string) (string, error) {
	now := time.Now().UTC().Format("2006-01-02 15:04:05")
	_, err := r.DB.Exec(`UPDATE users SET last_login_at=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, now, id)
	return now, err
}

// ListAll returns every user newest-first with credential columns already
// excluded at the query level.
func (r *UserRepo) ListAll() ([]domain.PublicUser, error) {
	var rows []domain.User
	err := r.DB.Select(&rows, `SELECT `+userCols+` FROM users ORDER BY datetime(created_at) DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublicUser, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].Sanitize())
	}
	return out, nil
}

// UpdateRole sets the role column directly; transitions are deliberately
// unrestricted within the role enum (admins may demote other admins).
func (r *UserRepo) UpdateRole(id, role string) (*domain.User, error) {
	if _, err := r.DB.Exec(`UPDATE users SET role=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, role, id); err != nil {
		return nil, err
	}
	return r.ByID(id)
}

func (r *UserRepo) SetResetToken(id, tokenHash string, expiry time.Time) error {
	_, err := r.DB.Exec(`UPDATE users SET reset_token_hash=?, reset_token_expiry=? WHERE id=?`,
		tokenHash, expiry.UTC().Format("2006-01-02 15:04:05"), id)
	return err
}

// ByResetToken matches a non-expired reset token hash.
func (r *UserRepo) ByResetToken(tokenHash string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users
		WHERE reset_token_hash=? AND datetime(reset_token_expiry) > datetime('now')`, tokenHash)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdatePassword swaps the hash and clears any outstanding reset token.
func (r *UserRepo) UpdatePassword(id, hash string) error {
	_, err := r.DB.Exec(`UPDATE users
		SET password_hash=?, reset_token_hash=NULL, reset_token_expiry=NULL, updated_at=CURRENT_TIMESTAMP
		WHERE id=?`, hash, id)
	return err
}
