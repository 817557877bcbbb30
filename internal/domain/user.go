package domain

type User struct {
	ID          string  `db:"id"`
	Email       string  `db:"email"`
	Name        string  `db:"name"`
	Phone       string  `db:"phone"`
	Hash        string  `db:"password_hash"`
	Role        string  `db:"role"`
	LastLoginAt *string `db:"last_login_at"`
	CreatedAt   string  `db:"created_at"`
}

// PublicUser is a user with credential material stripped. The password hash
// and reset-token columns never cross the handler boundary.
type PublicUser struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	Phone       string  `json:"phone,omitempty"`
	Role        string  `json:"role"`
	LastLoginAt *string `json:"lastLoginAt"`
	CreatedAt   string  `json:"createdAt"`
}

func (u *User) Sanitize() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Phone:       u.Phone,
		Role:        WireRole(u.Role),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
