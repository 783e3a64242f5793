package domain

import (
	"strings"
	"time"
)

// User is a registered account. Tasks reference it through OwnerID.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Never expose password hash in JSON
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a User with a normalized email and an already hashed password.
func NewUser(email, hashedPassword string) *User {
	return &User{
		Email:          NormalizeEmail(email),
		HashedPassword: hashedPassword,
	}
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
