package user

import (
	"strings"
	"time"
)

const (
	// RoleUser is the default role assigned at registration.
	RoleUser = "USER"

	// MaxDisplayNameLength is measured in characters, not bytes.
	MaxDisplayNameLength = 50
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose password hash in JSON
	DisplayName  *string   `json:"display_name"`
	Role         string    `json:"-"`
	Active       bool      `json:"active"`
	Premium      bool      `json:"premium"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizeEmail returns the canonical stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
