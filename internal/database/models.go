package database

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the persisted account row.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	DisplayName  *string   `bun:"display_name"`
	Role         string    `bun:"role,notnull"`
	IsActive     bool      `bun:"is_active,notnull"`
	IsPremium    bool      `bun:"is_premium,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}
