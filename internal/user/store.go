package user

import "context"

// Store is the full persistence contract implemented by Repository,
// MemoryRepository and CachedRepository. FindByID may leave PasswordHash
// empty; credential checks go through FindByEmail.
type Store interface {
	Create(ctx context.Context, candidate *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error
	SetActive(ctx context.Context, id int64, active bool) error
	SetPremium(ctx context.Context, id int64, premium bool) error
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*MemoryRepository)(nil)
	_ Store = (*CachedRepository)(nil)
)
