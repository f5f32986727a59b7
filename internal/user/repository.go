package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-auth-service/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository handles user data persistence
type Repository struct {
	db  *bun.DB
	now func() time.Time
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Create inserts a new user into the database
func (r *Repository) Create(ctx context.Context, candidate *User) (*User, error) {
	now := r.now().UTC()
	role := candidate.Role
	if role == "" {
		role = RoleUser
	}

	dbUser := &database.User{
		Email:        NormalizeEmail(candidate.Email),
		PasswordHash: candidate.PasswordHash,
		DisplayName:  candidate.DisplayName,
		Role:         role,
		IsActive:     candidate.Active,
		IsPremium:    candidate.Premium,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// FindByEmail retrieves a user by email, case-insensitively
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("lower(email) = ?", NormalizeEmail(email)).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// FindByID retrieves a user by ID
func (r *Repository) FindByID(ctx context.Context, id int64) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// UpdatePasswordHash replaces a user's password hash
func (r *Repository) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error {
	return r.update(ctx, id, "password_hash = ?", passwordHash)
}

// SetActive enables or disables an account
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.update(ctx, id, "is_active = ?", active)
}

// SetPremium toggles the premium flag
func (r *Repository) SetPremium(ctx context.Context, id int64, premium bool) error {
	return r.update(ctx, id, "is_premium = ?", premium)
}

func (r *Repository) update(ctx context.Context, id int64, set string, value any) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set(set, value).
		Set("updated_at = ?", r.now().UTC()).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		Email:        dbu.Email,
		PasswordHash: dbu.PasswordHash,
		DisplayName:  dbu.DisplayName,
		Role:         dbu.Role,
		Active:       dbu.IsActive,
		Premium:      dbu.IsPremium,
		CreatedAt:    dbu.CreatedAt.UTC(),
		UpdatedAt:    dbu.UpdatedAt.UTC(),
	}
}
