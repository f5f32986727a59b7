package user

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// testStore exercises the behavior every Store implementation shares.
func testStore(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("create assigns identity and defaults", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		u, err := s.Create(ctx, &User{
			Email:        "  Alice@Example.COM ",
			PasswordHash: "hash",
			DisplayName:  strPtr("Alice"),
			Active:       true,
		})
		require.NoError(t, err)

		assert.Positive(t, u.ID)
		assert.Equal(t, "alice@example.com", u.Email)
		assert.Equal(t, RoleUser, u.Role)
		assert.True(t, u.Active)
		assert.False(t, u.Premium)
		require.NotNil(t, u.DisplayName)
		assert.Equal(t, "Alice", *u.DisplayName)
		assert.Equal(t, time.UTC, u.CreatedAt.Location())
		assert.WithinDuration(t, time.Now(), u.CreatedAt, time.Minute)
		assert.WithinDuration(t, u.CreatedAt, u.UpdatedAt, time.Millisecond)
	})

	t.Run("ids are distinct", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a, err := s.Create(ctx, &User{Email: "a@example.com", PasswordHash: "h", Active: true})
		require.NoError(t, err)
		b, err := s.Create(ctx, &User{Email: "b@example.com", PasswordHash: "h", Active: true})
		require.NoError(t, err)

		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("find by email is case-insensitive", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.Create(ctx, &User{Email: "bob@example.com", PasswordHash: "h", Active: true})
		require.NoError(t, err)

		found, err := s.FindByEmail(ctx, "BOB@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "h", found.PasswordHash)
		assert.Nil(t, found.DisplayName)

		byID, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", byID.Email)
	})

	t.Run("lookups report not found", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.FindByID(ctx, 4242)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Create(ctx, &User{Email: "dup@example.com", PasswordHash: "h", Active: true})
		require.NoError(t, err)

		_, err = s.Create(ctx, &User{Email: "DUP@example.com", PasswordHash: "h2", Active: true})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("mutations refresh updated_at", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		u, err := s.Create(ctx, &User{Email: "m@example.com", PasswordHash: "old", Active: true})
		require.NoError(t, err)

		require.NoError(t, s.UpdatePasswordHash(ctx, u.ID, "new"))
		require.NoError(t, s.SetPremium(ctx, u.ID, true))
		require.NoError(t, s.SetActive(ctx, u.ID, false))

		byEmail, err := s.FindByEmail(ctx, u.Email)
		require.NoError(t, err)
		assert.Equal(t, "new", byEmail.PasswordHash)

		got, err := s.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, got.Premium)
		assert.False(t, got.Active)
		assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
		assert.Equal(t, u.Email, got.Email)
	})

	t.Run("mutating a missing user", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		assert.ErrorIs(t, s.UpdatePasswordHash(ctx, 999, "x"), ErrNotFound)
		assert.ErrorIs(t, s.SetActive(ctx, 999, true), ErrNotFound)
		assert.ErrorIs(t, s.SetPremium(ctx, 999, true), ErrNotFound)
	})

	t.Run("concurrent creates keep email unique", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		const workers = 8
		var (
			wg        sync.WaitGroup
			succeeded atomic.Int32
			dupes     atomic.Int32
		)
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Create(ctx, &User{
					Email:        "race@example.com",
					PasswordHash: fmt.Sprintf("h%d", i),
					Active:       true,
				})
				switch {
				case err == nil:
					succeeded.Add(1)
				case assert.ErrorIs(t, err, ErrDuplicateEmail):
					dupes.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), succeeded.Load())
		assert.Equal(t, int32(workers-1), dupes.Load())
	})
}
