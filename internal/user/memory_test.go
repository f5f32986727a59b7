package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	testStore(t, func(t *testing.T) Store { return NewMemoryRepository() })
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	u, err := r.Create(ctx, &User{Email: "c@example.com", PasswordHash: "h", DisplayName: strPtr("Carol"), Active: true})
	require.NoError(t, err)

	u.Email = "mutated@example.com"
	*u.DisplayName = "Mallory"

	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "c@example.com", got.Email)
	assert.Equal(t, "Carol", *got.DisplayName)
}
