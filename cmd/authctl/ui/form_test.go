package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/redmonkez12/go-auth-service/internal/user"
)

func TestPrintUser(t *testing.T) {
	var buf bytes.Buffer
	name := "Alice"

	PrintUser(&buf, &user.User{
		ID:           7,
		Email:        "a@x.com",
		PasswordHash: "$argon2id$never-printed",
		DisplayName:  &name,
		Active:       true,
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})

	out := buf.String()
	for _, want := range []string{"ID", "7", "a@x.com", "Alice", "Active", "yes", "Premium", "no", "created 2024-01-02 03:04:05 UTC"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "never-printed")
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer

	PrintSummary(&buf, &NewUserInput{Email: "b@x.com", Password: "password123", Premium: true})

	out := buf.String()
	assert.Contains(t, out, "New account")
	assert.Contains(t, out, "b@x.com")
	assert.NotContains(t, out, "Name")
	assert.NotContains(t, out, "password123")
}
