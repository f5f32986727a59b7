package user

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps users in process memory. It is used for local
// development with DB_DRIVER=memory and in tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*User
	byEmail map[string]int64
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[int64]*User),
		byEmail: make(map[string]int64),
		now:     time.Now,
	}
}

func (r *MemoryRepository) Create(_ context.Context, candidate *User) (*User, error) {
	email := NormalizeEmail(candidate.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return nil, ErrDuplicateEmail
	}

	r.nextID++
	now := r.now().UTC()

	u := *candidate
	u.ID = r.nextID
	u.Email = email
	if u.Role == "" {
		u.Role = RoleUser
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	r.byID[u.ID] = &u
	r.byEmail[email] = u.ID

	return clone(&u), nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id int64) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) UpdatePasswordHash(_ context.Context, id int64, passwordHash string) error {
	return r.update(id, func(u *User) { u.PasswordHash = passwordHash })
}

func (r *MemoryRepository) SetActive(_ context.Context, id int64, active bool) error {
	return r.update(id, func(u *User) { u.Active = active })
}

func (r *MemoryRepository) SetPremium(_ context.Context, id int64, premium bool) error {
	return r.update(id, func(u *User) { u.Premium = premium })
}

func (r *MemoryRepository) update(id int64, mutate func(*User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	mutate(u)
	u.UpdatedAt = r.now().UTC()

	return nil
}

// clone returns a copy so callers cannot mutate stored state.
func clone(u *User) *User {
	c := *u
	if u.DisplayName != nil {
		name := *u.DisplayName
		c.DisplayName = &name
	}
	return &c
}
