package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/redmonkez12/go-auth-service/internal/logging"
)

const userCachePrefix = "user:id:"

// CachedRepository is a read-through Redis cache in front of a Store.
// Only lookups by ID are cached since they run on every authenticated
// request. Password hashes never reach Redis, so FindByID through the cache
// returns users without one. Redis failures are logged and the call falls
// through to the store.
type CachedRepository struct {
	store  Store
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

func NewCachedRepository(store Store, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedRepository {
	return &CachedRepository{
		store:  store,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// cachedUser is the msgpack representation stored in Redis.
type cachedUser struct {
	ID          int64     `msgpack:"id"`
	Email       string    `msgpack:"email"`
	DisplayName *string   `msgpack:"display_name"`
	Role        string    `msgpack:"role"`
	Active      bool      `msgpack:"active"`
	Premium     bool      `msgpack:"premium"`
	CreatedAt   time.Time `msgpack:"created_at"`
	UpdatedAt   time.Time `msgpack:"updated_at"`
}

func (c *CachedRepository) Create(ctx context.Context, candidate *User) (*User, error) {
	return c.store.Create(ctx, candidate)
}

func (c *CachedRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return c.store.FindByEmail(ctx, email)
}

func (c *CachedRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	if u, ok := c.get(ctx, id); ok {
		return u, nil
	}

	u, err := c.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""

	c.set(ctx, u)
	return u, nil
}

func (c *CachedRepository) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error {
	if err := c.store.UpdatePasswordHash(ctx, id, passwordHash); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachedRepository) SetActive(ctx context.Context, id int64, active bool) error {
	if err := c.store.SetActive(ctx, id, active); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachedRepository) SetPremium(ctx context.Context, id int64, premium bool) error {
	if err := c.store.SetPremium(ctx, id, premium); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachedRepository) get(ctx context.Context, id int64) (*User, bool) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("user cache read failed", "user_id", id, "error", err)
		}
		return nil, false
	}

	var cu cachedUser
	if err := msgpack.Unmarshal(data, &cu); err != nil {
		c.logger.Warn("user cache entry corrupt", "user_id", id, "error", err)
		return nil, false
	}

	return &User{
		ID:          cu.ID,
		Email:       cu.Email,
		DisplayName: cu.DisplayName,
		Role:        cu.Role,
		Active:      cu.Active,
		Premium:     cu.Premium,
		CreatedAt:   cu.CreatedAt.UTC(),
		UpdatedAt:   cu.UpdatedAt.UTC(),
	}, true
}

func (c *CachedRepository) set(ctx context.Context, u *User) {
	data, err := msgpack.Marshal(&cachedUser{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Active:      u.Active,
		Premium:     u.Premium,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	})
	if err != nil {
		c.logger.Warn("failed to encode user for cache", "user_id", u.ID, "error", err)
		return
	}

	if err := c.client.Set(ctx, cacheKey(u.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("user cache write failed", "user_id", u.ID, "error", err)
	}
}

func (c *CachedRepository) invalidate(ctx context.Context, id int64) {
	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		c.logger.Warn("user cache invalidation failed", "user_id", id, "error", err)
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("%s%d", userCachePrefix, id)
}
