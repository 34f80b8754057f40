package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/trip-planner-nosql/internal/domain"
)

const identityKeyPrefix = "user:"

// IdentityCache stores user profiles under user:<id> with a fixed expiry.
type IdentityCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewIdentityCache(client *goredis.Client, ttl time.Duration) *IdentityCache {
	return &IdentityCache{client: client, ttl: ttl}
}

// Get returns the cached profile, or nil without error on a miss.
func (c *IdentityCache) Get(ctx context.Context, userID string) (*domain.User, error) {
	raw, err := c.client.Get(ctx, identityKeyPrefix+userID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("identity cache get: %w", err)
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("identity cache decode: %w", err)
	}
	return &u, nil
}

func (c *IdentityCache) Set(ctx context.Context, u *domain.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("identity cache encode: %w", err)
	}
	if err := c.client.Set(ctx, identityKeyPrefix+u.UserID, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("identity cache set: %w", err)
	}
	return nil
}
