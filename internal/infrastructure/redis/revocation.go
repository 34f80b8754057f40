package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "token:revoked:"

// RevocationList keeps revoked tokens as keys that expire together with the
// token itself.
type RevocationList struct {
	client *goredis.Client
}

func NewRevocationList(client *goredis.Client) *RevocationList {
	return &RevocationList{client: client}
}

// Revoke records token until expiresAt. Tokens already past expiry are
// ignored since verification rejects them anyway.
func (r *RevocationList) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedKeyPrefix+token, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *RevocationList) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("revocation lookup: %w", err)
	}
	return n > 0, nil
}
