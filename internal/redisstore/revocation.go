package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "revoked_jti:"

// TokenRevoker keeps the ids of logged-out tokens until they would have expired anyway.
type TokenRevoker struct {
	rdb *redis.Client
}

// NewTokenRevoker returns a revoker backed by rdb. A nil rdb disables revocation.
func NewTokenRevoker(rdb *redis.Client) *TokenRevoker {
	return &TokenRevoker{rdb: rdb}
}

// Revoke marks jti as revoked for ttl.
func (r *TokenRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if r == nil || r.rdb == nil {
		return ErrUnavailable
	}
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, revokedPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether jti was revoked. Without redis nothing is revoked.
func (r *TokenRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r == nil || r.rdb == nil {
		return false, nil
	}
	err := r.rdb.Get(ctx, revokedPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
