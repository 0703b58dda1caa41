package redis

import (
	"context"
	"fmt"
	"time"
)

// SessionRegistry records revoked token ids until the token would have
// expired anyway.
type SessionRegistry struct {
	client *Client
}

func NewSessionRegistry(client *Client) *SessionRegistry {
	return &SessionRegistry{client: client}
}

func keyRevoked(jti string) string {
	return fmt.Sprintf("session:revoked:%s", jti)
}

func (r *SessionRegistry) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := r.client.ready(); err != nil {
		return err
	}
	if ttl <= 0 {
		// already expired, nothing to remember
		return nil
	}
	if err := r.client.rdb.Set(ctx, keyRevoked(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	return nil
}

func (r *SessionRegistry) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if err := r.client.ready(); err != nil {
		return false, err
	}
	n, err := r.client.rdb.Exists(ctx, keyRevoked(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("redis EXISTS failed: %w", err)
	}
	return n > 0, nil
}
