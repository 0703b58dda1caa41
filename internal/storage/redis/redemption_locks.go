package redis

import (
	"context"
	"fmt"
	"time"
)

// RedemptionLocks guards the one-redemption-per-pass-per-offer rule before
// the database insert runs.
type RedemptionLocks struct {
	client *Client
}

func NewRedemptionLocks(client *Client) *RedemptionLocks {
	return &RedemptionLocks{client: client}
}

func keyRedemptionLock(passID, offerID string) string {
	return fmt.Sprintf("pass:%s:offer:%s:redeemed", passID, offerID)
}

// Acquire marks the pair as redeemed. It returns false if it already was.
func (l *RedemptionLocks) Acquire(ctx context.Context, passID, offerID string, ttl time.Duration) (bool, error) {
	if err := l.client.ready(); err != nil {
		return false, err
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	ok, err := l.client.rdb.SetNX(ctx, keyRedemptionLock(passID, offerID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis SETNX failed: %w", err)
	}
	return ok, nil
}

// Release removes the marker after a failed insert so the user can retry.
func (l *RedemptionLocks) Release(ctx context.Context, passID, offerID string) error {
	if err := l.client.ready(); err != nil {
		return err
	}
	return l.client.rdb.Del(ctx, keyRedemptionLock(passID, offerID)).Err()
}
