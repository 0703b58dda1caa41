package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// PartnerStats holds per-partner counters fed by the redemption worker.
type PartnerStats struct {
	client *Client
}

func NewPartnerStats(client *Client) *PartnerStats {
	return &PartnerStats{client: client}
}

func keyPartnerRedemptions(partnerID string) string {
	return fmt.Sprintf("partner:%s:redemptions", partnerID)
}

func keyRedemptionCounted(redemptionID string) string {
	return fmt.Sprintf("redemption:%s:counted", redemptionID)
}

// countedTTL is how long a counted redemption id is remembered.
const countedTTL = 30 * 24 * time.Hour

// KEYS[1] = counted marker, KEYS[2] = partner counter, ARGV[1] = marker ttl seconds
var recordScript = goredis.NewScript(`
if redis.call('SET', KEYS[1], '1', 'NX', 'EX', tonumber(ARGV[1])) then
  return {1, redis.call('INCR', KEYS[2])}
end
return {0, tonumber(redis.call('GET', KEYS[2]) or '0')}
`)

// RecordRedemption counts redemptionID against partnerID once. Redelivered
// events return the current count with counted=false.
func (s *PartnerStats) RecordRedemption(ctx context.Context, partnerID, redemptionID string) (int64, bool, error) {
	if err := s.client.ready(); err != nil {
		return 0, false, err
	}
	keys := []string{keyRedemptionCounted(redemptionID), keyPartnerRedemptions(partnerID)}
	vals, err := recordScript.Run(ctx, s.client.rdb, keys, int64(countedTTL/time.Second)).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("redis record redemption failed: %w", err)
	}
	if len(vals) != 2 {
		return 0, false, fmt.Errorf("unexpected script result %v", vals)
	}
	return vals[1], vals[0] == 1, nil
}

// RedemptionCount returns 0 for partners with no recorded redemptions
func (s *PartnerStats) RedemptionCount(ctx context.Context, partnerID string) (int64, error) {
	if err := s.client.ready(); err != nil {
		return 0, err
	}
	v, err := s.client.rdb.Get(ctx, keyPartnerRedemptions(partnerID)).Result()
	if err != nil {
		if err == goredis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("redis GET failed: %w", err)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid counter %q: %w", v, err)
	}
	return n, nil
}
