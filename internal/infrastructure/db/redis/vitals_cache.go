package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smartcare/smartcare-api/internal/core/domain"
)

const defaultVitalsTTL = 2 * time.Minute

// setIfNewer stores the entry unless the cached one was recorded later.
// KEYS[1] entry hash; ARGV[1] recorded-at micros; ARGV[2] JSON; ARGV[3] TTL ms.
var setIfNewer = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'at')
if cur and tonumber(cur) > tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'at', ARGV[1], 'data', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// VitalsCache keeps each user's latest snapshot as a hash of its JSON and
// recording time.
// Key format: vitals:latest:<user_id>
type VitalsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVitalsCache wraps client; entries expire after ttl (default 2m).
func NewVitalsCache(client *redis.Client, ttl time.Duration) *VitalsCache {
	if ttl <= 0 {
		ttl = defaultVitalsTTL
	}
	return &VitalsCache{client: client, ttl: ttl}
}

// Get returns the cached snapshot, or (nil, nil) when none is cached.
func (c *VitalsCache) Get(ctx context.Context, userID string) (*domain.VitalsSnapshot, error) {
	raw, err := c.client.HGet(ctx, c.key(userID), "data").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("vitals cache get: %w", err)
	}

	var s domain.VitalsSnapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("vitals cache decode: %w", err)
	}
	return &s, nil
}

// Set stores s under its owner's key unless a snapshot recorded after s is
// already cached, so a slow writer cannot roll the entry back.
func (c *VitalsCache) Set(ctx context.Context, s *domain.VitalsSnapshot) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("vitals cache encode: %w", err)
	}
	var at int64
	if !s.RecordedAt.IsZero() {
		at = s.RecordedAt.UnixMicro()
	}
	err = setIfNewer.Run(ctx, c.client, []string{c.key(s.UserID)}, at, raw, c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("vitals cache set: %w", err)
	}
	return nil
}

func (c *VitalsCache) key(userID string) string {
	return fmt.Sprintf("vitals:latest:%s", userID)
}
