package rbac

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RoleCache keeps user role codes in Redis so the per-request authorization
// path avoids a join query. Misses fall through to the store; a cache
// failure is treated as a miss, never as a denial or a grant.
type RoleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoleCache constructs a cache. A nil client disables caching.
func NewRoleCache(client *redis.Client, ttl time.Duration) *RoleCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RoleCache{client: client, ttl: ttl}
}

func roleKey(userID int64) string {
	return "rbac:user:" + strconv.FormatInt(userID, 10) + ":roles"
}

// Get returns the cached role codes and whether the entry was present.
func (c *RoleCache) Get(ctx context.Context, userID int64) ([]string, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, roleKey(userID)).Result()
	if err != nil {
		return nil, false
	}
	if raw == "" {
		return []string{}, true
	}
	return strings.Split(raw, ","), true
}

// Set stores the role codes. Codes never contain commas; they are uppercase
// canonical keys.
func (c *RoleCache) Set(ctx context.Context, userID int64, codes []string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, roleKey(userID), strings.Join(codes, ","), c.ttl).Err()
}

// Invalidate drops the entry after a binding change.
func (c *RoleCache) Invalidate(ctx context.Context, userID int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, roleKey(userID)).Err()
}
