package auth

import (
	"context"
	"encoding/json"
	"time"

	"nursesrent/models"

	"github.com/go-redis/redis/v8"
)

// AuthCachePrefix namespaces validated sessions in the auth cache.
const AuthCachePrefix = "auth:"

const sessionTTL = time.Hour

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID     string      `json:"userId"`
	Role       models.Role `json:"role"`
	IsVerified bool        `json:"isVerified"`
	TokenHash  string      `json:"tokenHash"`
}

// SessionCache remembers validated token hashes so most requests skip the store.
type SessionCache interface {
	Get(ctx context.Context, role models.Role, userID string) (*Principal, bool)
	Set(ctx context.Context, p Principal)
	Delete(ctx context.Context, role models.Role, userID string)
}

func cacheKey(role models.Role, userID string) string {
	return AuthCachePrefix + string(role) + ":" + userID
}

// RedisSessionCache stores principals in the auth Redis database.
type RedisSessionCache struct {
	client *redis.Client
}

func NewRedisSessionCache(client *redis.Client) *RedisSessionCache {
	return &RedisSessionCache{client: client}
}

func (c *RedisSessionCache) Get(ctx context.Context, role models.Role, userID string) (*Principal, bool) {
	key := cacheKey(role, userID)
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var p Principal
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, false
	}
	_ = c.client.Expire(ctx, key, sessionTTL).Err()
	return &p, true
}

func (c *RedisSessionCache) Set(ctx context.Context, p Principal) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, cacheKey(p.Role, p.UserID), data, sessionTTL).Err()
}

func (c *RedisSessionCache) Delete(ctx context.Context, role models.Role, userID string) {
	_ = c.client.Del(ctx, cacheKey(role, userID)).Err()
}

// NoopSessionCache disables caching.
type NoopSessionCache struct{}

func (NoopSessionCache) Get(context.Context, models.Role, string) (*Principal, bool) { return nil, false }
func (NoopSessionCache) Set(context.Context, Principal)                              {}
func (NoopSessionCache) Delete(context.Context, models.Role, string)                 {}
