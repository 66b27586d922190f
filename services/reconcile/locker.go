package reconcile

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Locker serializes concurrent deliveries of the same event.
type Locker interface {
	// Acquire takes key for ttl. acquired is false when another holder owns it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}

// RedisLocker takes locks with SETNX in the cache database.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	ok, err := l.client.SetNX(ctx, key, time.Now().UnixNano(), ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}
	release := func() {
		_ = l.client.Del(context.Background(), key).Err()
	}
	return release, true, nil
}
