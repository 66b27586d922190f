package utils

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrCodeNotFound is returned when no code is stored under a key, or it expired.
var ErrCodeNotFound = errors.New("code not found or expired")

// GenerateOTP generates a secure random OTP of the specified length.
// It returns a base32 encoded string (without padding) truncated to the desired length.
func GenerateOTP(length int) (string, error) {
	numBytes := (length*5 + 7) / 8
	randomBytes := make([]byte, numBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	otp := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	if len(otp) > length {
		otp = otp[:length]
	}
	return otp, nil
}

// CodeStore keeps one-time codes until they are taken or expire.
type CodeStore interface {
	Save(ctx context.Context, key, code string, ttl time.Duration) error
	// Take returns the code stored under key and removes it.
	Take(ctx context.Context, key string) (string, error)
}

// RedisCodeStore stores codes with a Redis TTL.
type RedisCodeStore struct {
	client *redis.Client
}

func NewRedisCodeStore(client *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{client: client}
}

func (s *RedisCodeStore) Save(ctx context.Context, key, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, code, ttl).Err(); err != nil {
		GetLogger().Error("Failed to cache OTP", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to store code: %w", err)
	}
	return nil
}

func (s *RedisCodeStore) Take(ctx context.Context, key string) (string, error) {
	code, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to retrieve code: %w", err)
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		GetLogger().Error("Failed to delete OTP after verification", zap.String("key", key), zap.Error(err))
	}
	return code, nil
}

type storedCode struct {
	code      string
	expiresAt time.Time
}

// MemoryCodeStore is a process-local CodeStore for deployments without Redis.
type MemoryCodeStore struct {
	mu    sync.Mutex
	codes map[string]storedCode
	now   func() time.Time
}

func NewMemoryCodeStore() *MemoryCodeStore {
	return &MemoryCodeStore{codes: make(map[string]storedCode), now: time.Now}
}

func (s *MemoryCodeStore) Save(_ context.Context, key, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[key] = storedCode{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryCodeStore) Take(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.codes[key]
	if !ok {
		return "", ErrCodeNotFound
	}
	delete(s.codes, key)
	if s.now().After(stored.expiresAt) {
		return "", ErrCodeNotFound
	}
	return stored.code, nil
}
