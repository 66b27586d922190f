package ledger

import (
	"context"

	"github.com/google/uuid"
)

type idempotencyKeyCtx struct{}

// WithIdempotencyKey attaches the key sent with ledger writes made under ctx.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyCtx{}, key)
}

// IdempotencyKeyFrom returns the key attached by WithIdempotencyKey, or "".
func IdempotencyKeyFrom(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKeyCtx{}).(string)
	return key
}

// ensureIdempotencyKey keeps a caller supplied key and mints one otherwise.
func ensureIdempotencyKey(ctx context.Context) context.Context {
	if IdempotencyKeyFrom(ctx) != "" {
		return ctx
	}
	return WithIdempotencyKey(ctx, uuid.New().String())
}
