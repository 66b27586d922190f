package reconcile

import (
	"context"
	"errors"

	"nursesrent/database/repository"
	"nursesrent/utils"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// withStoreRetry runs fn until it succeeds, fails permanently or the retry budget runs
// out. Missing, duplicate and conflicting documents are permanent.
func (e *Engine) withStoreRetry(ctx context.Context, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.cfg.RetryInterval

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		e.logger.Warn("Entitlement store call failed", zap.Int("attempt", attempt), zap.Error(err))
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, e.cfg.StoreMaxRetries), ctx))
	if err == nil || isPermanent(err) {
		return err
	}
	return utils.Internal("entitlement store unavailable", err)
}

func isPermanent(err error) bool {
	return errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, repository.ErrDuplicate) ||
		errors.Is(err, repository.ErrConflict)
}
