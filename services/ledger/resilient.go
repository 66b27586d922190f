package ledger

import (
	"context"
	"errors"
	"time"

	"nursesrent/metrics"
	"nursesrent/utils"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ResilienceConfig bounds every ledger call.
type ResilienceConfig struct {
	Timeout          time.Duration
	MaxRetries       uint64
	FailureThreshold uint32
	OpenTimeout      time.Duration
	InitialInterval  time.Duration
}

func (c ResilienceConfig) withDefaults() ResilienceConfig {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = 200 * time.Millisecond
	}
	return c
}

// Resilient decorates a Ledger with per-call timeouts, retries on upstream failures and a
// circuit breaker. Not-found and validation errors pass through without retry.
type Resilient struct {
	inner   Ledger
	cfg     ResilienceConfig
	breaker *gobreaker.CircuitBreaker[any]
	metrics *metrics.Ledger
	logger  *zap.Logger
}

func NewResilient(inner Ledger, cfg ResilienceConfig, m *metrics.Ledger, logger *zap.Logger) *Resilient {
	cfg = cfg.withDefaults()
	r := &Resilient{inner: inner, cfg: cfg, metrics: m, logger: logger}
	r.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "ledger",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !utils.IsKind(err, utils.KindUpstream)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("ledger circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			m.SetBreakerState(name, float64(to))
		},
	})
	return r
}

func (r *Resilient) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialInterval
	b.MaxInterval = 5 * time.Second
	return backoff.WithMaxRetries(b, r.cfg.MaxRetries)
}

func call[T any](ctx context.Context, r *Resilient, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	start := time.Now()
	var out T

	operation := func() error {
		res, err := r.breaker.Execute(func() (any, error) {
			callCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
			defer cancel()
			v, err := fn(callCtx)
			if err != nil {
				return nil, Translate(err)
			}
			return v, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(utils.Upstream(unavailableMessage, err))
			}
			if !utils.IsKind(err, utils.KindUpstream) {
				return backoff.Permanent(err)
			}
			r.logger.Warn("ledger call failed, retrying", zap.String("operation", op), zap.Error(err))
			return err
		}
		out = res.(T)
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(r.newBackOff(), ctx))
	result := "ok"
	if err != nil {
		err = Translate(err)
		result = string(utils.KindOf(err))
	}
	r.metrics.ObserveCall(op, result, time.Since(start).Seconds())
	return out, err
}

// write is call for ledger writes. All attempts of one write share an idempotency key.
func write[T any](ctx context.Context, r *Resilient, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	return call(ensureIdempotencyKey(ctx), r, op, fn)
}

func (r *Resilient) CreateCustomer(ctx context.Context, in CustomerInput) (string, error) {
	return write(ctx, r, "create_customer", func(ctx context.Context) (string, error) {
		return r.inner.CreateCustomer(ctx, in)
	})
}

func (r *Resilient) CreateConnectedAccount(ctx context.Context, in AccountInput) (string, error) {
	return write(ctx, r, "create_connected_account", func(ctx context.Context) (string, error) {
		return r.inner.CreateConnectedAccount(ctx, in)
	})
}

func (r *Resilient) GetPrice(ctx context.Context, id string) (*Price, error) {
	return call(ctx, r, "get_price", func(ctx context.Context) (*Price, error) {
		return r.inner.GetPrice(ctx, id)
	})
}

func (r *Resilient) CreatePrice(ctx context.Context, in PriceInput) (*Price, error) {
	return write(ctx, r, "create_price", func(ctx context.Context) (*Price, error) {
		return r.inner.CreatePrice(ctx, in)
	})
}

func (r *Resilient) CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*Session, error) {
	return write(ctx, r, "create_checkout_session", func(ctx context.Context) (*Session, error) {
		return r.inner.CreateCheckoutSession(ctx, in)
	})
}

func (r *Resilient) GetCheckoutSession(ctx context.Context, id string) (*Session, error) {
	return call(ctx, r, "get_checkout_session", func(ctx context.Context) (*Session, error) {
		return r.inner.GetCheckoutSession(ctx, id)
	})
}

func (r *Resilient) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	return call(ctx, r, "get_subscription", func(ctx context.Context) (*Subscription, error) {
		return r.inner.GetSubscription(ctx, id)
	})
}

func (r *Resilient) GetPaymentMethod(ctx context.Context, id string) (*PaymentMethod, error) {
	return call(ctx, r, "get_payment_method", func(ctx context.Context) (*PaymentMethod, error) {
		return r.inner.GetPaymentMethod(ctx, id)
	})
}

func (r *Resilient) CancelSubscription(ctx context.Context, id string) error {
	_, err := call(ctx, r, "cancel_subscription", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.inner.CancelSubscription(ctx, id)
	})
	return err
}

var _ Ledger = (*Resilient)(nil)
var _ Ledger = (*StripeLedger)(nil)
