package reconcile

import (
	"context"
	"errors"
	"time"

	"nursesrent/database/repository"
	bookingRepo "nursesrent/database/repository/booking"
	bookingRequestRepo "nursesrent/database/repository/bookingrequest"
	checkoutSessionRepo "nursesrent/database/repository/checkoutsession"
	entitlementRepo "nursesrent/database/repository/entitlement"
	propertyRepo "nursesrent/database/repository/property"
	userRepo "nursesrent/database/repository/user"
	webhookEventRepo "nursesrent/database/repository/webhookevent"
	"nursesrent/metrics"
	"nursesrent/models"
	"nursesrent/services/auth"
	"nursesrent/services/ledger"
	"nursesrent/services/tasks"
	"nursesrent/utils"

	"go.uber.org/zap"
)

// Outcome is how a delivery was settled. Every outcome is acknowledged to the provider.
type Outcome string

const (
	OutcomeProcessed  Outcome = "processed"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeIgnored    Outcome = "ignored"
	OutcomeUnresolved Outcome = "unresolved"
)

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventCheckoutExpired     = "checkout.session.expired"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// Deps are the stores and collaborators the engine reconciles against.
type Deps struct {
	Users        userRepo.UserRepository
	Properties   propertyRepo.PropertyRepository
	Requests     bookingRequestRepo.BookingRequestRepository
	Bookings     bookingRepo.BookingRepository
	Sessions     checkoutSessionRepo.CheckoutSessionRepository
	Events       webhookEventRepo.WebhookEventRepository
	Entitlements entitlementRepo.Store
	Ledger       ledger.Ledger
	Scheduler    tasks.Scheduler
	// Locker is optional. Without it concurrent duplicates are settled by the store's
	// unique constraints alone.
	Locker  Locker
	Metrics *metrics.Webhook
}

type Config struct {
	// Secrets holds the signing secret of each webhook channel.
	Secrets         map[models.WebhookChannel]string
	Fees            ledger.FeePolicy
	StoreMaxRetries uint64
	RetryInterval   time.Duration
	LockTTL         time.Duration
}

// Engine authenticates webhook deliveries and applies them to the entitlement store.
type Engine struct {
	Deps
	verifier *auth.WebhookVerifier
	cfg      Config
	logger   *zap.Logger
}

func NewEngine(cfg Config, deps Deps, logger *zap.Logger) *Engine {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 100 * time.Millisecond
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	return &Engine{
		Deps:     deps,
		verifier: auth.NewWebhookVerifier(cfg.Secrets),
		cfg:      cfg,
		logger:   logger,
	}
}

// HandleDelivery verifies and reconciles one webhook delivery. A nil error means the
// delivery must be acknowledged. An error of KindInvalidSignature means it was rejected
// before any state was touched; any other error asks the provider to redeliver.
func (e *Engine) HandleDelivery(ctx context.Context, channel models.WebhookChannel, payload []byte, signature string) (Outcome, error) {
	start := time.Now()

	event, err := e.verifier.Verify(channel, payload, signature)
	if err != nil {
		e.logger.Warn("Webhook signature rejected", zap.String("channel", string(channel)), zap.Error(err))
		e.Metrics.Observe(string(channel), "", "rejected", time.Since(start).Seconds())
		return "", err
	}
	log := e.logger.With(
		zap.String("channel", string(channel)),
		zap.String("eventID", event.ID),
		zap.String("eventType", event.Type),
		zap.String("objectID", event.ObjectID))

	outcome, err := e.process(ctx, event, log)
	if err != nil {
		log.Error("Webhook processing failed, requesting redelivery", zap.Error(err))
		e.Metrics.Observe(string(channel), event.Type, "failed", time.Since(start).Seconds())
		return "", err
	}

	log.Info("Webhook reconciled", zap.String("outcome", string(outcome)))
	e.Metrics.Observe(string(channel), event.Type, string(outcome), time.Since(start).Seconds())
	return outcome, nil
}

func (e *Engine) process(ctx context.Context, event *auth.WebhookEvent, log *zap.Logger) (Outcome, error) {
	seen, err := e.Events.Seen(ctx, event.ID)
	if err != nil {
		return "", utils.Internal("failed to read processed events", err)
	}
	if seen {
		return OutcomeDuplicate, nil
	}

	if e.Locker != nil {
		release, acquired, err := e.Locker.Acquire(ctx, "webhook:lock:"+event.ID, e.cfg.LockTTL)
		if err != nil {
			log.Warn("Webhook lock unavailable, continuing without it", zap.Error(err))
		} else if !acquired {
			return OutcomeDuplicate, nil
		} else {
			defer release()
		}
	}

	outcome, err := e.dispatch(ctx, event, log)
	if err != nil {
		if !isUnresolved(err) {
			return "", err
		}
		log.Warn("Webhook references records that cannot be resolved, acknowledging", zap.Error(err))
		outcome = OutcomeUnresolved
	}

	if err := e.Events.Record(ctx, &models.WebhookEvent{
		EventID: event.ID,
		Channel: event.Channel,
		Type:    event.Type,
		Outcome: string(outcome),
	}); err != nil {
		log.Error("Failed to record processed event", zap.Error(err))
	}
	return outcome, nil
}

func (e *Engine) dispatch(ctx context.Context, event *auth.WebhookEvent, log *zap.Logger) (Outcome, error) {
	switch event.Type {
	case EventCheckoutCompleted:
		return e.handleCheckoutCompleted(ctx, event, log)
	case EventCheckoutExpired:
		return e.handleCheckoutExpired(ctx, event, log)
	case EventSubscriptionDeleted:
		return e.handleSubscriptionDeleted(ctx, event, log)
	default:
		log.Debug("Unhandled event type")
		return OutcomeIgnored, nil
	}
}

func (e *Engine) handleCheckoutCompleted(ctx context.Context, event *auth.WebhookEvent, log *zap.Logger) (Outcome, error) {
	if event.ObjectID == "" {
		return "", unresolved("checkout event carries no session id", nil)
	}
	session, err := e.Ledger.GetCheckoutSession(ctx, event.ObjectID)
	if err != nil {
		return "", ledger.Translate(err)
	}
	if !session.Paid() {
		log.Info("Checkout session is not paid yet",
			zap.String("status", session.Status), zap.String("paymentStatus", session.PaymentStatus))
		return OutcomeIgnored, nil
	}

	switch event.Channel {
	case models.ChannelPropertyBooking:
		return e.reconcileBooking(ctx, session, log)
	case models.ChannelHostSubscription:
		return e.reconcileSubscription(ctx, models.RoleHost, session, log)
	case models.ChannelNurseSubscription:
		return e.reconcileSubscription(ctx, models.RoleNurse, session, log)
	default:
		return OutcomeIgnored, nil
	}
}

func (e *Engine) handleCheckoutExpired(ctx context.Context, event *auth.WebhookEvent, log *zap.Logger) (Outcome, error) {
	var moved bool
	err := e.withStoreRetry(ctx, func() error {
		var err error
		moved, err = e.Sessions.Transition(ctx, event.ObjectID, models.CheckoutInitiated, models.CheckoutExpired)
		return err
	})
	if err != nil {
		return "", err
	}
	if !moved {
		log.Debug("Expired session has no pending correlation record")
		return OutcomeIgnored, nil
	}
	return OutcomeProcessed, nil
}

// unresolvedError marks references that no retry can fix.
type unresolvedError struct {
	msg string
	err error
}

func (u *unresolvedError) Error() string {
	if u.err != nil {
		return u.msg + ": " + u.err.Error()
	}
	return u.msg
}

func (u *unresolvedError) Unwrap() error { return u.err }

func unresolved(msg string, err error) error {
	return &unresolvedError{msg: msg, err: err}
}

func isUnresolved(err error) bool {
	var u *unresolvedError
	return errors.As(err, &u) ||
		errors.Is(err, repository.ErrNotFound) ||
		utils.IsKind(err, utils.KindNotFound)
}
