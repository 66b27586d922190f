package reconcile

import (
	"context"
	"errors"

	"nursesrent/database/repository"
	"nursesrent/models"
	"nursesrent/services/auth"
	"nursesrent/services/ledger"
	"nursesrent/services/tasks"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (e *Engine) reconcileSubscription(ctx context.Context, role models.Role, session *ledger.Session, log *zap.Logger) (Outcome, error) {
	userID := session.ClientReferenceID
	if userID == "" {
		userID = session.Metadata[ledger.MetaUserID]
	}
	if userID == "" {
		return "", unresolved("subscription session carries no user reference", nil)
	}
	if r := session.Metadata[ledger.MetaRole]; r != "" && models.Role(r) != role {
		return "", unresolved("subscription session was created for role "+r, nil)
	}
	if _, err := e.Users.GetAccount(ctx, role, userID); err != nil {
		return "", unresolved("subscriber", err)
	}

	var (
		sub *models.Subscription
		err error
	)
	if session.SubscriptionID != "" {
		sub, err = e.recurringSubscription(ctx, session)
	} else {
		sub, err = e.oneTimeSubscription(ctx, session)
	}
	if err != nil {
		return "", err
	}
	if !grantsAccess(sub.SubscriptionStatus) {
		log.Info("Ledger reports the subscription ended, not granting access",
			zap.String("userID", userID),
			zap.String("subscriptionID", sub.SubscriptionID),
			zap.String("status", sub.SubscriptionStatus))
		err = e.withStoreRetry(ctx, func() error {
			_, err := e.Sessions.Transition(ctx, session.ID, models.CheckoutInitiated, models.CheckoutCompleted)
			return err
		})
		if err != nil {
			return "", err
		}
		return OutcomeIgnored, nil
	}
	sub.ID = uuid.New().String()
	sub.UserID = userID
	sub.CustomerRole = role

	err = e.withStoreRetry(ctx, func() error {
		return e.Entitlements.ReplaceSubscription(ctx, sub, session.ID)
	})
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return OutcomeDuplicate, nil
	case err != nil:
		return "", err
	}

	log.Info("Subscription activated",
		zap.String("userID", userID),
		zap.String("subscriptionID", sub.SubscriptionID),
		zap.Bool("oneTime", sub.OneTimeSubscription))
	e.notify(ctx, tasks.TypeSubscriptionActivated, models.NotificationPayload{
		Target: role, UserID: userID,
		Title: "Subscription active", Body: "Thank you for subscribing.",
	})
	return OutcomeProcessed, nil
}

// grantsAccess reports whether a ledger subscription status entitles its owner.
func grantsAccess(status string) bool {
	return status == ledger.SubscriptionStatusActive || status == ledger.SubscriptionStatusTrialing
}

func (e *Engine) recurringSubscription(ctx context.Context, session *ledger.Session) (*models.Subscription, error) {
	remote, err := e.Ledger.GetSubscription(ctx, session.SubscriptionID)
	if err != nil {
		return nil, ledger.Translate(err)
	}
	customerID := remote.CustomerID
	if customerID == "" {
		customerID = session.CustomerID
	}
	sub := &models.Subscription{
		SubscriptionID:     remote.ID,
		SubscriptionPlanID: remote.PriceID,
		ProductID:          remote.ProductID,
		SubscriptionStatus: remote.Status,
		PriceAmount:        ledger.FromMinorUnits(remote.UnitAmount),
		Currency:           remote.Currency,
		CustomerID:         customerID,
		LatestInvoiceID:    remote.LatestInvoiceID,
		StartedAt:          remote.CurrentPeriodStart,
		EndsAt:             remote.CurrentPeriodEnd,
	}
	sub.PaymentMethod, err = e.paymentMethodSnapshot(ctx, remote.DefaultPaymentMethodID)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (e *Engine) oneTimeSubscription(ctx context.Context, session *ledger.Session) (*models.Subscription, error) {
	sub := &models.Subscription{
		SubscriptionStatus:  ledger.SubscriptionStatusActive,
		PriceAmount:         ledger.FromMinorUnits(session.AmountTotal),
		Currency:            session.Currency,
		CustomerID:          session.CustomerID,
		OneTimeSubscription: true,
		EndsAt:              models.OneTimeSubscriptionEnd,
	}
	if len(session.LineItems) > 0 {
		sub.SubscriptionPlanID = session.LineItems[0].PriceID
		sub.ProductID = session.LineItems[0].ProductID
	}

	charge := session.Charge
	if charge == nil {
		if session.PaymentIntentID == "" {
			return nil, unresolved("one-time session has no payment", nil)
		}
		sub.SubscriptionID = session.PaymentIntentID
		return sub, nil
	}
	sub.SubscriptionID = charge.ID
	sub.PriceAmount = ledger.FromMinorUnits(charge.Amount)
	sub.StartedAt = charge.Created

	snapshot, err := e.paymentMethodSnapshot(ctx, charge.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	sub.PaymentMethod = snapshot
	return sub, nil
}

// paymentMethodSnapshot copies card details. A missing payment method yields an empty snapshot.
func (e *Engine) paymentMethodSnapshot(ctx context.Context, id string) (models.PaymentMethodSnapshot, error) {
	if id == "" {
		return models.PaymentMethodSnapshot{}, nil
	}
	pm, err := e.Ledger.GetPaymentMethod(ctx, id)
	if ledger.IsNotFound(err) {
		return models.PaymentMethodSnapshot{}, nil
	}
	if err != nil {
		return models.PaymentMethodSnapshot{}, ledger.Translate(err)
	}
	return models.PaymentMethodSnapshot{
		Email:    pm.Email,
		Name:     pm.Name,
		Brand:    pm.Brand,
		Country:  pm.Country,
		ExpMonth: pm.ExpMonth,
		ExpYear:  pm.ExpYear,
		Funding:  pm.Funding,
		Last4:    pm.Last4,
		Created:  pm.Created,
		Type:     pm.Type,
	}, nil
}

// handleSubscriptionDeleted revokes the local entitlement once the ledger confirms the
// cancellation. Events for subscriptions the ledger still reports live are stale.
func (e *Engine) handleSubscriptionDeleted(ctx context.Context, event *auth.WebhookEvent, log *zap.Logger) (Outcome, error) {
	if event.ObjectID == "" {
		return "", unresolved("subscription event carries no subscription id", nil)
	}
	remote, err := e.Ledger.GetSubscription(ctx, event.ObjectID)
	switch {
	case ledger.IsNotFound(err):
		log.Info("Subscription no longer exists at the ledger, revoking")
	case err != nil:
		return "", ledger.Translate(err)
	case remote.Status != ledger.SubscriptionStatusCanceled:
		log.Warn("Ledger still reports the subscription live, ignoring", zap.String("status", remote.Status))
		return OutcomeIgnored, nil
	}

	var revoked *models.Subscription
	err = e.withStoreRetry(ctx, func() error {
		var err error
		revoked, err = e.Entitlements.RevokeSubscription(ctx, event.ObjectID)
		return err
	})
	if errors.Is(err, repository.ErrNotFound) {
		log.Info("No local subscription to revoke")
		return OutcomeIgnored, nil
	}
	if err != nil {
		return "", err
	}

	log.Info("Subscription revoked", zap.String("userID", revoked.UserID))
	e.notify(ctx, tasks.TypeSubscriptionEnded, models.NotificationPayload{
		Target: revoked.CustomerRole, UserID: revoked.UserID,
		Title: "Subscription ended", Body: "Your subscription has been cancelled.",
	})
	return OutcomeProcessed, nil
}
