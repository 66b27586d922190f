package checkout

import (
	"context"
	"errors"

	"nursesrent/database/repository"
	"nursesrent/models"
	"nursesrent/services/ledger"
	"nursesrent/utils"

	"go.uber.org/zap"
)

func subscriptionChannel(role models.Role) models.WebhookChannel {
	if role == models.RoleHost {
		return models.ChannelHostSubscription
	}
	return models.ChannelNurseSubscription
}

func (s *DefaultCheckoutService) CreateSubscriptionCheckout(ctx context.Context, role models.Role, userID string) (*Result, error) {
	account, err := s.Users.GetAccount(ctx, role, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("No account found with that ID")
	}
	if err != nil {
		return nil, utils.Internal("failed to load account", err)
	}
	profile := account.Profile()
	if !profile.IsVerified {
		return nil, utils.Forbidden("Please verify your account before making payments")
	}
	if profile.IsSubscriber {
		return nil, utils.Forbidden("You are already subscribed")
	}
	if profile.StripeCustomerID == "" {
		return nil, utils.Forbidden("Please connect your account to payments first")
	}

	plan, err := s.EnsureSubscriptionPlan(ctx, role)
	if err != nil {
		return nil, err
	}
	mode := ledger.ModePayment
	if plan.IsRecurring() {
		mode = ledger.ModeSubscription
	}

	session, err := s.Ledger.CreateCheckoutSession(ctx, ledger.CheckoutInput{
		Mode:              mode,
		CustomerID:        profile.StripeCustomerID,
		ClientReferenceID: profile.ID,
		SuccessURL:        s.successURL(),
		CancelURL:         s.cancelURL(),
		PriceID:           plan.StripePriceID,
		Metadata: map[string]string{
			ledger.MetaUserID: profile.ID,
			ledger.MetaRole:   string(role),
		},
	})
	if err != nil {
		return nil, ledger.Translate(err)
	}

	s.record(ctx, &models.CheckoutSession{
		SessionID: session.ID,
		Channel:   subscriptionChannel(role),
		Mode:      mode,
		UserID:    profile.ID,
		Role:      role,
	})
	s.Logger.Info("Subscription checkout created",
		zap.String("sessionID", session.ID), zap.String("userID", profile.ID), zap.String("mode", mode))
	return &Result{SessionID: session.ID, URL: session.URL}, nil
}
