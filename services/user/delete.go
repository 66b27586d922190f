package user

import (
	"context"
	"errors"

	"nursesrent/database/repository"
	entitlementRepo "nursesrent/database/repository/entitlement"
	"nursesrent/models"
	"nursesrent/services/ledger"
	"nursesrent/utils"

	"go.uber.org/zap"
)

// DeleteHost cancels the host's recurring subscription at the ledger, then removes the host
// with its listings in one store transaction and finally revokes its sessions. A ledger
// failure aborts before anything local is removed.
func (s *DefaultUserService) DeleteHost(ctx context.Context, hostID string) (*entitlementRepo.PurgeResult, error) {
	if _, err := s.GetAccount(ctx, models.RoleHost, hostID); err != nil {
		return nil, err
	}

	sub, err := s.Subscriptions.GetByUserID(ctx, hostID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
	case err != nil:
		return nil, utils.Internal("failed to load subscription", err)
	case !sub.OneTimeSubscription && sub.SubscriptionStatus != ledger.SubscriptionStatusCanceled:
		err := s.Ledger.CancelSubscription(ctx, sub.SubscriptionID)
		if err != nil && !ledger.IsNotFound(err) {
			return nil, ledger.Translate(err)
		}
	}

	result, err := s.Entitlements.PurgeHost(ctx, hostID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("No account found with that ID")
	}
	if err != nil {
		return nil, utils.Internal("failed to delete host", err)
	}
	if s.Tokens != nil {
		s.Tokens.Revoke(ctx, models.RoleHost, hostID)
	}

	s.Logger.Info("Host deleted",
		zap.String("hostID", hostID),
		zap.Int64("properties", result.Properties),
		zap.Int64("bookingRequests", result.BookingRequests))
	return result, nil
}
