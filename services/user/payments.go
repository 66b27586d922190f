package user

import (
	"context"
	"errors"

	"nursesrent/database/repository"
	"nursesrent/models"
	"nursesrent/services/ledger"
	"nursesrent/utils"

	"go.uber.org/zap"
)

func (s *DefaultUserService) GetAccount(ctx context.Context, role models.Role, userID string) (models.Account, error) {
	account, err := s.Repo.GetAccount(ctx, role, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("No account found with that ID")
	}
	if err != nil {
		return nil, utils.Internal("failed to load account", err)
	}
	return account, nil
}

// ConnectPayments creates the ledger customer of an account and, for hosts, the connected
// account that receives booking payouts.
func (s *DefaultUserService) ConnectPayments(ctx context.Context, role models.Role, userID, clientIP string) (*ConnectResult, error) {
	account, err := s.GetAccount(ctx, role, userID)
	if err != nil {
		return nil, err
	}
	profile := account.Profile()
	if !profile.IsVerified {
		return nil, utils.Forbidden("Please verify your email before connecting payments")
	}

	result := &ConnectResult{CustomerID: profile.StripeCustomerID}
	host, isHost := account.(*models.Host)
	if isHost {
		result.AccountID = host.StripeAccountID
	}
	if result.CustomerID != "" && (!isHost || result.AccountID != "") {
		return nil, utils.Forbidden("You are already connected to payments")
	}

	if result.CustomerID == "" {
		customerID, err := s.Ledger.CreateCustomer(ctx, ledger.CustomerInput{
			Email:  profile.Email,
			Name:   profile.Name,
			UserID: profile.ID,
		})
		if err != nil {
			return nil, ledger.Translate(err)
		}
		if err := s.Repo.SetCustomerID(ctx, role, profile.ID, customerID); err != nil {
			return nil, utils.Internal("failed to save customer", err)
		}
		result.CustomerID = customerID
	}

	// A host is flagged connected only after its customer is saved.
	if isHost && result.AccountID == "" {
		country := s.Country
		if country == "" {
			country = "US"
		}
		accountID, err := s.Ledger.CreateConnectedAccount(ctx, ledger.AccountInput{
			Email:     profile.Email,
			Country:   country,
			UserID:    profile.ID,
			TOSIP:     clientIP,
			TOSAccept: s.now(),
		})
		if err != nil {
			return nil, ledger.Translate(err)
		}
		if err := s.Repo.SetConnectedAccount(ctx, profile.ID, accountID); err != nil {
			return nil, utils.Internal("failed to save connected account", err)
		}
		result.AccountID = accountID
	}

	s.Logger.Info("Payments connected",
		zap.String("role", string(role)), zap.String("userID", profile.ID),
		zap.String("customerID", result.CustomerID), zap.String("accountID", result.AccountID))
	return result, nil
}

// CancelSubscription asks the ledger to cancel the recurring subscription. The local
// entitlement stays until the ledger reports the deletion.
func (s *DefaultUserService) CancelSubscription(ctx context.Context, role models.Role, userID string) error {
	sub, err := s.Subscriptions.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return utils.NotFound("You have no active subscription")
	}
	if err != nil {
		return utils.Internal("failed to load subscription", err)
	}
	if sub.CustomerRole != role {
		return utils.NotFound("You have no active subscription")
	}
	if sub.OneTimeSubscription {
		return utils.Forbidden("One-time subscriptions cannot be cancelled")
	}
	if err := s.Ledger.CancelSubscription(ctx, sub.SubscriptionID); err != nil {
		return ledger.Translate(err)
	}
	s.Logger.Info("Subscription cancellation requested",
		zap.String("userID", userID), zap.String("subscriptionID", sub.SubscriptionID))
	return nil
}
