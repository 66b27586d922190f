package user

import (
	"context"
	"time"

	entitlementRepo "nursesrent/database/repository/entitlement"
	subscriptionRepo "nursesrent/database/repository/subscription"
	userRepo "nursesrent/database/repository/user"
	"nursesrent/models"
	"nursesrent/services/ledger"

	"go.uber.org/zap"
)

// UserService manages the payment side of host and nurse accounts.
type UserService interface {
	GetAccount(ctx context.Context, role models.Role, userID string) (models.Account, error)
	ConnectPayments(ctx context.Context, role models.Role, userID, clientIP string) (*ConnectResult, error)
	CancelSubscription(ctx context.Context, role models.Role, userID string) error
	DeleteHost(ctx context.Context, hostID string) (*entitlementRepo.PurgeResult, error)
}

// ConnectResult lists the ledger objects attached to the account.
type ConnectResult struct {
	CustomerID string `json:"customerId"`
	AccountID  string `json:"accountId,omitempty"`
}

// TokenRevoker drops the cached sessions of a deleted account.
type TokenRevoker interface {
	Revoke(ctx context.Context, role models.Role, userID string)
}

// DefaultUserService implements UserService.
type DefaultUserService struct {
	Repo          userRepo.UserRepository
	Subscriptions subscriptionRepo.SubscriptionRepository
	Entitlements  entitlementRepo.Store
	Ledger        ledger.Ledger
	Tokens        TokenRevoker
	// Country is the country of connected accounts. Defaults to US.
	Country string
	Logger  *zap.Logger
	Now     func() time.Time
}

func (s *DefaultUserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

var _ UserService = (*DefaultUserService)(nil)
