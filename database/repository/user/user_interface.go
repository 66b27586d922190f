package userRepo

import (
	"context"

	"nursesrent/models"
)

// UserRepository stores hosts and nurses, one collection per role.
type UserRepository interface {
	CreateHost(ctx context.Context, host *models.Host) error
	CreateNurse(ctx context.Context, nurse *models.Nurse) error
	GetHost(ctx context.Context, id string) (*models.Host, error)
	GetNurse(ctx context.Context, id string) (*models.Nurse, error)
	// GetAccount resolves id in the collection of role into its concrete variant.
	GetAccount(ctx context.Context, role models.Role, id string) (models.Account, error)
	GetByEmail(ctx context.Context, role models.Role, email string) (models.Account, error)
	UpdateTokenHash(ctx context.Context, role models.Role, id, tokenHash string) error
	SetCustomerID(ctx context.Context, role models.Role, id, customerID string) error
	SetConnectedAccount(ctx context.Context, hostID, accountID string) error
	SetVerified(ctx context.Context, role models.Role, id string) error
}
