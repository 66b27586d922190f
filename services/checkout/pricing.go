package checkout

import (
	"context"
	"errors"
	"fmt"

	"nursesrent/database/repository"
	"nursesrent/models"
	"nursesrent/services/ledger"
	"nursesrent/utils"

	"go.uber.org/zap"
)

// SeedPricing inserts the configured plans of roles that have none yet.
func (s *DefaultCheckoutService) SeedPricing(ctx context.Context, plans []models.SubscriptionPricing) error {
	for i := range plans {
		if err := s.Pricing.EnsureDefault(ctx, &plans[i]); err != nil {
			return fmt.Errorf("failed to seed %s pricing: %w", plans[i].UserRole, err)
		}
	}
	return nil
}

func (s *DefaultCheckoutService) EnsureSubscriptionPlan(ctx context.Context, role models.Role) (*models.SubscriptionPricing, error) {
	pricing, err := s.Pricing.GetByRole(ctx, role)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound(fmt.Sprintf("No subscription pricing configured for %s", role))
	}
	if err != nil {
		return nil, utils.Internal("failed to load subscription pricing", err)
	}

	unitAmount := ledger.ToMinorUnits(pricing.Amount)
	if pricing.StripePriceID != "" {
		price, err := s.Ledger.GetPrice(ctx, pricing.StripePriceID)
		switch {
		case err == nil && price.Active && price.UnitAmount == unitAmount:
			return pricing, nil
		case err == nil, ledger.IsNotFound(err):
			s.Logger.Info("Ledger price is stale, creating a new one",
				zap.String("role", string(role)), zap.String("priceID", pricing.StripePriceID))
		default:
			return nil, ledger.Translate(err)
		}
	}

	in := ledger.PriceInput{
		ProductName: pricing.ProductName,
		UnitAmount:  unitAmount,
		Currency:    pricing.Currency,
		Metadata:    map[string]string{ledger.MetaRole: string(role)},
	}
	if pricing.IsRecurring() {
		in.Interval = pricing.Interval
	}
	price, err := s.Ledger.CreatePrice(ctx, in)
	if err != nil {
		return nil, ledger.Translate(err)
	}
	if err := s.Pricing.SetLedgerIDs(ctx, role, price.ID, price.ID, price.ProductID); err != nil {
		return nil, utils.Internal("failed to store ledger price", err)
	}
	pricing.StripePlanID, pricing.StripePriceID, pricing.StripeProductID = price.ID, price.ID, price.ProductID
	return pricing, nil
}
