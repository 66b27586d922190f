package checkout

import (
	"context"

	bookingRequestRepo "nursesrent/database/repository/bookingrequest"
	checkoutSessionRepo "nursesrent/database/repository/checkoutsession"
	pricingRepo "nursesrent/database/repository/pricing"
	propertyRepo "nursesrent/database/repository/property"
	userRepo "nursesrent/database/repository/user"
	"nursesrent/models"
	"nursesrent/services/ledger"

	"go.uber.org/zap"
)

// CheckoutService opens ledger checkout sessions for subscriptions and bookings. Each
// session carries the correlation data reconciliation needs to map it back.
type CheckoutService interface {
	// EnsureSubscriptionPlan returns the role's pricing with a live ledger price.
	EnsureSubscriptionPlan(ctx context.Context, role models.Role) (*models.SubscriptionPricing, error)
	CreateSubscriptionCheckout(ctx context.Context, role models.Role, userID string) (*Result, error)
	// CreateBookingCheckout books a property directly.
	CreateBookingCheckout(ctx context.Context, nurseID, propertyID string) (*Result, error)
	// CreateRequestCheckout books the property of an approved booking request.
	CreateRequestCheckout(ctx context.Context, nurseID, requestID string) (*Result, error)
	SeedPricing(ctx context.Context, plans []models.SubscriptionPricing) error
}

// Result is returned to the client, which redirects to URL.
type Result struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"sessionUrl"`
}

// DefaultCheckoutService is the production implementation.
type DefaultCheckoutService struct {
	Users       userRepo.UserRepository
	Properties  propertyRepo.PropertyRepository
	Requests    bookingRequestRepo.BookingRequestRepository
	Pricing     pricingRepo.PricingRepository
	Sessions    checkoutSessionRepo.CheckoutSessionRepository
	Ledger      ledger.Ledger
	Fees        ledger.FeePolicy
	Currency    string
	FrontendURL string
	Logger      *zap.Logger
}

func (s *DefaultCheckoutService) successURL() string {
	return s.FrontendURL + "?sessionId={CHECKOUT_SESSION_ID}"
}

func (s *DefaultCheckoutService) cancelURL() string {
	return s.FrontendURL
}

// record stores the correlation record of a created session. The ledger still carries the
// correlation data, so a failure here only loses the local status trail.
func (s *DefaultCheckoutService) record(ctx context.Context, session *models.CheckoutSession) {
	if err := s.Sessions.Create(ctx, session); err != nil {
		s.Logger.Error("Failed to record checkout session",
			zap.String("sessionID", session.SessionID), zap.Error(err))
	}
}
