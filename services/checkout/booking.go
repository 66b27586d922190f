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

const invalidListingMessage = "Invalid listing data, contact the administrator"

func (s *DefaultCheckoutService) CreateBookingCheckout(ctx context.Context, nurseID, propertyID string) (*Result, error) {
	return s.bookingCheckout(ctx, nurseID, propertyID, "")
}

func (s *DefaultCheckoutService) CreateRequestCheckout(ctx context.Context, nurseID, requestID string) (*Result, error) {
	request, err := s.Requests.GetByID(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("No booking request found with that ID")
	}
	if err != nil {
		return nil, utils.Internal("failed to load booking request", err)
	}
	if request.Nurse != nurseID {
		return nil, utils.Forbidden("You can only pay for your own booking requests")
	}
	if request.Status != models.RequestApproved {
		return nil, utils.Forbidden("This booking request has not been approved by the host")
	}
	return s.bookingCheckout(ctx, nurseID, request.Property, request.ID)
}

func (s *DefaultCheckoutService) bookingCheckout(ctx context.Context, nurseID, propertyID, requestID string) (*Result, error) {
	property, err := s.Properties.GetByID(ctx, propertyID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("No property found with that ID")
	}
	if err != nil {
		return nil, utils.Internal("failed to load property", err)
	}
	if !property.IsAvailable {
		return nil, utils.Forbidden("This property is rented by another nurse.")
	}
	if !property.IsActive {
		return nil, utils.Forbidden("This property is not listed at the moment")
	}
	if property.Price <= 0 {
		return nil, utils.Validation(invalidListingMessage)
	}

	host, err := s.Users.GetHost(ctx, property.Host)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, utils.Internal("failed to load host", err)
	}
	if host == nil || !host.CanReceivePayouts() {
		return nil, utils.Forbidden(invalidListingMessage)
	}

	nurse, err := s.Users.GetNurse(ctx, nurseID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("No account found with that ID")
	}
	if err != nil {
		return nil, utils.Internal("failed to load nurse", err)
	}
	if !nurse.IsVerified {
		return nil, utils.Forbidden("Please verify your account before making payments")
	}

	priceMinor := ledger.ToMinorUnits(property.Price)
	correlation := map[string]string{
		ledger.MetaPropertyID: property.ID,
		ledger.MetaHostID:     host.ID,
		ledger.MetaNurseID:    nurse.ID,
	}
	if requestID != "" {
		correlation[ledger.MetaBookingRequestID] = requestID
	}
	var images []string
	if property.ImageCover != "" {
		images = []string{property.ImageCover}
	}

	session, err := s.Ledger.CreateCheckoutSession(ctx, ledger.CheckoutInput{
		Mode:              ledger.ModePayment,
		CustomerID:        nurse.StripeCustomerID,
		ClientReferenceID: nurse.ID,
		SuccessURL:        s.successURL(),
		CancelURL:         s.cancelURL(),
		Item: &ledger.InlineItem{
			Name:            property.Title,
			Description:     property.Description,
			Images:          images,
			UnitAmount:      priceMinor,
			Currency:        s.Currency,
			ProductMetadata: correlation,
		},
		ApplicationFee:     s.Fees.FeeFor(priceMinor),
		DestinationAccount: host.StripeAccountID,
		ReceiptEmail:       host.Email,
		Metadata:           correlation,
	})
	if err != nil {
		return nil, ledger.Translate(err)
	}

	s.record(ctx, &models.CheckoutSession{
		SessionID:        session.ID,
		Channel:          models.ChannelPropertyBooking,
		Mode:             ledger.ModePayment,
		UserID:           nurse.ID,
		Role:             models.RoleNurse,
		PropertyID:       property.ID,
		HostID:           host.ID,
		BookingRequestID: requestID,
	})
	s.Logger.Info("Booking checkout created",
		zap.String("sessionID", session.ID),
		zap.String("propertyID", property.ID),
		zap.String("nurseID", nurse.ID))
	return &Result{SessionID: session.ID, URL: session.URL}, nil
}
