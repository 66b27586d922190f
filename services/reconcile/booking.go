package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nursesrent/database/repository"
	"nursesrent/models"
	"nursesrent/services/ledger"
	"nursesrent/services/tasks"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// bookingCorrelation is the join data carried through the ledger on a booking checkout.
type bookingCorrelation struct {
	PropertyID string
	HostID     string
	NurseID    string
	RequestID  string
}

// correlationOf prefers the product metadata of the purchased line item and falls back to
// the session metadata.
func correlationOf(session *ledger.Session) bookingCorrelation {
	lookup := func(key string) string {
		if len(session.LineItems) > 0 {
			if v := session.LineItems[0].ProductMetadata[key]; v != "" {
				return v
			}
		}
		return session.Metadata[key]
	}
	c := bookingCorrelation{
		PropertyID: lookup(ledger.MetaPropertyID),
		HostID:     lookup(ledger.MetaHostID),
		NurseID:    session.ClientReferenceID,
		RequestID:  lookup(ledger.MetaBookingRequestID),
	}
	if c.NurseID == "" {
		c.NurseID = lookup(ledger.MetaNurseID)
	}
	return c
}

func (e *Engine) reconcileBooking(ctx context.Context, session *ledger.Session, log *zap.Logger) (Outcome, error) {
	paymentID := session.PaymentIntentID
	if paymentID == "" {
		paymentID = session.ID
	}
	if _, err := e.Bookings.GetByPaymentID(ctx, paymentID); err == nil {
		return OutcomeDuplicate, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("failed to check existing booking: %w", err)
	}

	corr := correlationOf(session)
	if corr.PropertyID == "" || corr.NurseID == "" {
		return "", unresolved("booking session carries no correlation data", nil)
	}

	property, err := e.Properties.GetByID(ctx, corr.PropertyID)
	if err != nil {
		return "", unresolved("booked property", err)
	}
	if corr.HostID != "" && corr.HostID != property.Host {
		log.Warn("Correlation host does not own the property, using the property owner",
			zap.String("hostID", corr.HostID), zap.String("owner", property.Host))
	}
	if _, err := e.Users.GetNurse(ctx, corr.NurseID); err != nil {
		return "", unresolved("booking nurse", err)
	}
	if corr.RequestID != "" {
		if _, err := e.Requests.GetByID(ctx, corr.RequestID); err != nil {
			return "", unresolved("booking request", err)
		}
	}

	priceMinor := session.AmountTotal
	currency := session.Currency
	if len(session.LineItems) > 0 {
		priceMinor = session.LineItems[0].AmountTotal
		if session.LineItems[0].Currency != "" {
			currency = session.LineItems[0].Currency
		}
	}
	feeMinor := session.ApplicationFee
	if feeMinor == 0 {
		feeMinor = e.cfg.Fees.FeeFor(priceMinor)
	}

	booking := &models.Booking{
		ID:                uuid.New().String(),
		Currency:          currency,
		Status:            models.BookingPending,
		PaymentID:         paymentID,
		CheckoutSessionID: session.ID,
		Nurse:             corr.NurseID,
		Host:              property.Host,
		Property:          property.ID,
	}
	booking.SetAmounts(priceMinor, feeMinor)

	err = e.withStoreRetry(ctx, func() error {
		return e.Entitlements.ConfirmBooking(ctx, booking, corr.RequestID)
	})
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return OutcomeDuplicate, nil
	case errors.Is(err, repository.ErrConflict):
		return e.rejectBooking(ctx, session, booking, property, log)
	case err != nil:
		return "", err
	}

	log.Info("Booking confirmed",
		zap.String("bookingID", booking.ID),
		zap.String("propertyID", booking.Property),
		zap.Float64("totalAmount", booking.TotalAmount))
	e.notify(ctx, tasks.TypeBookingConfirmed, models.NotificationPayload{
		Target: models.RoleHost, UserID: booking.Host, Booking: booking.ID,
		Title: "New booking", Body: fmt.Sprintf("Your property %s has been booked.", property.Title),
	})
	e.notify(ctx, tasks.TypeBookingConfirmed, models.NotificationPayload{
		Target: models.RoleNurse, UserID: booking.Nurse, Booking: booking.ID,
		Title: "Booking confirmed", Body: fmt.Sprintf("Your booking of %s is confirmed.", property.Title),
	})
	return OutcomeProcessed, nil
}

// rejectBooking settles a paid session whose property was booked by someone else first.
// No booking is created and the payment is left for a refund.
func (e *Engine) rejectBooking(ctx context.Context, session *ledger.Session, booking *models.Booking, property *models.Property, log *zap.Logger) (Outcome, error) {
	log.Error("Paid booking for a property that is no longer available, refund required",
		zap.String("propertyID", property.ID),
		zap.String("nurseID", booking.Nurse),
		zap.String("paymentID", booking.PaymentID),
		zap.Float64("totalAmount", booking.TotalAmount))
	err := e.withStoreRetry(ctx, func() error {
		_, err := e.Sessions.Transition(ctx, session.ID, models.CheckoutInitiated, models.CheckoutCompleted)
		return err
	})
	if err != nil {
		return "", err
	}
	e.notify(ctx, tasks.TypeBookingRejected, models.NotificationPayload{
		Target: models.RoleNurse, UserID: booking.Nurse,
		Title: "Booking not confirmed",
		Body:  fmt.Sprintf("%s was booked by someone else before your payment completed. Your payment will be refunded.", property.Title),
	})
	return "", unresolved("property "+property.ID+" is no longer available", repository.ErrConflict)
}

func (e *Engine) notify(ctx context.Context, taskType string, payload models.NotificationPayload) {
	if e.Scheduler == nil {
		return
	}
	if err := e.Scheduler.Schedule(ctx, taskType, payload, time.Time{}); err != nil {
		e.logger.Error("Failed to schedule notification",
			zap.String("type", taskType), zap.String("userID", payload.UserID), zap.Error(err))
	}
}
