package memory

import (
	"context"
	"fmt"
	"time"

	"nursesrent/database/repository"
	entitlementRepo "nursesrent/database/repository/entitlement"
	"nursesrent/models"
)

type entitlements struct{ *Store }

// Entitlements returns the transactional store view.
func (s *Store) Entitlements() entitlementRepo.Store { return entitlements{s} }

func (e entitlements) ConfirmBooking(_ context.Context, booking *models.Booking, bookingRequestID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkFault("ConfirmBooking"); err != nil {
		return err
	}
	for _, existing := range e.bookings {
		if existing.PaymentID == booking.PaymentID || existing.CheckoutSessionID == booking.CheckoutSessionID {
			return fmt.Errorf("insert booking for payment %s: %w", booking.PaymentID, repository.ErrDuplicate)
		}
	}
	prop, ok := e.properties[booking.Property]
	if !ok {
		return fmt.Errorf("property %s: %w", booking.Property, repository.ErrNotFound)
	}
	if !prop.IsAvailable {
		return fmt.Errorf("property %s is no longer available: %w", booking.Property, repository.ErrConflict)
	}

	now := time.Now()
	booking.CreatedAt, booking.UpdatedAt = now, now
	cp := *booking
	e.bookings[booking.ID] = &cp
	prop.IsAvailable = false
	prop.UpdatedAt = now
	if bookingRequestID != "" {
		delete(e.requests, bookingRequestID)
	}
	e.transitionLocked(booking.CheckoutSessionID, models.CheckoutInitiated, models.CheckoutCompleted)
	return nil
}

func (e entitlements) ReplaceSubscription(_ context.Context, sub *models.Subscription, sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkFault("ReplaceSubscription"); err != nil {
		return err
	}
	owner, ok := e.profile(sub.CustomerRole, sub.UserID)
	if !ok {
		return fmt.Errorf("owner %s of subscription: %w", sub.UserID, repository.ErrNotFound)
	}
	for id, current := range e.subscriptions {
		if current.UserID != sub.UserID {
			continue
		}
		if current.SubscriptionID == sub.SubscriptionID {
			return fmt.Errorf("subscription %s: %w", sub.SubscriptionID, repository.ErrDuplicate)
		}
		delete(e.subscriptions, id)
	}

	now := time.Now()
	sub.CreatedAt = now
	cp := *sub
	e.subscriptions[sub.ID] = &cp
	subID := sub.ID
	owner.IsSubscriber = true
	owner.Subscription = &subID
	owner.UpdatedAt = now
	e.transitionLocked(sessionID, models.CheckoutInitiated, models.CheckoutCompleted)
	return nil
}

func (e entitlements) RevokeSubscription(_ context.Context, externalID string) (*models.Subscription, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkFault("RevokeSubscription"); err != nil {
		return nil, err
	}
	for id, sub := range e.subscriptions {
		if sub.SubscriptionID != externalID {
			continue
		}
		delete(e.subscriptions, id)
		if owner, ok := e.profile(sub.CustomerRole, sub.UserID); ok && owner.Subscription != nil && *owner.Subscription == sub.ID {
			owner.IsSubscriber = false
			owner.Subscription = nil
			owner.UpdatedAt = time.Now()
		}
		cp := *sub
		return &cp, nil
	}
	return nil, fmt.Errorf("subscription %s: %w", externalID, repository.ErrNotFound)
}

func (e entitlements) CheckIn(_ context.Context, bookingID, propertyID string, checkIn, checkOut time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkFault("CheckIn"); err != nil {
		return err
	}
	booking, ok := e.bookings[bookingID]
	if !ok || booking.Status != models.BookingPending {
		return fmt.Errorf("pending booking %s: %w", bookingID, repository.ErrNotFound)
	}
	now := time.Now()
	in, out := checkIn, checkOut
	booking.Status = models.BookingCheckedIn
	booking.CheckInDate, booking.CheckOutDate = &in, &out
	booking.UpdatedAt = now
	if prop, ok := e.properties[propertyID]; ok {
		prop.AvailableFrom = &out
		prop.UpdatedAt = now
	}
	return nil
}

func (e entitlements) CheckOut(_ context.Context, bookingID, propertyID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkFault("CheckOut"); err != nil {
		return err
	}
	booking, ok := e.bookings[bookingID]
	if !ok || booking.Status != models.BookingCheckedIn {
		return fmt.Errorf("checked-in booking %s: %w", bookingID, repository.ErrNotFound)
	}
	now := time.Now()
	booking.Status = models.BookingCheckedOut
	booking.UpdatedAt = now
	if prop, ok := e.properties[propertyID]; ok {
		prop.IsAvailable = true
		prop.AvailableFrom = nil
		prop.UpdatedAt = now
	}
	return nil
}

func (e entitlements) PurgeHost(_ context.Context, hostID string) (*entitlementRepo.PurgeResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkFault("PurgeHost"); err != nil {
		return nil, err
	}
	if _, ok := e.hosts[hostID]; !ok {
		return nil, fmt.Errorf("host %s: %w", hostID, repository.ErrNotFound)
	}

	result := &entitlementRepo.PurgeResult{}
	for id, req := range e.requests {
		if req.Host == hostID {
			delete(e.requests, id)
			result.BookingRequests++
		}
	}
	for id, prop := range e.properties {
		if prop.Host == hostID {
			delete(e.properties, id)
			result.Properties++
		}
	}
	for id, sub := range e.subscriptions {
		if sub.UserID == hostID {
			delete(e.subscriptions, id)
			result.Subscriptions++
		}
	}
	delete(e.hosts, hostID)
	return result, nil
}
