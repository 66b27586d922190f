package entitlementRepo

import (
	"context"
	"time"

	"nursesrent/models"
)

// Store applies the multi-document transitions that must be observed all at once.
type Store interface {
	// ConfirmBooking inserts the booking, marks its property unavailable, deletes the originating
	// request (when set) and completes the checkout session. ErrDuplicate means the booking
	// already exists for this payment. ErrConflict means the property was booked meanwhile.
	ConfirmBooking(ctx context.Context, booking *models.Booking, bookingRequestID string) error
	// ReplaceSubscription makes sub the only subscription of its user and flags the user as a
	// subscriber. ErrDuplicate means sub is already the user's current subscription.
	ReplaceSubscription(ctx context.Context, sub *models.Subscription, sessionID string) error
	// RevokeSubscription deletes the subscription with the given ledger id and clears the
	// owner's subscriber flags.
	RevokeSubscription(ctx context.Context, externalID string) (*models.Subscription, error)
	CheckIn(ctx context.Context, bookingID, propertyID string, checkIn, checkOut time.Time) error
	CheckOut(ctx context.Context, bookingID, propertyID string) error
	// PurgeHost deletes a host together with its properties, requests and subscription.
	PurgeHost(ctx context.Context, hostID string) (*PurgeResult, error)
}

// PurgeResult counts what PurgeHost removed.
type PurgeResult struct {
	Properties      int64 `json:"properties"`
	BookingRequests int64 `json:"bookingRequests"`
	Subscriptions   int64 `json:"subscriptions"`
}
