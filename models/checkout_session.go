package models

import "time"

type CheckoutStatus string

const (
	CheckoutInitiated CheckoutStatus = "Initiated"
	CheckoutCompleted CheckoutStatus = "Completed"
	CheckoutExpired   CheckoutStatus = "Expired"
)

// CheckoutSession records the correlation data of a ledger checkout session we created.
type CheckoutSession struct {
	SessionID        string         `bson:"sessionId" json:"sessionId"`
	Channel          WebhookChannel `bson:"channel" json:"channel"`
	Mode             string         `bson:"mode" json:"mode"`
	UserID           string         `bson:"userId" json:"userId"`
	Role             Role           `bson:"role" json:"role"`
	PropertyID       string         `bson:"propertyId,omitempty" json:"propertyId,omitempty"`
	HostID           string         `bson:"hostId,omitempty" json:"hostId,omitempty"`
	BookingRequestID string         `bson:"bookingRequestId,omitempty" json:"bookingRequestId,omitempty"`
	Status           CheckoutStatus `bson:"status" json:"status"`
	CreatedAt        time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time      `bson:"updatedAt" json:"updatedAt"`
}
