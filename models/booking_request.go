package models

import "time"

type BookingRequestStatus string

const (
	RequestPending  BookingRequestStatus = "Pending"
	RequestApproved BookingRequestStatus = "Approved"
	RequestRejected BookingRequestStatus = "Rejected"
)

// BookingRequest is the negotiation a nurse opens before paying for a property.
type BookingRequest struct {
	ID            string               `bson:"id" json:"id"`
	TravelingFrom string               `bson:"travelingFrom" json:"travelingFrom"`
	TravelingTo   string               `bson:"travelingTo" json:"travelingTo"`
	Message       string               `bson:"message" json:"message"`
	Status        BookingRequestStatus `bson:"status" json:"status"`
	IsArchived    bool                 `bson:"isArchived" json:"isArchived"`
	Nurse         string               `bson:"nurse" json:"nurse"`
	Host          string               `bson:"host" json:"host"`
	Property      string               `bson:"property" json:"property"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}
