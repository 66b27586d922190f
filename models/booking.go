package models

import "time"

type BookingStatus string

const (
	BookingPending    BookingStatus = "Pending"
	BookingCheckedIn  BookingStatus = "Checked in"
	BookingCheckedOut BookingStatus = "Checked out"
)

// Booking is a confirmed rental, created once per paid checkout session.
type Booking struct {
	ID                 string        `bson:"id" json:"id"`
	Price              float64       `bson:"price" json:"price"`
	ApplicationFee     float64       `bson:"applicationFee" json:"applicationFee"`
	TotalAmount        float64       `bson:"totalAmount" json:"totalAmount"`
	Currency           string        `bson:"currency" json:"currency"`
	CheckInDate        *time.Time    `bson:"checkInDate" json:"checkInDate"`
	CheckOutDate       *time.Time    `bson:"checkOutDate" json:"checkOutDate"`
	Status             BookingStatus `bson:"status" json:"status"`
	PaymentID          string        `bson:"paymentId" json:"paymentId"`
	CheckoutSessionID  string        `bson:"checkoutSessionId" json:"checkoutSessionId"`
	IsArchivedForHost  bool          `bson:"isArchivedForHost" json:"isArchivedForHost"`
	IsArchivedForNurse bool          `bson:"isArchivedForNurse" json:"isArchivedForNurse"`
	Nurse              string        `bson:"nurse" json:"nurse"`
	Host               string        `bson:"host" json:"host"`
	Property           string        `bson:"property" json:"property"`
	CreatedAt          time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// SetAmounts fills the major-unit money fields from a price and fee in minor units.
// TotalAmount is converted from the minor-unit sum.
func (b *Booking) SetAmounts(priceMinor, feeMinor int64) {
	b.Price = float64(priceMinor) / 100
	b.ApplicationFee = float64(feeMinor) / 100
	b.TotalAmount = float64(priceMinor+feeMinor) / 100
}

// ArchivedFor returns the archive flag owned by role.
func (b *Booking) ArchivedFor(role Role) bool {
	if role == RoleHost {
		return b.IsArchivedForHost
	}
	return b.IsArchivedForNurse
}
