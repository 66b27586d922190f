package models

import "time"

// PaymentMethodSnapshot is the card detail copied from the ledger when a subscription is reconciled.
type PaymentMethodSnapshot struct {
	Email    string    `bson:"email,omitempty" json:"email,omitempty"`
	Name     string    `bson:"name,omitempty" json:"name,omitempty"`
	Brand    string    `bson:"brand,omitempty" json:"brand,omitempty"`
	Country  string    `bson:"country,omitempty" json:"country,omitempty"`
	ExpMonth int64     `bson:"expMonth,omitempty" json:"expMonth,omitempty"`
	ExpYear  int64     `bson:"expYear,omitempty" json:"expYear,omitempty"`
	Funding  string    `bson:"funding,omitempty" json:"funding,omitempty"`
	Last4    string    `bson:"last4,omitempty" json:"last4,omitempty"`
	Created  time.Time `bson:"created,omitempty" json:"created,omitempty"`
	Type     string    `bson:"type,omitempty" json:"type,omitempty"`
}

// Subscription is a user's current paid entitlement. There is at most one per user.
type Subscription struct {
	ID                  string                `bson:"id" json:"id"`
	SubscriptionID      string                `bson:"subscriptionId" json:"subscriptionId"`
	SubscriptionPlanID  string                `bson:"subscriptionPlanId" json:"subscriptionPlanId"`
	ProductID           string                `bson:"productId" json:"productId"`
	SubscriptionStatus  string                `bson:"subscriptionStatus" json:"subscriptionStatus"`
	PriceAmount         float64               `bson:"priceAmount" json:"priceAmount"`
	Currency            string                `bson:"currency" json:"currency"`
	CustomerID          string                `bson:"customerId" json:"customerId"`
	UserID              string                `bson:"userId" json:"userId"`
	CustomerRole        Role                  `bson:"customerRole" json:"customerRole"`
	LatestInvoiceID     string                `bson:"latestInvoiceId,omitempty" json:"latestInvoiceId,omitempty"`
	PaymentMethod       PaymentMethodSnapshot `bson:"paymentMethod" json:"paymentMethod"`
	OneTimeSubscription bool                  `bson:"oneTimeSubscription" json:"oneTimeSubscription"`
	StartedAt           time.Time             `bson:"startedAt" json:"startedAt"`
	EndsAt              time.Time             `bson:"endsAt" json:"endsAt"`
	CreatedAt           time.Time             `bson:"createdAt" json:"createdAt"`
}

// OneTimeSubscriptionEnd is the end date recorded for pay-once entitlements.
var OneTimeSubscriptionEnd = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
