package models

import "time"

const (
	PricingOneTime   = "one_time"
	PricingRecurring = "recurring"
)

// SubscriptionPricing is the plan offered to one role, mirrored to a ledger price.
type SubscriptionPricing struct {
	ID              string    `bson:"id" json:"id"`
	UserRole        Role      `bson:"userRole" json:"userRole"`
	Amount          float64   `bson:"amount" json:"amount"`
	Interval        string    `bson:"interval,omitempty" json:"interval,omitempty"`
	Currency        string    `bson:"currency" json:"currency"`
	ProductName     string    `bson:"productName" json:"productName"`
	Recurring       string    `bson:"recurring" json:"recurring"`
	StripePlanID    string    `bson:"stripePlanId,omitempty" json:"stripePlanId,omitempty"`
	StripePriceID   string    `bson:"stripePriceId,omitempty" json:"stripePriceId,omitempty"`
	StripeProductID string    `bson:"stripeProductId,omitempty" json:"stripeProductId,omitempty"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsRecurring reports whether the plan bills on an interval.
func (p *SubscriptionPricing) IsRecurring() bool {
	return p.Recurring == PricingRecurring
}
