package ledger

import (
	"context"
	"time"
)

// Ledger is the external payment provider. It owns money movement; every reconciliation
// decision is made against objects fetched through it.
type Ledger interface {
	CreateCustomer(ctx context.Context, in CustomerInput) (string, error)
	CreateConnectedAccount(ctx context.Context, in AccountInput) (string, error)
	GetPrice(ctx context.Context, id string) (*Price, error)
	CreatePrice(ctx context.Context, in PriceInput) (*Price, error)
	CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*Session, error)
	// GetCheckoutSession returns the session with its line items, payment intent and latest charge.
	GetCheckoutSession(ctx context.Context, id string) (*Session, error)
	GetSubscription(ctx context.Context, id string) (*Subscription, error)
	GetPaymentMethod(ctx context.Context, id string) (*PaymentMethod, error)
	CancelSubscription(ctx context.Context, id string) error
}

const (
	ModePayment      = "payment"
	ModeSubscription = "subscription"

	SessionStatusComplete = "complete"
	SessionStatusExpired  = "expired"

	PaymentStatusPaid          = "paid"
	PaymentStatusNotRequired   = "no_payment_required"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusTrialing = "trialing"
)

// Metadata keys embedded in checkout sessions.
const (
	MetaPropertyID       = "property_id"
	MetaHostID           = "host_id"
	MetaNurseID          = "nurse_id"
	MetaBookingRequestID = "booking_request_id"
	MetaUserID           = "user_id"
	MetaRole             = "role"
)

type CustomerInput struct {
	Email  string
	Name   string
	UserID string
}

type AccountInput struct {
	Email     string
	Country   string
	UserID    string
	TOSIP     string
	TOSAccept time.Time
}

type PriceInput struct {
	ProductName string
	UnitAmount  int64
	Currency    string
	// Interval is empty for one-time prices.
	Interval string
	Metadata map[string]string
}

type Price struct {
	ID         string
	ProductID  string
	UnitAmount int64
	Currency   string
	Interval   string
	Active     bool
}

// InlineItem describes a product priced at checkout time.
type InlineItem struct {
	Name            string
	Description     string
	Images          []string
	UnitAmount      int64
	Currency        string
	ProductMetadata map[string]string
}

type CheckoutInput struct {
	Mode              string
	CustomerID        string
	ClientReferenceID string
	SuccessURL        string
	CancelURL         string
	// Exactly one of PriceID and Item is set.
	PriceID            string
	Item               *InlineItem
	ApplicationFee     int64
	DestinationAccount string
	ReceiptEmail       string
	Metadata           map[string]string
}

type LineItem struct {
	PriceID         string
	ProductID       string
	AmountTotal     int64
	Currency        string
	ProductMetadata map[string]string
}

type Session struct {
	ID                string
	URL               string
	Mode              string
	Status            string
	PaymentStatus     string
	ClientReferenceID string
	CustomerID        string
	CustomerEmail     string
	SubscriptionID    string
	PaymentIntentID   string
	ApplicationFee    int64
	AmountTotal       int64
	Currency          string
	Metadata          map[string]string
	LineItems         []LineItem
	Charge            *Charge
}

// Paid reports whether the session completed with its payment captured.
func (s *Session) Paid() bool {
	return s.Status == SessionStatusComplete &&
		(s.PaymentStatus == PaymentStatusPaid || s.PaymentStatus == PaymentStatusNotRequired)
}

type Charge struct {
	ID              string
	Amount          int64
	Currency        string
	PaymentMethodID string
	Created         time.Time
}

type Subscription struct {
	ID                     string
	Status                 string
	CustomerID             string
	PriceID                string
	ProductID              string
	UnitAmount             int64
	Currency               string
	LatestInvoiceID        string
	DefaultPaymentMethodID string
	CurrentPeriodStart     time.Time
	CurrentPeriodEnd       time.Time
}

type PaymentMethod struct {
	ID       string
	Type     string
	Email    string
	Name     string
	Brand    string
	Country  string
	ExpMonth int64
	ExpYear  int64
	Funding  string
	Last4    string
	Created  time.Time
}
