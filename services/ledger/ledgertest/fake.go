// Package ledgertest provides an in-memory Ledger for tests.
package ledgertest

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"nursesrent/services/ledger"

	"github.com/stripe/stripe-go/v76"
)

// Fake is a scripted Ledger. Objects are seeded with the Put helpers and failures are
// queued per operation with FailNext.
type Fake struct {
	mu             sync.Mutex
	seq            int
	sessions       map[string]*ledger.Session
	subscriptions  map[string]*ledger.Subscription
	paymentMethods map[string]*ledger.PaymentMethod
	prices         map[string]*ledger.Price
	failures       map[string][]error
	calls          map[string]int

	Checkouts []ledger.CheckoutInput
	Cancelled []string
}

func New() *Fake {
	return &Fake{
		sessions:       make(map[string]*ledger.Session),
		subscriptions:  make(map[string]*ledger.Subscription),
		paymentMethods: make(map[string]*ledger.PaymentMethod),
		prices:         make(map[string]*ledger.Price),
		failures:       make(map[string][]error),
		calls:          make(map[string]int),
	}
}

// NotFound is the error the provider returns for a missing object.
func NotFound(id string) error {
	return &stripe.Error{
		HTTPStatusCode: http.StatusNotFound,
		Code:           stripe.ErrorCodeResourceMissing,
		Msg:            fmt.Sprintf("No such object: '%s'", id),
	}
}

// Unavailable is a retryable provider failure.
func Unavailable() error {
	return &stripe.Error{HTTPStatusCode: http.StatusServiceUnavailable, Msg: "service unavailable"}
}

func (f *Fake) PutSession(s *ledger.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.sessions[s.ID] = &cp
}

func (f *Fake) PutSubscription(s *ledger.Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.subscriptions[s.ID] = &cp
}

func (f *Fake) PutPaymentMethod(pm *ledger.PaymentMethod) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *pm
	f.paymentMethods[pm.ID] = &cp
}

func (f *Fake) PutPrice(p *ledger.Price) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.prices[p.ID] = &cp
}

// FailNext makes the next len(errs) calls of op return errs in order.
func (f *Fake) FailNext(op string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = append(f.failures[op], errs...)
}

// Calls returns how many times op was invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *Fake) enter(op string) error {
	f.calls[op]++
	if queued := f.failures[op]; len(queued) > 0 {
		f.failures[op] = queued[1:]
		return queued[0]
	}
	return nil
}

func (f *Fake) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s_test_%d", prefix, f.seq)
}

func (f *Fake) CreateCustomer(_ context.Context, _ ledger.CustomerInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateCustomer"); err != nil {
		return "", err
	}
	return f.nextID("cus"), nil
}

func (f *Fake) CreateConnectedAccount(_ context.Context, _ ledger.AccountInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateConnectedAccount"); err != nil {
		return "", err
	}
	return f.nextID("acct"), nil
}

func (f *Fake) GetPrice(_ context.Context, id string) (*ledger.Price, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetPrice"); err != nil {
		return nil, err
	}
	p, ok := f.prices[id]
	if !ok {
		return nil, NotFound(id)
	}
	cp := *p
	return &cp, nil
}

func (f *Fake) CreatePrice(_ context.Context, in ledger.PriceInput) (*ledger.Price, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreatePrice"); err != nil {
		return nil, err
	}
	p := &ledger.Price{
		ID:         f.nextID("price"),
		ProductID:  f.nextID("prod"),
		UnitAmount: in.UnitAmount,
		Currency:   in.Currency,
		Interval:   in.Interval,
		Active:     true,
	}
	f.prices[p.ID] = p
	cp := *p
	return &cp, nil
}

func (f *Fake) CreateCheckoutSession(_ context.Context, in ledger.CheckoutInput) (*ledger.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateCheckoutSession"); err != nil {
		return nil, err
	}
	s := &ledger.Session{
		ID:                f.nextID("cs"),
		Mode:              in.Mode,
		Status:            "open",
		PaymentStatus:     "unpaid",
		ClientReferenceID: in.ClientReferenceID,
		CustomerID:        in.CustomerID,
		CustomerEmail:     in.ReceiptEmail,
		ApplicationFee:    in.ApplicationFee,
		Metadata:          in.Metadata,
	}
	s.URL = "https://checkout.test/" + s.ID
	item := ledger.LineItem{PriceID: in.PriceID}
	if in.Item != nil {
		item.AmountTotal = in.Item.UnitAmount
		item.Currency = in.Item.Currency
		item.ProductMetadata = in.Item.ProductMetadata
	} else if p, ok := f.prices[in.PriceID]; ok {
		item.ProductID = p.ProductID
		item.AmountTotal = p.UnitAmount
		item.Currency = p.Currency
	}
	s.AmountTotal = item.AmountTotal
	s.Currency = item.Currency
	s.LineItems = []ledger.LineItem{item}
	f.sessions[s.ID] = s
	f.Checkouts = append(f.Checkouts, in)

	cp := *s
	return &cp, nil
}

func (f *Fake) GetCheckoutSession(_ context.Context, id string) (*ledger.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetCheckoutSession"); err != nil {
		return nil, err
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, NotFound(id)
	}
	cp := *s
	return &cp, nil
}

func (f *Fake) GetSubscription(_ context.Context, id string) (*ledger.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetSubscription"); err != nil {
		return nil, err
	}
	s, ok := f.subscriptions[id]
	if !ok {
		return nil, NotFound(id)
	}
	cp := *s
	return &cp, nil
}

func (f *Fake) GetPaymentMethod(_ context.Context, id string) (*ledger.PaymentMethod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetPaymentMethod"); err != nil {
		return nil, err
	}
	pm, ok := f.paymentMethods[id]
	if !ok {
		return nil, NotFound(id)
	}
	cp := *pm
	return &cp, nil
}

func (f *Fake) CancelSubscription(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CancelSubscription"); err != nil {
		return err
	}
	s, ok := f.subscriptions[id]
	if !ok {
		return NotFound(id)
	}
	s.Status = ledger.SubscriptionStatusCanceled
	f.Cancelled = append(f.Cancelled, id)
	return nil
}

// Complete simulates the customer paying for session id. Payment sessions get a payment
// intent and a charge; subscription sessions get an active subscription. Both reference a
// stored card payment method.
func (f *Fake) Complete(id string) *ledger.Session {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[id]
	if !ok {
		return nil
	}
	s.Status = ledger.SessionStatusComplete
	s.PaymentStatus = ledger.PaymentStatusPaid
	s.CustomerEmail = "payer@example.com"

	pm := &ledger.PaymentMethod{
		ID: f.nextID("pm"), Type: "card", Email: "payer@example.com", Name: "Card Holder",
		Brand: "visa", Country: "US", ExpMonth: 12, ExpYear: 2030, Funding: "credit", Last4: "4242",
		Created: time.Now().UTC(),
	}
	f.paymentMethods[pm.ID] = pm

	now := time.Now().UTC().Truncate(time.Second)
	switch s.Mode {
	case ledger.ModeSubscription:
		sub := &ledger.Subscription{
			ID:                     f.nextID("sub"),
			Status:                 ledger.SubscriptionStatusActive,
			CustomerID:             s.CustomerID,
			Currency:               s.Currency,
			LatestInvoiceID:        f.nextID("in"),
			DefaultPaymentMethodID: pm.ID,
			CurrentPeriodStart:     now,
			CurrentPeriodEnd:       now.AddDate(0, 1, 0),
		}
		if len(s.LineItems) > 0 {
			sub.PriceID = s.LineItems[0].PriceID
			sub.ProductID = s.LineItems[0].ProductID
			sub.UnitAmount = s.LineItems[0].AmountTotal
		}
		f.subscriptions[sub.ID] = sub
		s.SubscriptionID = sub.ID
	default:
		s.PaymentIntentID = f.nextID("pi")
		s.Charge = &ledger.Charge{
			ID:              f.nextID("ch"),
			Amount:          s.AmountTotal,
			Currency:        s.Currency,
			PaymentMethodID: pm.ID,
			Created:         now,
		}
	}
	cp := *s
	return &cp
}

// Session returns the stored session.
func (f *Fake) Session(id string) (*ledger.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, false
	}
	cp := *s
	return &cp, true
}

var _ ledger.Ledger = (*Fake)(nil)
