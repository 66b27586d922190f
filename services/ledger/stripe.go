package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// StripeLedger implements Ledger on the Stripe API.
type StripeLedger struct {
	client *client.API
	logger *zap.Logger
}

// NewStripeLedger creates a ledger client bound to apiKey.
func NewStripeLedger(apiKey string, logger *zap.Logger) *StripeLedger {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &StripeLedger{client: sc, logger: logger}
}

func (l *StripeLedger) CreateCustomer(ctx context.Context, in CustomerInput) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(in.Email),
		Name:  stripe.String(in.Name),
	}
	params.AddMetadata(MetaUserID, in.UserID)
	params.Context = ctx
	setIdempotencyKey(ctx, &params.Params)

	cus, err := l.client.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: failed to create customer: %w", err)
	}
	l.logger.Info("Stripe customer created", zap.String("customerID", cus.ID), zap.String("userID", in.UserID))
	return cus.ID, nil
}

func (l *StripeLedger) CreateConnectedAccount(ctx context.Context, in AccountInput) (string, error) {
	params := &stripe.AccountParams{
		Type:         stripe.String(string(stripe.AccountTypeCustom)),
		Country:      stripe.String(in.Country),
		Email:        stripe.String(in.Email),
		BusinessType: stripe.String(string(stripe.AccountBusinessTypeIndividual)),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
		TOSAcceptance: &stripe.AccountTOSAcceptanceParams{
			Date: stripe.Int64(in.TOSAccept.Unix()),
			IP:   stripe.String(in.TOSIP),
		},
	}
	params.AddMetadata(MetaUserID, in.UserID)
	params.Context = ctx
	setIdempotencyKey(ctx, &params.Params)

	acct, err := l.client.Accounts.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: failed to create connected account: %w", err)
	}
	l.logger.Info("Stripe connected account created", zap.String("accountID", acct.ID), zap.String("userID", in.UserID))
	return acct.ID, nil
}

func setIdempotencyKey(ctx context.Context, p *stripe.Params) {
	if key := IdempotencyKeyFrom(ctx); key != "" {
		p.IdempotencyKey = stripe.String(key)
	}
}

func priceView(p *stripe.Price) *Price {
	view := &Price{
		ID:         p.ID,
		UnitAmount: p.UnitAmount,
		Currency:   string(p.Currency),
		Active:     p.Active,
	}
	if p.Product != nil {
		view.ProductID = p.Product.ID
	}
	if p.Recurring != nil {
		view.Interval = string(p.Recurring.Interval)
	}
	return view
}

func (l *StripeLedger) GetPrice(ctx context.Context, id string) (*Price, error) {
	params := &stripe.PriceParams{}
	params.Context = ctx

	p, err := l.client.Prices.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to retrieve price %s: %w", id, err)
	}
	return priceView(p), nil
}

func (l *StripeLedger) CreatePrice(ctx context.Context, in PriceInput) (*Price, error) {
	params := &stripe.PriceParams{
		Currency:   stripe.String(in.Currency),
		UnitAmount: stripe.Int64(in.UnitAmount),
		ProductData: &stripe.PriceProductDataParams{
			Name: stripe.String(in.ProductName),
		},
	}
	if in.Interval != "" {
		params.Recurring = &stripe.PriceRecurringParams{Interval: stripe.String(in.Interval)}
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	setIdempotencyKey(ctx, &params.Params)

	p, err := l.client.Prices.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to create price: %w", err)
	}
	l.logger.Info("Stripe price created", zap.String("priceID", p.ID), zap.String("product", in.ProductName))
	return priceView(p), nil
}

func (l *StripeLedger) CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(in.Mode),
		SuccessURL:         stripe.String(in.SuccessURL),
		CancelURL:          stripe.String(in.CancelURL),
		ClientReferenceID:  stripe.String(in.ClientReferenceID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	if in.CustomerID != "" {
		params.Customer = stripe.String(in.CustomerID)
	}

	item := &stripe.CheckoutSessionLineItemParams{Quantity: stripe.Int64(1)}
	if in.Item != nil {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:     stripe.String(in.Item.Name),
			Metadata: in.Item.ProductMetadata,
		}
		if in.Item.Description != "" {
			product.Description = stripe.String(in.Item.Description)
		}
		if len(in.Item.Images) > 0 {
			product.Images = stripe.StringSlice(in.Item.Images)
		}
		item.PriceData = &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:    stripe.String(in.Item.Currency),
			UnitAmount:  stripe.Int64(in.Item.UnitAmount),
			ProductData: product,
		}
	} else {
		item.Price = stripe.String(in.PriceID)
	}
	params.LineItems = []*stripe.CheckoutSessionLineItemParams{item}

	switch in.Mode {
	case ModePayment:
		intent := &stripe.CheckoutSessionPaymentIntentDataParams{Metadata: in.Metadata}
		if in.ApplicationFee > 0 {
			intent.ApplicationFeeAmount = stripe.Int64(in.ApplicationFee)
		}
		if in.DestinationAccount != "" {
			intent.TransferData = &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(in.DestinationAccount),
			}
		}
		if in.ReceiptEmail != "" {
			intent.ReceiptEmail = stripe.String(in.ReceiptEmail)
		}
		params.PaymentIntentData = intent
	case ModeSubscription:
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{Metadata: in.Metadata}
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	setIdempotencyKey(ctx, &params.Params)

	s, err := l.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}
	return sessionView(s), nil
}

func (l *StripeLedger) GetCheckoutSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("customer")
	params.AddExpand("payment_intent.latest_charge")
	params.AddExpand("line_items.data.price.product")
	params.Context = ctx

	s, err := l.client.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to retrieve checkout session %s: %w", id, err)
	}
	return sessionView(s), nil
}

func sessionView(s *stripe.CheckoutSession) *Session {
	view := &Session{
		ID:                s.ID,
		URL:               s.URL,
		Mode:              string(s.Mode),
		Status:            string(s.Status),
		PaymentStatus:     string(s.PaymentStatus),
		ClientReferenceID: s.ClientReferenceID,
		AmountTotal:       s.AmountTotal,
		Currency:          string(s.Currency),
		Metadata:          s.Metadata,
	}
	if s.Customer != nil {
		view.CustomerID = s.Customer.ID
		view.CustomerEmail = s.Customer.Email
	}
	if s.CustomerDetails != nil && s.CustomerDetails.Email != "" {
		view.CustomerEmail = s.CustomerDetails.Email
	}
	if s.Subscription != nil {
		view.SubscriptionID = s.Subscription.ID
	}
	if pi := s.PaymentIntent; pi != nil {
		view.PaymentIntentID = pi.ID
		view.ApplicationFee = pi.ApplicationFeeAmount
		if ch := pi.LatestCharge; ch != nil {
			view.Charge = &Charge{
				ID:              ch.ID,
				Amount:          ch.Amount,
				Currency:        string(ch.Currency),
				PaymentMethodID: ch.PaymentMethod,
				Created:         time.Unix(ch.Created, 0).UTC(),
			}
		}
	}
	if s.LineItems != nil {
		for _, li := range s.LineItems.Data {
			item := LineItem{AmountTotal: li.AmountTotal, Currency: string(li.Currency)}
			if li.Price != nil {
				item.PriceID = li.Price.ID
				if li.Price.Product != nil {
					item.ProductID = li.Price.Product.ID
					item.ProductMetadata = li.Price.Product.Metadata
				}
			}
			view.LineItems = append(view.LineItems, item)
		}
	}
	return view
}

func (l *StripeLedger) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := l.client.Subscriptions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to retrieve subscription %s: %w", id, err)
	}

	view := &Subscription{
		ID:                 sub.ID,
		Status:             string(sub.Status),
		Currency:           string(sub.Currency),
		CurrentPeriodStart: time.Unix(sub.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:   time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
	}
	if sub.Customer != nil {
		view.CustomerID = sub.Customer.ID
	}
	if sub.LatestInvoice != nil {
		view.LatestInvoiceID = sub.LatestInvoice.ID
	}
	if sub.DefaultPaymentMethod != nil {
		view.DefaultPaymentMethodID = sub.DefaultPaymentMethod.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		price := sub.Items.Data[0].Price
		view.PriceID = price.ID
		view.UnitAmount = price.UnitAmount
		if price.Product != nil {
			view.ProductID = price.Product.ID
		}
	}
	return view, nil
}

func (l *StripeLedger) GetPaymentMethod(ctx context.Context, id string) (*PaymentMethod, error) {
	params := &stripe.PaymentMethodParams{}
	params.Context = ctx

	pm, err := l.client.PaymentMethods.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to retrieve payment method %s: %w", id, err)
	}

	view := &PaymentMethod{
		ID:      pm.ID,
		Type:    string(pm.Type),
		Created: time.Unix(pm.Created, 0).UTC(),
	}
	if pm.BillingDetails != nil {
		view.Email = pm.BillingDetails.Email
		view.Name = pm.BillingDetails.Name
	}
	if card := pm.Card; card != nil {
		view.Brand = string(card.Brand)
		view.Country = card.Country
		view.ExpMonth = card.ExpMonth
		view.ExpYear = card.ExpYear
		view.Funding = string(card.Funding)
		view.Last4 = card.Last4
	}
	return view, nil
}

func (l *StripeLedger) CancelSubscription(ctx context.Context, id string) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	if _, err := l.client.Subscriptions.Cancel(id, params); err != nil {
		return fmt.Errorf("stripe: failed to cancel subscription %s: %w", id, err)
	}
	l.logger.Info("Stripe subscription cancelled", zap.String("subscriptionID", id))
	return nil
}
