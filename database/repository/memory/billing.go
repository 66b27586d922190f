package memory

import (
	"context"
	"fmt"
	"time"

	"nursesrent/database/repository"
	checkoutSessionRepo "nursesrent/database/repository/checkoutsession"
	pricingRepo "nursesrent/database/repository/pricing"
	subscriptionRepo "nursesrent/database/repository/subscription"
	webhookEventRepo "nursesrent/database/repository/webhookevent"
	"nursesrent/models"

	"github.com/google/uuid"
)

type subscriptions struct{ *Store }

// Subscriptions returns the subscription repository view.
func (s *Store) Subscriptions() subscriptionRepo.SubscriptionRepository { return subscriptions{s} }

func (s subscriptions) GetByUserID(_ context.Context, userID string) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subscriptions {
		if sub.UserID == userID {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("subscription of user %s: %w", userID, repository.ErrNotFound)
}

func (s subscriptions) GetByExternalID(_ context.Context, externalID string) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subscriptions {
		if sub.SubscriptionID == externalID {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("subscription %s: %w", externalID, repository.ErrNotFound)
}

type pricing struct{ *Store }

// Pricing returns the pricing repository view.
func (s *Store) Pricing() pricingRepo.PricingRepository { return pricing{s} }

func (p pricing) GetByRole(_ context.Context, role models.Role) (*models.SubscriptionPricing, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pr, ok := p.pricing[role]
	if !ok {
		return nil, fmt.Errorf("pricing for %s: %w", role, repository.ErrNotFound)
	}
	cp := *pr
	return &cp, nil
}

func (p pricing) EnsureDefault(_ context.Context, pr *models.SubscriptionPricing) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.pricing[pr.UserRole]; ok {
		return nil
	}
	if pr.ID == "" {
		pr.ID = uuid.New().String()
	}
	pr.UpdatedAt = time.Now()
	cp := *pr
	p.pricing[pr.UserRole] = &cp
	return nil
}

func (p pricing) SetLedgerIDs(_ context.Context, role models.Role, planID, priceID, productID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pr, ok := p.pricing[role]
	if !ok {
		return fmt.Errorf("pricing for %s: %w", role, repository.ErrNotFound)
	}
	pr.StripePlanID, pr.StripePriceID, pr.StripeProductID = planID, priceID, productID
	pr.UpdatedAt = time.Now()
	return nil
}

type sessions struct{ *Store }

// CheckoutSessions returns the checkout session repository view.
func (s *Store) CheckoutSessions() checkoutSessionRepo.CheckoutSessionRepository { return sessions{s} }

func (s sessions) Create(_ context.Context, session *models.CheckoutSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.SessionID]; ok {
		return fmt.Errorf("failed to record checkout session: %w", repository.ErrDuplicate)
	}
	now := time.Now()
	session.CreatedAt, session.UpdatedAt = now, now
	if session.Status == "" {
		session.Status = models.CheckoutInitiated
	}
	cp := *session
	s.sessions[session.SessionID] = &cp
	return nil
}

func (s sessions) GetBySessionID(_ context.Context, sessionID string) (*models.CheckoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("checkout session %s: %w", sessionID, repository.ErrNotFound)
	}
	cp := *session
	return &cp, nil
}

func (s sessions) Transition(_ context.Context, sessionID string, from, to models.CheckoutStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.transitionLocked(sessionID, from, to), nil
}

func (s *Store) transitionLocked(sessionID string, from, to models.CheckoutStatus) bool {
	session, ok := s.sessions[sessionID]
	if !ok || session.Status != from {
		return false
	}
	session.Status = to
	session.UpdatedAt = time.Now()
	return true
}

type events struct{ *Store }

// WebhookEvents returns the processed-event log view.
func (s *Store) WebhookEvents() webhookEventRepo.WebhookEventRepository { return events{s} }

func (e events) Seen(_ context.Context, eventID string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.events[eventID]
	return ok, nil
}

func (e events) Record(_ context.Context, event *models.WebhookEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.events[event.EventID]; ok {
		return nil
	}
	if event.ProcessedAt.IsZero() {
		event.ProcessedAt = time.Now()
	}
	cp := *event
	e.events[event.EventID] = &cp
	return nil
}
