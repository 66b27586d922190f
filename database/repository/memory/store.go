// Package memory keeps every collection in process. It backs STORE_DRIVER=memory and the
// service tests, and enforces the same unique constraints as the Mongo indexes.
package memory

import (
	"sync"

	"nursesrent/models"
)

// Store holds all collections behind a single lock, so every method is atomic.
type Store struct {
	mu sync.Mutex

	hosts         map[string]*models.Host
	nurses        map[string]*models.Nurse
	properties    map[string]*models.Property
	requests      map[string]*models.BookingRequest
	bookings      map[string]*models.Booking
	subscriptions map[string]*models.Subscription
	pricing       map[models.Role]*models.SubscriptionPricing
	sessions      map[string]*models.CheckoutSession
	events        map[string]*models.WebhookEvent

	fault func(op string) error
}

func New() *Store {
	return &Store{
		hosts:         make(map[string]*models.Host),
		nurses:        make(map[string]*models.Nurse),
		properties:    make(map[string]*models.Property),
		requests:      make(map[string]*models.BookingRequest),
		bookings:      make(map[string]*models.Booking),
		subscriptions: make(map[string]*models.Subscription),
		pricing:       make(map[models.Role]*models.SubscriptionPricing),
		sessions:      make(map[string]*models.CheckoutSession),
		events:        make(map[string]*models.WebhookEvent),
	}
}

// SetFault installs a hook consulted before every entitlement transition. A non-nil
// return aborts the transition with that error.
func (s *Store) SetFault(fn func(op string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fn
}

func (s *Store) checkFault(op string) error {
	if s.fault == nil {
		return nil
	}
	return s.fault(op)
}

// Counts reports collection sizes.
func (s *Store) Counts() (bookings, subscriptions, requests int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings), len(s.subscriptions), len(s.requests)
}
