package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"nursesrent/database/repository"
	bookingRepo "nursesrent/database/repository/booking"
	bookingRequestRepo "nursesrent/database/repository/bookingrequest"
	propertyRepo "nursesrent/database/repository/property"
	"nursesrent/models"
)

type properties struct{ *Store }

// Properties returns the property repository view.
func (s *Store) Properties() propertyRepo.PropertyRepository { return properties{s} }

func (p properties) Create(_ context.Context, property *models.Property) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.properties[property.ID]; ok {
		return fmt.Errorf("failed to create property: %w", repository.ErrDuplicate)
	}
	now := time.Now()
	property.CreatedAt, property.UpdatedAt = now, now
	cp := *property
	p.properties[property.ID] = &cp
	return nil
}

func (p properties) GetByID(_ context.Context, id string) (*models.Property, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prop, ok := p.properties[id]
	if !ok {
		return nil, fmt.Errorf("property %s: %w", id, repository.ErrNotFound)
	}
	cp := *prop
	return &cp, nil
}

func (p properties) ListByHost(_ context.Context, hostID string) ([]models.Property, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []models.Property
	for _, prop := range p.properties {
		if prop.Host == hostID {
			out = append(out, *prop)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type requests struct{ *Store }

// BookingRequests returns the booking request repository view.
func (s *Store) BookingRequests() bookingRequestRepo.BookingRequestRepository { return requests{s} }

func (r requests) Create(_ context.Context, request *models.BookingRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.requests[request.ID]; ok {
		return fmt.Errorf("failed to create booking request: %w", repository.ErrDuplicate)
	}
	now := time.Now()
	request.CreatedAt, request.UpdatedAt = now, now
	cp := *request
	r.requests[request.ID] = &cp
	return nil
}

func (r requests) GetByID(_ context.Context, id string) (*models.BookingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, fmt.Errorf("booking request %s: %w", id, repository.ErrNotFound)
	}
	cp := *req
	return &cp, nil
}

func (r requests) FindOpen(_ context.Context, nurseID, propertyID string) (*models.BookingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, req := range r.requests {
		open := req.Status == models.RequestPending || req.Status == models.RequestApproved
		if open && req.Nurse == nurseID && req.Property == propertyID {
			cp := *req
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("open booking request: %w", repository.ErrNotFound)
}

func (r requests) ListForUser(_ context.Context, role models.Role, userID string) ([]models.BookingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.BookingRequest
	for _, req := range r.requests {
		if (role == models.RoleHost && req.Host == userID) || (role == models.RoleNurse && req.Nurse == userID) {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r requests) UpdateStatus(_ context.Context, id string, from []models.BookingRequestStatus, to models.BookingRequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	for _, status := range from {
		if req.Status == status {
			req.Status = to
			req.UpdatedAt = time.Now()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r requests) UpdateMessage(_ context.Context, id, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok || req.Status != models.RequestPending {
		return repository.ErrNotFound
	}
	req.Message = message
	req.UpdatedAt = time.Now()
	return nil
}

func (r requests) SetArchived(_ context.Context, id string, archived bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	req.IsArchived = archived
	req.UpdatedAt = time.Now()
	return nil
}

func (r requests) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.requests[id]; !ok {
		return fmt.Errorf("booking request %s: %w", id, repository.ErrNotFound)
	}
	delete(r.requests, id)
	return nil
}

type bookings struct{ *Store }

// Bookings returns the booking repository view.
func (s *Store) Bookings() bookingRepo.BookingRepository { return bookings{s} }

func (b bookings) GetByID(_ context.Context, id string) (*models.Booking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	booking, ok := b.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, repository.ErrNotFound)
	}
	cp := *booking
	return &cp, nil
}

func (b bookings) GetByPaymentID(_ context.Context, paymentID string) (*models.Booking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, booking := range b.bookings {
		if booking.PaymentID == paymentID {
			cp := *booking
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("booking with payment %s: %w", paymentID, repository.ErrNotFound)
}

func (b bookings) ListForUser(_ context.Context, role models.Role, userID string) ([]models.Booking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []models.Booking
	for _, booking := range b.bookings {
		if (role == models.RoleHost && booking.Host == userID) || (role == models.RoleNurse && booking.Nurse == userID) {
			out = append(out, *booking)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (b bookings) SetArchived(_ context.Context, id string, side models.Role, archived bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	booking, ok := b.bookings[id]
	if !ok {
		return fmt.Errorf("booking %s: %w", id, repository.ErrNotFound)
	}
	if side == models.RoleHost {
		booking.IsArchivedForHost = archived
	} else {
		booking.IsArchivedForNurse = archived
	}
	booking.UpdatedAt = time.Now()
	return nil
}
