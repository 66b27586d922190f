package booking

import (
	"context"
	"errors"
	"fmt"

	"nursesrent/database/repository"
	"nursesrent/models"
	"nursesrent/services/tasks"
	"nursesrent/utils"

	"go.uber.org/zap"
)

func (s *DefaultBookingService) ListBookings(ctx context.Context, role models.Role, userID string) ([]models.Booking, error) {
	bookings, err := s.Bookings.ListForUser(ctx, role, userID)
	if err != nil {
		return nil, utils.Internal("failed to list bookings", err)
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

func (s *DefaultBookingService) loadBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.Bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("No booking found with that ID")
	}
	if err != nil {
		return nil, utils.Internal("failed to load booking", err)
	}
	return booking, nil
}

// hostBooking loads a booking and its property, checking that hostID owns the property.
func (s *DefaultBookingService) hostBooking(ctx context.Context, hostID, bookingID string) (*models.Booking, *models.Property, error) {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	property, err := s.Properties.GetByID(ctx, booking.Property)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, utils.NotFound("The booked property no longer exists")
	}
	if err != nil {
		return nil, nil, utils.Internal("failed to load property", err)
	}
	if property.Host != hostID {
		return nil, nil, utils.Forbidden("You do not own this property")
	}
	return booking, property, nil
}

// CheckIn starts the stay today. The stay lasts the property's minimum duration in months.
func (s *DefaultBookingService) CheckIn(ctx context.Context, hostID, bookingID string) (*models.Booking, error) {
	booking, property, err := s.hostBooking(ctx, hostID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingPending {
		return nil, utils.Conflict("This booking has already been checked in")
	}

	months := property.MinimumDuration
	if months < 1 {
		months = 1
	}
	checkIn := s.now().UTC()
	checkOut := AddMonths(checkIn, months)

	err = s.Entitlements.CheckIn(ctx, booking.ID, property.ID, checkIn, checkOut)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.Conflict("This booking has already been checked in")
	}
	if err != nil {
		return nil, utils.Internal("failed to check in", err)
	}

	if s.Scheduler != nil {
		payload := models.NotificationPayload{
			Target: models.RoleHost, UserID: booking.Host, Booking: booking.ID,
			Title: "Check-out due", Body: fmt.Sprintf("The stay at %s ends today.", property.Title),
		}
		if err := s.Scheduler.Schedule(ctx, tasks.TypeCheckOutReminder, payload, checkOut); err != nil {
			s.Logger.Error("Failed to schedule check-out reminder", zap.String("bookingID", booking.ID), zap.Error(err))
		}
	}
	return s.loadBooking(ctx, booking.ID)
}

func (s *DefaultBookingService) CheckOut(ctx context.Context, hostID, bookingID string) (*models.Booking, error) {
	booking, property, err := s.hostBooking(ctx, hostID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingCheckedIn {
		return nil, utils.Conflict("Only checked-in bookings can be checked out")
	}

	err = s.Entitlements.CheckOut(ctx, booking.ID, property.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.Conflict("Only checked-in bookings can be checked out")
	}
	if err != nil {
		return nil, utils.Internal("failed to check out", err)
	}
	return s.loadBooking(ctx, booking.ID)
}

// SetBookingArchived flips the archive flag of the caller's side only.
func (s *DefaultBookingService) SetBookingArchived(ctx context.Context, role models.Role, userID, bookingID string, archived bool) (*models.Booking, error) {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	owner := booking.Nurse
	if role == models.RoleHost {
		owner = booking.Host
	}
	if owner != userID {
		return nil, utils.Forbidden("This booking does not belong to you")
	}
	if err := s.Bookings.SetArchived(ctx, booking.ID, role, archived); err != nil {
		return nil, utils.Internal("failed to update booking", err)
	}
	return s.loadBooking(ctx, booking.ID)
}
