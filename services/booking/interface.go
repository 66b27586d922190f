package booking

import (
	"context"
	"time"

	bookingRepo "nursesrent/database/repository/booking"
	bookingRequestRepo "nursesrent/database/repository/bookingrequest"
	entitlementRepo "nursesrent/database/repository/entitlement"
	propertyRepo "nursesrent/database/repository/property"
	userRepo "nursesrent/database/repository/user"
	"nursesrent/models"
	"nursesrent/services/tasks"

	"go.uber.org/zap"
)

// BookingService drives bookings and booking requests after (and before) payment.
type BookingService interface {
	ListBookings(ctx context.Context, role models.Role, userID string) ([]models.Booking, error)
	CheckIn(ctx context.Context, hostID, bookingID string) (*models.Booking, error)
	CheckOut(ctx context.Context, hostID, bookingID string) (*models.Booking, error)
	SetBookingArchived(ctx context.Context, role models.Role, userID, bookingID string, archived bool) (*models.Booking, error)

	CreateRequest(ctx context.Context, nurseID string, in RequestInput) (*models.BookingRequest, error)
	UpdateRequestMessage(ctx context.Context, nurseID, requestID, message string) (*models.BookingRequest, error)
	DeleteRequest(ctx context.Context, nurseID, requestID string) error
	ListRequests(ctx context.Context, role models.Role, userID string) ([]models.BookingRequest, error)
	ApproveRequest(ctx context.Context, hostID, requestID string) (*models.BookingRequest, error)
	RejectRequest(ctx context.Context, hostID, requestID string) (*models.BookingRequest, error)
	SetRequestArchived(ctx context.Context, hostID, requestID string, archived bool) (*models.BookingRequest, error)
}

// RequestInput is what a nurse submits to open a booking request.
type RequestInput struct {
	PropertyID    string `json:"propertyId" binding:"required"`
	TravelingFrom string `json:"travelingFrom"`
	TravelingTo   string `json:"travelingTo"`
	Message       string `json:"message"`
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Users        userRepo.UserRepository
	Properties   propertyRepo.PropertyRepository
	Requests     bookingRequestRepo.BookingRequestRepository
	Bookings     bookingRepo.BookingRepository
	Entitlements entitlementRepo.Store
	Scheduler    tasks.Scheduler
	Logger       *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

var _ BookingService = (*DefaultBookingService)(nil)
