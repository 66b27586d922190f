package booking

import (
	"context"
	"errors"

	"nursesrent/database/repository"
	"nursesrent/models"
	"nursesrent/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultBookingService) CreateRequest(ctx context.Context, nurseID string, in RequestInput) (*models.BookingRequest, error) {
	nurse, err := s.Users.GetNurse(ctx, nurseID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("No nurse found with that ID")
	}
	if err != nil {
		return nil, utils.Internal("failed to load nurse", err)
	}
	if !nurse.IsSubscriber {
		return nil, utils.Forbidden("You need an active subscription to request a booking")
	}

	property, err := s.Properties.GetByID(ctx, in.PropertyID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("No property found with that ID")
	}
	if err != nil {
		return nil, utils.Internal("failed to load property", err)
	}
	if !property.IsAvailable || !property.IsActive {
		return nil, utils.Forbidden("This property is not available for booking")
	}

	_, err = s.Requests.FindOpen(ctx, nurseID, property.ID)
	if err == nil {
		return nil, utils.Conflict("You already have an open request for this property")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, utils.Internal("failed to check open requests", err)
	}

	request := &models.BookingRequest{
		ID:            uuid.New().String(),
		TravelingFrom: in.TravelingFrom,
		TravelingTo:   in.TravelingTo,
		Message:       in.Message,
		Status:        models.RequestPending,
		Nurse:         nurseID,
		Host:          property.Host,
		Property:      property.ID,
	}
	if err := s.Requests.Create(ctx, request); err != nil {
		return nil, utils.Internal("failed to create booking request", err)
	}
	s.Logger.Info("Booking request created",
		zap.String("requestID", request.ID), zap.String("propertyID", property.ID), zap.String("nurseID", nurseID))
	return request, nil
}

func (s *DefaultBookingService) loadRequest(ctx context.Context, id string) (*models.BookingRequest, error) {
	request, err := s.Requests.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("No booking request found with that ID")
	}
	if err != nil {
		return nil, utils.Internal("failed to load booking request", err)
	}
	return request, nil
}

func (s *DefaultBookingService) nurseRequest(ctx context.Context, nurseID, requestID string) (*models.BookingRequest, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Nurse != nurseID {
		return nil, utils.Forbidden("This booking request does not belong to you")
	}
	return request, nil
}

// hostRequest loads a request addressed to hostID. The host must own the property and
// hold a subscription.
func (s *DefaultBookingService) hostRequest(ctx context.Context, hostID, requestID string) (*models.BookingRequest, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	property, err := s.Properties.GetByID(ctx, request.Property)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("The requested property no longer exists")
	}
	if err != nil {
		return nil, utils.Internal("failed to load property", err)
	}
	if property.Host != hostID {
		return nil, utils.Forbidden("You do not own this property")
	}

	host, err := s.Users.GetHost(ctx, hostID)
	if err != nil {
		return nil, utils.Internal("failed to load host", err)
	}
	if !host.IsSubscriber {
		return nil, utils.Forbidden("You need an active subscription to manage booking requests")
	}
	return request, nil
}

func (s *DefaultBookingService) UpdateRequestMessage(ctx context.Context, nurseID, requestID, message string) (*models.BookingRequest, error) {
	request, err := s.nurseRequest(ctx, nurseID, requestID)
	if err != nil {
		return nil, err
	}
	err = s.Requests.UpdateMessage(ctx, request.ID, message)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.Conflict("Only pending requests can be edited")
	}
	if err != nil {
		return nil, utils.Internal("failed to update booking request", err)
	}
	return s.loadRequest(ctx, request.ID)
}

func (s *DefaultBookingService) DeleteRequest(ctx context.Context, nurseID, requestID string) error {
	request, err := s.nurseRequest(ctx, nurseID, requestID)
	if err != nil {
		return err
	}
	if err := s.Requests.Delete(ctx, request.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return utils.Internal("failed to delete booking request", err)
	}
	return nil
}

func (s *DefaultBookingService) ListRequests(ctx context.Context, role models.Role, userID string) ([]models.BookingRequest, error) {
	requests, err := s.Requests.ListForUser(ctx, role, userID)
	if err != nil {
		return nil, utils.Internal("failed to list booking requests", err)
	}
	if requests == nil {
		requests = []models.BookingRequest{}
	}
	return requests, nil
}

func (s *DefaultBookingService) ApproveRequest(ctx context.Context, hostID, requestID string) (*models.BookingRequest, error) {
	return s.decide(ctx, hostID, requestID, models.RequestApproved)
}

func (s *DefaultBookingService) RejectRequest(ctx context.Context, hostID, requestID string) (*models.BookingRequest, error) {
	return s.decide(ctx, hostID, requestID, models.RequestRejected)
}

func (s *DefaultBookingService) decide(ctx context.Context, hostID, requestID string, to models.BookingRequestStatus) (*models.BookingRequest, error) {
	request, err := s.hostRequest(ctx, hostID, requestID)
	if err != nil {
		return nil, err
	}
	err = s.Requests.UpdateStatus(ctx, request.ID, []models.BookingRequestStatus{models.RequestPending}, to)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.Conflict("Only pending requests can be approved or rejected")
	}
	if err != nil {
		return nil, utils.Internal("failed to update booking request", err)
	}
	s.Logger.Info("Booking request decided", zap.String("requestID", request.ID), zap.String("status", string(to)))
	return s.loadRequest(ctx, request.ID)
}

func (s *DefaultBookingService) SetRequestArchived(ctx context.Context, hostID, requestID string, archived bool) (*models.BookingRequest, error) {
	request, err := s.hostRequest(ctx, hostID, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.Requests.SetArchived(ctx, request.ID, archived); err != nil {
		return nil, utils.Internal("failed to update booking request", err)
	}
	return s.loadRequest(ctx, request.ID)
}
