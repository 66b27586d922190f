package property

import (
	"context"
	"errors"
	"strings"
	"time"

	"nursesrent/database/repository"
	propertyRepo "nursesrent/database/repository/property"
	"nursesrent/models"
	"nursesrent/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PropertyService interface {
	Create(ctx context.Context, hostID string, in Input) (*models.Property, error)
	Get(ctx context.Context, id string) (*models.Property, error)
	ListByHost(ctx context.Context, hostID string) ([]models.Property, error)
}

// Input is a new listing as submitted by a host.
type Input struct {
	Title           string     `json:"title" binding:"required"`
	Description     string     `json:"description"`
	ImageCover      string     `json:"imageCover"`
	Price           float64    `json:"price" binding:"required"`
	MinimumDuration int        `json:"minimumDuration"`
	AvailableFrom   *time.Time `json:"availableFrom"`
	AvailableTo     *time.Time `json:"availableTo"`
}

type DefaultPropertyService struct {
	Repo   propertyRepo.PropertyRepository
	Logger *zap.Logger
}

func NewPropertyService(repo propertyRepo.PropertyRepository, logger *zap.Logger) *DefaultPropertyService {
	return &DefaultPropertyService{Repo: repo, Logger: logger}
}

func (s *DefaultPropertyService) Create(ctx context.Context, hostID string, in Input) (*models.Property, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, utils.Validation("A property must have a title")
	}
	if in.Price <= 0 {
		return nil, utils.Validation("A property must have a positive price")
	}
	duration := in.MinimumDuration
	if duration == 0 {
		duration = 1
	}
	if duration < 1 || duration > 3 {
		return nil, utils.Validation("Minimum duration must be between 1 and 3 months")
	}
	if in.AvailableFrom != nil && in.AvailableTo != nil && in.AvailableTo.Before(*in.AvailableFrom) {
		return nil, utils.Validation("availableTo must not be before availableFrom")
	}

	property := &models.Property{
		ID:              uuid.New().String(),
		Title:           title,
		Description:     in.Description,
		ImageCover:      in.ImageCover,
		Price:           in.Price,
		MinimumDuration: duration,
		AvailableFrom:   in.AvailableFrom,
		AvailableTo:     in.AvailableTo,
		IsAvailable:     true,
		IsActive:        true,
		Host:            hostID,
	}
	if err := s.Repo.Create(ctx, property); err != nil {
		return nil, utils.Internal("failed to create property", err)
	}
	s.Logger.Info("Property listed", zap.String("propertyID", property.ID), zap.String("hostID", hostID))
	return property, nil
}

func (s *DefaultPropertyService) Get(ctx context.Context, id string) (*models.Property, error) {
	property, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("No property found with that ID")
	}
	if err != nil {
		return nil, utils.Internal("failed to load property", err)
	}
	return property, nil
}

func (s *DefaultPropertyService) ListByHost(ctx context.Context, hostID string) ([]models.Property, error) {
	properties, err := s.Repo.ListByHost(ctx, hostID)
	if err != nil {
		return nil, utils.Internal("failed to list properties", err)
	}
	if properties == nil {
		properties = []models.Property{}
	}
	return properties, nil
}
