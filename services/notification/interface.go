package notification

import (
	"context"
	"fmt"

	"nursesrent/models"

	"go.uber.org/zap"
)

// NotificationService delivers a notification to one account.
type NotificationService interface {
	Notify(ctx context.Context, payload models.NotificationPayload) error
}

// LogNotificationService writes notifications to the structured log. Email and push
// delivery plug in behind the same interface.
type LogNotificationService struct {
	logger *zap.Logger
}

func NewLogNotificationService(logger *zap.Logger) *LogNotificationService {
	return &LogNotificationService{logger: logger}
}

func (s *LogNotificationService) Notify(_ context.Context, p models.NotificationPayload) error {
	if p.UserID == "" {
		return fmt.Errorf("notification %q has no recipient", p.Title)
	}
	s.logger.Info("Notification",
		zap.String("target", string(p.Target)),
		zap.String("userID", p.UserID),
		zap.String("title", p.Title),
		zap.String("body", p.Body),
		zap.String("booking", p.Booking))
	return nil
}
