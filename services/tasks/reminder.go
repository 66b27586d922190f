package tasks

import (
	"context"
	"encoding/json"
	"time"

	"nursesrent/models"
	"nursesrent/services/notification"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeBookingConfirmed      = "notify:booking-confirmed"
	TypeBookingRejected       = "notify:booking-rejected"
	TypeSubscriptionActivated = "notify:subscription-activated"
	TypeSubscriptionEnded     = "notify:subscription-ended"
	TypeCheckOutReminder      = "reminder:check-out"
)

// NewNotificationTask wraps payload into a task of taskType. A non-zero fireAt delays it.
func NewNotificationTask(taskType string, payload models.NotificationPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(taskType, b)
	opts := []asynq.Option{asynq.MaxRetry(5)}
	if !fireAt.IsZero() {
		opts = append(opts, asynq.ProcessAt(fireAt))
	}
	return task, opts, nil
}

// Scheduler hands notifications to background delivery.
type Scheduler interface {
	Schedule(ctx context.Context, taskType string, payload models.NotificationPayload, fireAt time.Time) error
}

// AsynqScheduler enqueues tasks on the Redis-backed queue served by the worker.
type AsynqScheduler struct {
	client *asynq.Client
}

func NewAsynqScheduler(opt asynq.RedisClientOpt) *AsynqScheduler {
	return &AsynqScheduler{client: asynq.NewClient(opt)}
}

func (s *AsynqScheduler) Schedule(ctx context.Context, taskType string, payload models.NotificationPayload, fireAt time.Time) error {
	task, opts, err := NewNotificationTask(taskType, payload, fireAt)
	if err != nil {
		return err
	}
	_, err = s.client.EnqueueContext(ctx, task, opts...)
	return err
}

func (s *AsynqScheduler) Close() error {
	return s.client.Close()
}

// InlineScheduler delivers due notifications immediately and drops future ones.
// It is used when the task queue is disabled.
type InlineScheduler struct {
	Notifier notification.NotificationService
	Logger   *zap.Logger
}

func (s *InlineScheduler) Schedule(ctx context.Context, taskType string, payload models.NotificationPayload, fireAt time.Time) error {
	if !fireAt.IsZero() && fireAt.After(time.Now()) {
		s.Logger.Debug("Task queue disabled, dropping scheduled notification",
			zap.String("type", taskType), zap.Time("fireAt", fireAt))
		return nil
	}
	return s.Notifier.Notify(ctx, payload)
}
