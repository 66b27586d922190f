package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"nursesrent/models"
	"nursesrent/services/notification"
	"nursesrent/services/tasks"

	"github.com/hibiken/asynq"
)

// InitNotificationWorker runs the async worker in background and returns it for shutdown.
func InitNotificationWorker(redisOpts asynq.RedisClientOpt, notifSvc notification.NotificationService) *asynq.Server {
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	handler := handleNotificationTask(notifSvc)
	mux.HandleFunc(tasks.TypeBookingConfirmed, handler)
	mux.HandleFunc(tasks.TypeBookingRejected, handler)
	mux.HandleFunc(tasks.TypeSubscriptionActivated, handler)
	mux.HandleFunc(tasks.TypeSubscriptionEnded, handler)
	mux.HandleFunc(tasks.TypeCheckOutReminder, handler)

	go func() {
		log.Println("[NotificationWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			log.Printf("[NotificationWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)
			if attempts == maxAttempts {
				log.Println("[NotificationWorker] Max retry attempts reached, notifications disabled.")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

func handleNotificationTask(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.NotificationPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			return fmt.Errorf("invalid %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
		}
		if !p.Target.Valid() {
			log.Printf("[NotificationHandler] Unknown target type: %s", p.Target)
			return nil
		}
		if err := notifSvc.Notify(ctx, p); err != nil {
			log.Printf("[NotificationHandler] Failed to send %s to %s: %v", task.Type(), p.UserID, err)
			return err
		}
		return nil
	}
}
