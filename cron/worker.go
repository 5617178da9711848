package cron

import (
	"context"
	"fmt"
	"time"

	"maisonette/services/notification"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NotificationWorker delivers queued booking notifications.
type NotificationWorker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

// NewNotificationWorker builds an asynq server that hands booking:created
// tasks to notifier.
func NewNotificationWorker(redisOpts asynq.RedisClientOpt, notifier notification.BookingNotifier, logger *zap.Logger) *NotificationWorker {
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logger.Warn("notification task failed",
					zap.String("type", task.Type()), zap.Int("retry", retried), zap.Int("maxRetry", maxRetry), zap.Error(err))
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeBookingCreated, notification.HandleBookingCreated(notifier))

	return &NotificationWorker{server: srv, mux: mux, logger: logger}
}

// Start launches the worker, retrying with a growing delay while Redis is
// unreachable.
func (w *NotificationWorker) Start(ctx context.Context) error {
	const maxAttempts = 5
	for attempt := 1; ; attempt++ {
		err := w.server.Start(w.mux)
		if err == nil {
			w.logger.Info("notification worker started")
			return nil
		}
		w.logger.Warn("notification worker failed to start", zap.Int("attempt", attempt), zap.Error(err))
		if attempt == maxAttempts {
			return fmt.Errorf("notification worker: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*2) * time.Second):
		}
	}
}

// Shutdown waits for in-flight tasks and stops the worker.
func (w *NotificationWorker) Shutdown() {
	w.server.Shutdown()
	w.logger.Info("notification worker stopped")
}
