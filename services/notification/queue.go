package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"maisonette/models"

	"github.com/hibiken/asynq"
)

// TypeBookingCreated is the asynq task type of booking notifications.
const TypeBookingCreated = "booking:created"

// NewBookingCreatedTask wraps a notification into a retriable task.
func NewBookingCreatedTask(n models.BookingNotification) (*asynq.Task, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBookingCreated, b, asynq.MaxRetry(5), asynq.Timeout(time.Minute)), nil
}

// Enqueuer is the part of *asynq.Client the queue notifier needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier hands notifications to the background worker, so slow
// mail or push delivery never holds up a booking request.
type QueueNotifier struct {
	Client Enqueuer
}

func (q *QueueNotifier) NotifyBookingCreated(ctx context.Context, n models.BookingNotification) error {
	task, err := NewBookingCreatedTask(n)
	if err != nil {
		return fmt.Errorf("build booking notification task: %w", err)
	}
	if _, err := q.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue booking notification: %w", err)
	}
	return nil
}

// HandleBookingCreated decodes a task and delivers it through notifier.
func HandleBookingCreated(notifier BookingNotifier) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var n models.BookingNotification
		if err := json.Unmarshal(task.Payload(), &n); err != nil {
			// A malformed payload will never succeed.
			return fmt.Errorf("invalid booking notification payload: %v: %w", err, asynq.SkipRetry)
		}
		return notifier.NotifyBookingCreated(ctx, n)
	}
}
