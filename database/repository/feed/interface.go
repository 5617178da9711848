package feedRepo

import (
	"context"
	"time"

	"maisonette/models"
)

// FeedRepository persists calendar feed subscriptions.
type FeedRepository interface {
	Create(ctx context.Context, feed *models.CalendarFeed) error
	GetByID(ctx context.Context, id string) (*models.CalendarFeed, error)
	List(ctx context.Context, filter models.FeedFilter) ([]models.CalendarFeed, error)
	Update(ctx context.Context, feed *models.CalendarFeed) error
	Delete(ctx context.Context, id string) error
	// RecordSync stores the time and event count of the last successful sync.
	RecordSync(ctx context.Context, id string, at time.Time, imported int) error
}
