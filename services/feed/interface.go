package feed

import (
	"context"
	"time"

	blockedRepo "maisonette/database/repository/blocked"
	feedRepo "maisonette/database/repository/feed"
	unitRepo "maisonette/database/repository/unit"
	"maisonette/models"
	"maisonette/services/calendar"
	"maisonette/services/ical"

	"go.uber.org/zap"
)

// FeedService manages calendar subscriptions, imports them as date
// blocks and exports unit calendars.
type FeedService interface {
	ListFeeds(ctx context.Context, unitID string) ([]models.CalendarFeed, error)
	GetFeed(ctx context.Context, id string) (*models.CalendarFeed, error)
	CreateFeed(ctx context.Context, in models.FeedInput) (*models.CalendarFeed, error)
	UpdateFeed(ctx context.Context, id string, upd models.FeedUpdate) (*models.CalendarFeed, error)
	DeleteFeed(ctx context.Context, id string) error

	// Sync imports every active feed matching the optional unit and feed
	// ids. One feed failing does not stop the others.
	Sync(ctx context.Context, unitID, feedID string) ([]models.SyncResult, error)

	ExportCalendar(ctx context.Context, unitID string) (string, error)
	ExportURL(ctx context.Context, unitID string) (string, error)
}

// DefaultFeedService is the production implementation.
type DefaultFeedService struct {
	Units   unitRepo.UnitRepository
	Feeds   feedRepo.FeedRepository
	Blocks  blockedRepo.BlockRepository
	Store   *calendar.Store
	Locker  calendar.UnitLocker
	Fetcher ical.Fetcher
	Logger  *zap.Logger

	PublicBaseURL string
	ProductID     string
	UIDDomain     string

	// Now is the clock used to skip past events. Defaults to time.Now.
	Now func() time.Time
}

var _ FeedService = (*DefaultFeedService)(nil)

func (s *DefaultFeedService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
