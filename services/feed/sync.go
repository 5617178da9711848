package feed

import (
	"context"
	"fmt"
	"time"

	"maisonette/models"
	"maisonette/services/calendar"
	"maisonette/services/ical"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultFeedService) Sync(ctx context.Context, unitID, feedID string) ([]models.SyncResult, error) {
	feeds, err := s.Feeds.List(ctx, models.FeedFilter{UnitID: unitID, FeedID: feedID, ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("feed: list active feeds: %w", err)
	}

	results := make([]models.SyncResult, 0, len(feeds))
	for _, f := range feeds {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		result := s.syncOne(ctx, f)
		if result.Error != "" {
			s.Logger.Warn("calendar feed sync failed",
				zap.String("feedID", f.ID), zap.String("unitID", f.UnitID), zap.String("error", result.Error))
		} else {
			s.Logger.Info("calendar feed synced",
				zap.String("feedID", f.ID), zap.String("unitID", f.UnitID),
				zap.Int("events", result.EventsFound), zap.Int("blocks", result.BlocksCreated))
		}
		results = append(results, result)
	}
	return results, nil
}

// syncOne replaces the blocks of one feed with its current future events.
func (s *DefaultFeedService) syncOne(ctx context.Context, f models.CalendarFeed) models.SyncResult {
	result := models.SyncResult{FeedID: f.ID, FeedName: f.Name, UnitID: f.UnitID}

	// Step 1: Fetch and parse.
	content, err := s.Fetcher.Fetch(ctx, f.URL)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	events := ical.Parse(content, f.ID)
	result.EventsFound = len(events)

	// Step 2: Convert upcoming events into blocks.
	now := s.now().UTC()
	blocks := buildBlocks(f, events, now)

	// Step 3: Replace under the unit lock so bookings never interleave
	// with a half-replaced set.
	var created int
	err = calendar.WithUnitLock(ctx, s.Locker, f.UnitID, func(ctx context.Context) error {
		n, err := s.Blocks.ReplaceFeedBlocks(ctx, f.ID, blocks)
		created = n
		return err
	})
	if err != nil {
		result.Error = fmt.Sprintf("store blocks: %v", err)
		return result
	}
	result.BlocksCreated = created

	// Step 4: Remember when this feed was last imported.
	if err := s.Feeds.RecordSync(ctx, f.ID, now, created); err != nil {
		s.Logger.Warn("failed to record feed sync", zap.String("feedID", f.ID), zap.Error(err))
	}
	return result
}

func buildBlocks(f models.CalendarFeed, events []models.FeedEvent, now time.Time) []models.DateBlock {
	today := now.Format(models.DateLayout)
	source := ical.DetectSource(f.Name, f.URL)

	blocks := make([]models.DateBlock, 0, len(events))
	for _, ev := range events {
		if ev.End < today || !ev.DateRange.Valid() {
			continue
		}
		reason := ev.Label
		if reason == "" {
			reason = "Reservation " + f.Name
		}
		blocks = append(blocks, models.DateBlock{
			ID:        uuid.NewString(),
			UnitID:    f.UnitID,
			DateRange: ev.DateRange,
			Reason:    reason,
			Source:    source,
			FeedID:    f.ID,
			EventUID:  ev.UID,
			CreatedAt: now,
		})
	}
	return blocks
}
