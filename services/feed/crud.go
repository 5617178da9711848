package feed

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"maisonette/database/repository"
	"maisonette/models"
	"maisonette/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func notFoundOr(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return utils.NewNotFoundError(what + " not found")
	}
	return fmt.Errorf("feed: %s: %w", what, err)
}

// checkURL accepts absolute http and https URLs only.
func checkURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return utils.NewValidationError("feed url must be an http or https address")
	}
	return nil
}

// ListFeeds returns all feeds, or those of one unit.
func (s *DefaultFeedService) ListFeeds(ctx context.Context, unitID string) ([]models.CalendarFeed, error) {
	feeds, err := s.Feeds.List(ctx, models.FeedFilter{UnitID: unitID})
	if err != nil {
		return nil, fmt.Errorf("feed: list: %w", err)
	}
	return feeds, nil
}

func (s *DefaultFeedService) GetFeed(ctx context.Context, id string) (*models.CalendarFeed, error) {
	f, err := s.Feeds.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "feed")
	}
	return f, nil
}

func (s *DefaultFeedService) CreateFeed(ctx context.Context, in models.FeedInput) (*models.CalendarFeed, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	if err := checkURL(in.URL); err != nil {
		return nil, err
	}
	if _, err := s.Units.GetByID(ctx, in.UnitID); err != nil {
		return nil, notFoundOr(err, "unit")
	}

	now := time.Now().UTC()
	f := &models.CalendarFeed{
		ID:        uuid.NewString(),
		UnitID:    in.UnitID,
		Name:      in.Name,
		URL:       strings.TrimSpace(in.URL),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Active != nil {
		f.Active = *in.Active
	}
	if err := s.Feeds.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("feed: create: %w", err)
	}
	s.Logger.Info("calendar feed added", zap.String("feedID", f.ID), zap.String("unitID", f.UnitID), zap.String("name", f.Name))
	return f, nil
}

func (s *DefaultFeedService) UpdateFeed(ctx context.Context, id string, upd models.FeedUpdate) (*models.CalendarFeed, error) {
	if err := utils.ValidateStruct(upd); err != nil {
		return nil, err
	}
	f, err := s.Feeds.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "feed")
	}
	if upd.Name != nil {
		f.Name = *upd.Name
	}
	if upd.URL != nil {
		if err := checkURL(*upd.URL); err != nil {
			return nil, err
		}
		f.URL = strings.TrimSpace(*upd.URL)
	}
	if upd.Active != nil {
		f.Active = *upd.Active
	}
	f.UpdatedAt = time.Now().UTC()
	if err := s.Feeds.Update(ctx, f); err != nil {
		return nil, notFoundOr(err, "feed")
	}
	return f, nil
}

// DeleteFeed removes the feed and every block it imported.
func (s *DefaultFeedService) DeleteFeed(ctx context.Context, id string) error {
	f, err := s.Feeds.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "feed")
	}
	removed, err := s.Blocks.DeleteByFeed(ctx, id)
	if err != nil {
		return fmt.Errorf("feed: delete blocks: %w", err)
	}
	if err := s.Feeds.Delete(ctx, id); err != nil {
		return notFoundOr(err, "feed")
	}
	s.Logger.Info("calendar feed deleted",
		zap.String("feedID", id), zap.String("unitID", f.UnitID), zap.Int64("blocksRemoved", removed))
	return nil
}
