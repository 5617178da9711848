package unit

import (
	"context"
	"fmt"
	"time"

	"maisonette/models"
	"maisonette/services/calendar"
	"maisonette/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultUnitService) ListBlocks(ctx context.Context, unitID string) ([]models.DateBlock, error) {
	blocks, err := s.Blocks.ListByUnit(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("unit: list blocks: %w", err)
	}
	return blocks, nil
}

// CreateBlock closes dates by hand. It takes the same unit lock as
// bookings and refuses dates held by a pending or confirmed booking.
func (s *DefaultUnitService) CreateBlock(ctx context.Context, in models.BlockInput) (*models.DateBlock, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	r, err := models.NewDateRange(in.Start, in.End)
	if err != nil {
		return nil, rangeError(err)
	}
	if _, err := s.Units.GetByID(ctx, in.UnitID); err != nil {
		return nil, notFoundOr(err, "unit")
	}

	block := &models.DateBlock{
		ID:        uuid.NewString(),
		UnitID:    in.UnitID,
		DateRange: r,
		Reason:    in.Reason,
		Source:    models.BlockSourceManual,
		CreatedAt: time.Now().UTC(),
	}
	err = calendar.WithUnitLock(ctx, s.Locker, in.UnitID, func(ctx context.Context) error {
		if _, err := s.Units.GetByID(ctx, in.UnitID); err != nil {
			return notFoundOr(err, "unit")
		}
		bookings, err := s.Bookings.FindOverlapping(ctx, in.UnitID, r, "")
		if err != nil {
			return fmt.Errorf("unit: check bookings: %w", err)
		}
		if len(bookings) > 0 {
			return utils.NewConflictError(fmt.Sprintf("dates overlap booking %s", bookings[0].Code))
		}
		if err := s.Blocks.Create(ctx, block); err != nil {
			return fmt.Errorf("unit: create block: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("date block created", zap.String("unitID", block.UnitID), zap.String("range", r.String()))
	return block, nil
}

func (s *DefaultUnitService) DeleteBlock(ctx context.Context, id string) error {
	if err := s.Blocks.Delete(ctx, id); err != nil {
		return notFoundOr(err, "block")
	}
	return nil
}

// Calendar returns what a calendar view needs for one unit.
func (s *DefaultUnitService) Calendar(ctx context.Context, unitID string) (*models.UnitCalendar, error) {
	if _, err := s.Units.GetByID(ctx, unitID); err != nil {
		return nil, notFoundOr(err, "unit")
	}
	occ, err := s.Store.Unit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	periods, err := s.Rates.ListPeriods(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("unit: list periods: %w", err)
	}
	cal := &models.UnitCalendar{
		UnitID:      unitID,
		Bookings:    make([]models.BookedDates, 0, len(occ.Bookings)),
		Blocks:      make([]models.BlockedDates, 0, len(occ.Blocks)),
		RatePeriods: periods,
	}
	for _, b := range occ.Bookings {
		cal.Bookings = append(cal.Bookings, models.BookedDates{ID: b.ID, DateRange: b.DateRange, Status: b.Status})
	}
	for _, b := range occ.Blocks {
		cal.Blocks = append(cal.Blocks, models.BlockedDates{DateRange: b.DateRange, Source: b.Source})
	}
	return cal, nil
}
