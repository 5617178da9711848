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

func (s *DefaultUnitService) ListUnits(ctx context.Context, activeOnly bool) ([]models.Unit, error) {
	units, err := s.Units.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("unit: list: %w", err)
	}
	return units, nil
}

func (s *DefaultUnitService) GetUnit(ctx context.Context, id string) (*models.Unit, error) {
	u, err := s.Units.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "unit")
	}
	return u, nil
}

func (s *DefaultUnitService) CreateUnit(ctx context.Context, in models.UnitInput) (*models.Unit, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &models.Unit{ID: uuid.NewString(), Active: true, CreatedAt: now}
	applyInput(u, in, now)

	if err := s.Units.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("unit: create: %w", err)
	}
	s.Logger.Info("unit created", zap.String("unitID", u.ID), zap.String("name", u.Name))
	return u, nil
}

func (s *DefaultUnitService) UpdateUnit(ctx context.Context, id string, in models.UnitInput) (*models.Unit, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	u, err := s.Units.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "unit")
	}
	applyInput(u, in, time.Now().UTC())
	if err := s.Units.Update(ctx, u); err != nil {
		return nil, notFoundOr(err, "unit")
	}
	return u, nil
}

func applyInput(u *models.Unit, in models.UnitInput, now time.Time) {
	u.Name = in.Name
	u.Description = in.Description
	u.MaxOccupancy = in.MaxOccupancy
	u.BasePrice = in.BasePrice
	u.WeekendPrice = in.WeekendPrice
	u.MinimumStay = in.MinimumStay
	if in.Active != nil {
		u.Active = *in.Active
	}
	u.UpdatedAt = now
}

// DeleteUnit refuses while the unit still has pending or confirmed
// bookings, then removes its blocks, rates and feeds with it. The check and
// the deletes hold the unit lock that booking creation takes.
func (s *DefaultUnitService) DeleteUnit(ctx context.Context, id string) error {
	var feeds []models.CalendarFeed
	err := calendar.WithUnitLock(ctx, s.Locker, id, func(ctx context.Context) error {
		if _, err := s.Units.GetByID(ctx, id); err != nil {
			return notFoundOr(err, "unit")
		}
		active, err := s.Bookings.CountOccupying(ctx, id)
		if err != nil {
			return fmt.Errorf("unit: count bookings: %w", err)
		}
		if active > 0 {
			return utils.NewInvariantError(fmt.Sprintf("unit has %d active bookings", active))
		}

		if _, err := s.Blocks.DeleteByUnit(ctx, id); err != nil {
			return fmt.Errorf("unit: delete blocks: %w", err)
		}
		if err := s.Rates.DeleteByUnit(ctx, id); err != nil {
			return fmt.Errorf("unit: delete rates: %w", err)
		}
		feeds, err = s.Feeds.List(ctx, models.FeedFilter{UnitID: id})
		if err != nil {
			return fmt.Errorf("unit: list feeds: %w", err)
		}
		for _, f := range feeds {
			if err := s.Feeds.Delete(ctx, f.ID); err != nil {
				return fmt.Errorf("unit: delete feed %s: %w", f.ID, err)
			}
		}
		if err := s.Units.Delete(ctx, id); err != nil {
			return notFoundOr(err, "unit")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.Logger.Info("unit deleted", zap.String("unitID", id), zap.Int("feeds", len(feeds)))
	return nil
}

func (s *DefaultUnitService) GetPricing(ctx context.Context, unitID string) (*models.UnitPricing, error) {
	u, err := s.Units.GetByID(ctx, unitID)
	if err != nil {
		return nil, notFoundOr(err, "unit")
	}
	return pricingOf(u), nil
}

// UpdatePricing changes only the given fields. A weekend price of zero
// removes the weekend override.
func (s *DefaultUnitService) UpdatePricing(ctx context.Context, unitID string, upd models.UnitPricingUpdate) (*models.UnitPricing, error) {
	if err := utils.ValidateStruct(upd); err != nil {
		return nil, err
	}
	u, err := s.Units.GetByID(ctx, unitID)
	if err != nil {
		return nil, notFoundOr(err, "unit")
	}
	if upd.BasePrice != nil {
		u.BasePrice = *upd.BasePrice
	}
	if upd.WeekendPrice != nil {
		if *upd.WeekendPrice == 0 {
			u.WeekendPrice = nil
		} else {
			price := *upd.WeekendPrice
			u.WeekendPrice = &price
		}
	}
	if upd.MinimumStay != nil {
		u.MinimumStay = *upd.MinimumStay
	}
	u.UpdatedAt = time.Now().UTC()
	if err := s.Units.Update(ctx, u); err != nil {
		return nil, notFoundOr(err, "unit")
	}
	return pricingOf(u), nil
}

func pricingOf(u *models.Unit) *models.UnitPricing {
	return &models.UnitPricing{
		UnitID:       u.ID,
		BasePrice:    u.BasePrice,
		WeekendPrice: u.WeekendPrice,
		MinimumStay:  u.MinimumStay,
	}
}
