package unit

import (
	"context"
	"fmt"
	"time"

	"maisonette/models"
	"maisonette/utils"

	"github.com/google/uuid"
)

func (s *DefaultUnitService) ListPeriods(ctx context.Context, unitID string) ([]models.RatePeriod, error) {
	periods, err := s.Rates.ListPeriods(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("unit: list periods: %w", err)
	}
	return periods, nil
}

// CreatePeriod appends a period. Periods are matched in stored order, so
// a new period never overrides an older one covering the same night.
func (s *DefaultUnitService) CreatePeriod(ctx context.Context, in models.RatePeriodInput) (*models.RatePeriod, error) {
	r, err := s.checkPeriodInput(ctx, in)
	if err != nil {
		return nil, err
	}
	p := &models.RatePeriod{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	applyPeriodInput(p, in, r)
	if err := s.Rates.CreatePeriod(ctx, p); err != nil {
		return nil, fmt.Errorf("unit: create period: %w", err)
	}
	return p, nil
}

func (s *DefaultUnitService) UpdatePeriod(ctx context.Context, id string, in models.RatePeriodInput) (*models.RatePeriod, error) {
	r, err := s.checkPeriodInput(ctx, in)
	if err != nil {
		return nil, err
	}
	p, err := s.Rates.GetPeriod(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "rate period")
	}
	applyPeriodInput(p, in, r)
	if err := s.Rates.UpdatePeriod(ctx, p); err != nil {
		return nil, notFoundOr(err, "rate period")
	}
	return p, nil
}

func (s *DefaultUnitService) DeletePeriod(ctx context.Context, id string) error {
	if err := s.Rates.DeletePeriod(ctx, id); err != nil {
		return notFoundOr(err, "rate period")
	}
	return nil
}

// checkPeriodInput validates a period whose end date is included, so a
// single-day period has start == end.
func (s *DefaultUnitService) checkPeriodInput(ctx context.Context, in models.RatePeriodInput) (models.DateRange, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return models.DateRange{}, err
	}
	start, err := models.ParseDate(in.Start)
	if err != nil {
		return models.DateRange{}, rangeError(err)
	}
	end, err := models.ParseDate(in.End)
	if err != nil {
		return models.DateRange{}, rangeError(err)
	}
	if end.Before(start) {
		return models.DateRange{}, utils.NewValidationError("period end must not be before its start")
	}
	if _, err := s.Units.GetByID(ctx, in.UnitID); err != nil {
		return models.DateRange{}, notFoundOr(err, "unit")
	}
	return models.DateRange{Start: start.Format(models.DateLayout), End: end.Format(models.DateLayout)}, nil
}

func applyPeriodInput(p *models.RatePeriod, in models.RatePeriodInput, r models.DateRange) {
	p.UnitID = in.UnitID
	p.Name = in.Name
	p.DateRange = r
	p.NightlyRate = in.NightlyRate
	p.WeekendRate = in.WeekendRate
	p.MinimumStay = in.MinimumStay
}

func (s *DefaultUnitService) ListDiscounts(ctx context.Context, unitID string) ([]models.LongStayDiscount, error) {
	discounts, err := s.Rates.ListDiscounts(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("unit: list discounts: %w", err)
	}
	return discounts, nil
}

func (s *DefaultUnitService) CreateDiscount(ctx context.Context, in models.DiscountInput) (*models.LongStayDiscount, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	if _, err := s.Units.GetByID(ctx, in.UnitID); err != nil {
		return nil, notFoundOr(err, "unit")
	}
	d := &models.LongStayDiscount{
		ID:        uuid.NewString(),
		UnitID:    in.UnitID,
		MinNights: in.MinNights,
		Percent:   in.Percent,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Rates.CreateDiscount(ctx, d); err != nil {
		return nil, fmt.Errorf("unit: create discount: %w", err)
	}
	return d, nil
}

func (s *DefaultUnitService) DeleteDiscount(ctx context.Context, id string) error {
	if err := s.Rates.DeleteDiscount(ctx, id); err != nil {
		return notFoundOr(err, "discount")
	}
	return nil
}
