package ratesRepo

import (
	"context"

	"maisonette/models"
)

// RatesRepository persists rate periods, long-stay discounts and the
// global pricing settings document.
type RatesRepository interface {
	CreatePeriod(ctx context.Context, p *models.RatePeriod) error
	GetPeriod(ctx context.Context, id string) (*models.RatePeriod, error)
	// ListPeriods returns a unit's periods in stored order (creation time,
	// then id).
	ListPeriods(ctx context.Context, unitID string) ([]models.RatePeriod, error)
	UpdatePeriod(ctx context.Context, p *models.RatePeriod) error
	DeletePeriod(ctx context.Context, id string) error

	CreateDiscount(ctx context.Context, d *models.LongStayDiscount) error
	ListDiscounts(ctx context.Context, unitID string) ([]models.LongStayDiscount, error)
	DeleteDiscount(ctx context.Context, id string) error

	DeleteByUnit(ctx context.Context, unitID string) error

	GetSettings(ctx context.Context) (*models.PricingSettings, error)
	SaveSettings(ctx context.Context, s *models.PricingSettings) error
}
