package unit

import (
	"context"

	blockedRepo "maisonette/database/repository/blocked"
	bookingRepo "maisonette/database/repository/booking"
	feedRepo "maisonette/database/repository/feed"
	ratesRepo "maisonette/database/repository/rates"
	unitRepo "maisonette/database/repository/unit"
	"maisonette/models"
	"maisonette/services/calendar"

	"go.uber.org/zap"
)

// UnitService manages units and everything priced or blocked per unit.
type UnitService interface {
	// Units
	ListUnits(ctx context.Context, activeOnly bool) ([]models.Unit, error)
	GetUnit(ctx context.Context, id string) (*models.Unit, error)
	CreateUnit(ctx context.Context, in models.UnitInput) (*models.Unit, error)
	UpdateUnit(ctx context.Context, id string, in models.UnitInput) (*models.Unit, error)
	DeleteUnit(ctx context.Context, id string) error

	// Unit pricing config
	GetPricing(ctx context.Context, unitID string) (*models.UnitPricing, error)
	UpdatePricing(ctx context.Context, unitID string, upd models.UnitPricingUpdate) (*models.UnitPricing, error)

	// Rate periods and discounts
	ListPeriods(ctx context.Context, unitID string) ([]models.RatePeriod, error)
	CreatePeriod(ctx context.Context, in models.RatePeriodInput) (*models.RatePeriod, error)
	UpdatePeriod(ctx context.Context, id string, in models.RatePeriodInput) (*models.RatePeriod, error)
	DeletePeriod(ctx context.Context, id string) error
	ListDiscounts(ctx context.Context, unitID string) ([]models.LongStayDiscount, error)
	CreateDiscount(ctx context.Context, in models.DiscountInput) (*models.LongStayDiscount, error)
	DeleteDiscount(ctx context.Context, id string) error

	// Manual blocks and calendar
	ListBlocks(ctx context.Context, unitID string) ([]models.DateBlock, error)
	CreateBlock(ctx context.Context, in models.BlockInput) (*models.DateBlock, error)
	DeleteBlock(ctx context.Context, id string) error
	Calendar(ctx context.Context, unitID string) (*models.UnitCalendar, error)
}

// DefaultUnitService is the production implementation.
type DefaultUnitService struct {
	Units    unitRepo.UnitRepository
	Bookings bookingRepo.BookingRepository
	Blocks   blockedRepo.BlockRepository
	Rates    ratesRepo.RatesRepository
	Feeds    feedRepo.FeedRepository
	Store    *calendar.Store
	Locker   calendar.UnitLocker
	Logger   *zap.Logger
}

var _ UnitService = (*DefaultUnitService)(nil)
