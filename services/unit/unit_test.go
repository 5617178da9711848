package unit

import (
	"context"
	"sync"
	"testing"
	"time"

	"maisonette/database/repository/repotest"
	"maisonette/models"
	"maisonette/services/booking"
	"maisonette/services/calendar"
	"maisonette/services/pricing"
	"maisonette/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc      *DefaultUnitService
	bookings *repotest.Bookings
	blocks   *repotest.Blocks
	rates    *repotest.Rates
	feeds    *repotest.Feeds
}

func newFixture() *fixture {
	f := &fixture{
		bookings: repotest.NewBookings(),
		blocks:   repotest.NewBlocks(),
		rates:    repotest.NewRates(),
		feeds:    repotest.NewFeeds(),
	}
	f.svc = &DefaultUnitService{
		Units:    repotest.NewUnits(),
		Bookings: f.bookings,
		Blocks:   f.blocks,
		Rates:    f.rates,
		Feeds:    f.feeds,
		Store:    calendar.NewStore(f.bookings, f.blocks),
		Locker:   calendar.NewMemoryUnitLocker(),
		Logger:   zap.NewNop(),
	}
	return f
}

func (f *fixture) unit(t *testing.T) *models.Unit {
	t.Helper()
	u, err := f.svc.CreateUnit(context.Background(), models.UnitInput{
		Name: "Casa Mare", MaxOccupancy: 4, BasePrice: 90, MinimumStay: 2,
	})
	require.NoError(t, err)
	return u
}

func TestCreateUnitDefaultsToActive(t *testing.T) {
	f := newFixture()
	u := f.unit(t)
	require.True(t, u.Active)
	require.NotEmpty(t, u.ID)

	_, err := f.svc.CreateUnit(context.Background(), models.UnitInput{Name: "", MaxOccupancy: 2, BasePrice: 50})
	require.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestUpdatePricingOnlyGivenFields(t *testing.T) {
	f := newFixture()
	u := f.unit(t)
	ctx := context.Background()

	weekend := 120.0
	p, err := f.svc.UpdatePricing(ctx, u.ID, models.UnitPricingUpdate{WeekendPrice: &weekend})
	require.NoError(t, err)
	require.Equal(t, 90.0, p.BasePrice)
	require.Equal(t, 120.0, *p.WeekendPrice)
	require.Equal(t, 2, p.MinimumStay)

	zero := 0.0
	p, err = f.svc.UpdatePricing(ctx, u.ID, models.UnitPricingUpdate{WeekendPrice: &zero})
	require.NoError(t, err)
	require.Nil(t, p.WeekendPrice)

	_, err = f.svc.GetPricing(ctx, "missing")
	require.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestDeleteUnitWithActiveBookingsFails(t *testing.T) {
	f := newFixture()
	u := f.unit(t)
	ctx := context.Background()
	require.NoError(t, f.bookings.Create(ctx, &models.Booking{
		ID: "BK1", UnitID: u.ID, Code: "MDP-AAAAAA", Status: models.StatusConfirmed,
		DateRange: models.DateRange{Start: "2025-09-01", End: "2025-09-03"},
	}))

	err := f.svc.DeleteUnit(ctx, u.ID)
	require.True(t, utils.IsKind(err, utils.KindInvariant))

	_, err = f.svc.GetUnit(ctx, u.ID)
	require.NoError(t, err)
}

func TestDeleteUnitCascades(t *testing.T) {
	f := newFixture()
	u := f.unit(t)
	ctx := context.Background()

	_, err := f.svc.CreateBlock(ctx, models.BlockInput{UnitID: u.ID, Start: "2025-09-01", End: "2025-09-03"})
	require.NoError(t, err)
	_, err = f.svc.CreatePeriod(ctx, models.RatePeriodInput{UnitID: u.ID, Name: "Summer", Start: "2025-07-01", End: "2025-08-31", NightlyRate: 150})
	require.NoError(t, err)
	require.NoError(t, f.feeds.Create(ctx, &models.CalendarFeed{ID: "F1", UnitID: u.ID, Name: "Airbnb", URL: "https://example.com/a.ics"}))

	require.NoError(t, f.svc.DeleteUnit(ctx, u.ID))

	require.Empty(t, f.blocks.All())
	periods, err := f.rates.ListPeriods(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, periods)
	feeds, err := f.feeds.List(ctx, models.FeedFilter{UnitID: u.ID})
	require.NoError(t, err)
	require.Empty(t, feeds)
}

func TestCreatePeriodAllowsSingleDay(t *testing.T) {
	f := newFixture()
	u := f.unit(t)
	ctx := context.Background()

	p, err := f.svc.CreatePeriod(ctx, models.RatePeriodInput{UnitID: u.ID, Name: "Ferragosto", Start: "2025-08-15", End: "2025-08-15", NightlyRate: 200})
	require.NoError(t, err)
	require.True(t, p.Covers("2025-08-15"))

	_, err = f.svc.CreatePeriod(ctx, models.RatePeriodInput{UnitID: u.ID, Name: "Bad", Start: "2025-08-16", End: "2025-08-15", NightlyRate: 200})
	require.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = f.svc.CreatePeriod(ctx, models.RatePeriodInput{UnitID: "missing", Name: "X", Start: "2025-08-15", End: "2025-08-16", NightlyRate: 200})
	require.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestCreateBlockRefusesBookedDates(t *testing.T) {
	f := newFixture()
	u := f.unit(t)
	ctx := context.Background()
	require.NoError(t, f.bookings.Create(ctx, &models.Booking{
		ID: "BK1", UnitID: u.ID, Code: "MDP-AAAAAA", Status: models.StatusPending,
		DateRange: models.DateRange{Start: "2025-09-01", End: "2025-09-04"},
	}))

	_, err := f.svc.CreateBlock(ctx, models.BlockInput{UnitID: u.ID, Start: "2025-09-03", End: "2025-09-05"})
	require.True(t, utils.IsKind(err, utils.KindConflict))

	b, err := f.svc.CreateBlock(ctx, models.BlockInput{UnitID: u.ID, Start: "2025-09-04", End: "2025-09-05", Reason: "cleaning"})
	require.NoError(t, err)
	require.Equal(t, models.BlockSourceManual, b.Source)

	cal, err := f.svc.Calendar(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cal.Bookings, 1)
	require.Len(t, cal.Blocks, 1)
	require.Empty(t, cal.RatePeriods)
}

func TestDiscounts(t *testing.T) {
	f := newFixture()
	u := f.unit(t)
	ctx := context.Background()

	d, err := f.svc.CreateDiscount(ctx, models.DiscountInput{UnitID: u.ID, MinNights: 7, Percent: 10})
	require.NoError(t, err)
	list, err := f.svc.ListDiscounts(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.svc.CreateDiscount(ctx, models.DiscountInput{UnitID: u.ID, MinNights: 7, Percent: 150})
	require.True(t, utils.IsKind(err, utils.KindValidation))

	require.NoError(t, f.svc.DeleteDiscount(ctx, d.ID))
	require.True(t, utils.IsKind(f.svc.DeleteDiscount(ctx, d.ID), utils.KindNotFound))
}

// pausedCount holds the first CountOccupying answer until release is closed.
type pausedCount struct {
	*repotest.Bookings

	once    sync.Once
	reached chan struct{}
	release chan struct{}
}

func (p *pausedCount) CountOccupying(ctx context.Context, unitID string) (int64, error) {
	n, err := p.Bookings.CountOccupying(ctx, unitID)
	p.once.Do(func() {
		close(p.reached)
		<-p.release
	})
	return n, err
}

func TestDeleteUnitExcludesConcurrentBooking(t *testing.T) {
	f := newFixture()
	u := f.unit(t)
	ctx := context.Background()

	counts := &pausedCount{Bookings: f.bookings, reached: make(chan struct{}), release: make(chan struct{})}
	f.svc.Bookings = counts
	bookings := &booking.DefaultBookingService{
		Units:    f.svc.Units,
		Bookings: f.bookings,
		Guests:   repotest.NewGuests(),
		Checker:  calendar.NewChecker(f.svc.Store),
		Pricing:  pricing.NewPeriodStrategy(f.svc.Units, f.rates),
		Locker:   f.svc.Locker,
		Codes:    booking.NewCodeGenerator("MDP", 20, f.bookings.CodeExists),
		Logger:   zap.NewNop(),
	}

	deleted := make(chan error, 1)
	go func() { deleted <- f.svc.DeleteUnit(ctx, u.ID) }()
	<-counts.reached

	created := make(chan error, 1)
	go func() {
		_, err := bookings.CreateBooking(ctx, models.BookingRequest{
			UnitID: u.ID, Start: "2025-09-01", End: "2025-09-04", PartySize: 2,
			GuestInfo: models.GuestInfo{Name: "Anna Rossi", Email: "anna@example.com"},
		})
		created <- err
	}()
	// Give the booking time to queue on the unit lock.
	time.Sleep(20 * time.Millisecond)
	close(counts.release)

	require.NoError(t, <-deleted)
	err := <-created
	require.True(t, utils.IsKind(err, utils.KindNotFound), "got %v", err)

	left, err := f.bookings.CountOccupying(ctx, u.ID)
	require.NoError(t, err)
	require.Zero(t, left)
}
