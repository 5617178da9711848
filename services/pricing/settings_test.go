package pricing

import (
	"context"
	"testing"

	"maisonette/database/repository/repotest"
	"maisonette/models"
	"maisonette/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSettingsQuoteHighSeasonWithSurcharge(t *testing.T) {
	settings := models.DefaultPricingSettings()

	// Sat 2025-07-05, Sun 2025-07-06, Mon 2025-07-07.
	q, err := ComputeSettingsQuote(settings, dr("2025-07-05", "2025-07-08"), 4)
	require.NoError(t, err)
	require.Equal(t, []float64{180, 180, 150}, []float64{q.Breakdown[0].Price, q.Breakdown[1].Price, q.Breakdown[2].Price})
	require.True(t, q.Breakdown[0].IsWeekend)
	require.False(t, q.Breakdown[2].IsWeekend)
	require.Equal(t, 510.0, q.NightsSubtotal)
	require.Equal(t, 90.0, q.GuestSurcharge)
	require.Equal(t, 600.0, q.Subtotal)
	require.Zero(t, q.DiscountPct)
	require.Equal(t, 600.0, q.Total)
	require.Equal(t, 3, q.MinimumStay)
	require.True(t, q.MeetsMinimumStay)
}

func TestSettingsQuoteFridayIsNotWeekend(t *testing.T) {
	settings := models.DefaultPricingSettings()

	// Fri 2025-11-07 in low season.
	q, err := ComputeSettingsQuote(settings, dr("2025-11-07", "2025-11-08"), 2)
	require.NoError(t, err)
	require.False(t, q.Breakdown[0].IsWeekend)
	require.Equal(t, 100.0, q.Total)
}

func TestSettingsQuoteWeeklyAndMonthlyDiscounts(t *testing.T) {
	settings := models.DefaultPricingSettings()

	// Mon 2025-11-03 .. Mon 2025-11-10: five weekdays and a weekend.
	q, err := ComputeSettingsQuote(settings, dr("2025-11-03", "2025-11-10"), 2)
	require.NoError(t, err)
	require.Equal(t, 740.0, q.Subtotal)
	require.Equal(t, 10.0, q.DiscountPct)
	require.Equal(t, 74.0, q.DiscountAmount)
	require.Equal(t, 666.0, q.Total)

	q, err = ComputeSettingsQuote(settings, dr("2025-11-01", "2025-12-01"), 2)
	require.NoError(t, err)
	require.Equal(t, 30, q.Nights)
	require.Equal(t, 20.0, q.DiscountPct)
}

func TestSettingsServiceCreatesDefaultsOnFirstRead(t *testing.T) {
	ctx := context.Background()
	rates := repotest.NewRates()
	svc := NewSettingsService(rates, zap.NewNop())

	s, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 100.0, s.BasePrice)
	require.Len(t, s.Seasons, 3)

	stored, err := rates.GetSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, models.PricingSettingsID, stored.ID)
}

func TestSettingsServiceUpdateOnlyTouchesGivenFields(t *testing.T) {
	ctx := context.Background()
	svc := NewSettingsService(repotest.NewRates(), zap.NewNop())

	base := 80.0
	s, err := svc.Update(ctx, models.PricingSettingsUpdate{BasePrice: &base})
	require.NoError(t, err)
	require.Equal(t, 80.0, s.BasePrice)
	require.Equal(t, 120.0, s.WeekendPrice)

	bad := []models.Season{{Name: "Broken", Months: []int{13}, Multiplier: 1.1}}
	_, err = svc.Update(ctx, models.PricingSettingsUpdate{Seasons: &bad})
	require.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestStrategiesAreIndependent(t *testing.T) {
	ctx := context.Background()
	units := repotest.NewUnits(models.Unit{ID: "U1", BasePrice: 90, Active: true})
	rates := repotest.NewRates()
	req := QuoteRequest{UnitID: "U1", Range: dr("2025-09-01", "2025-09-04"), PartySize: 2}

	strategies := []Strategy{
		NewPeriodStrategy(units, rates),
		NewSettingsStrategy(NewSettingsService(rates, zap.NewNop())),
	}
	totals := map[string]float64{}
	for _, s := range strategies {
		q, err := s.Quote(ctx, req)
		require.NoError(t, err)
		totals[s.Name()] = q.Total
	}
	require.Equal(t, 270.0, totals[StrategyPeriods])
	// September is mid season: 3 x 100 x 1.2.
	require.Equal(t, 360.0, totals[StrategySettings])
}
