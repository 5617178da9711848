package pricing

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"maisonette/database/repository"
	ratesRepo "maisonette/database/repository/rates"
	unitRepo "maisonette/database/repository/unit"
	"maisonette/models"
	"maisonette/utils"
)

const (
	LabelBaseRate    = "Base Rate"
	LabelWeekendRate = "Weekend Rate"
	weekendSuffix    = " (Weekend)"
)

// PeriodStrategy prices a stay from the unit's base prices, rate periods
// and long-stay discounts.
type PeriodStrategy struct {
	Units unitRepo.UnitRepository
	Rates ratesRepo.RatesRepository
}

func NewPeriodStrategy(units unitRepo.UnitRepository, rates ratesRepo.RatesRepository) *PeriodStrategy {
	return &PeriodStrategy{Units: units, Rates: rates}
}

func (s *PeriodStrategy) Name() string { return StrategyPeriods }

func (s *PeriodStrategy) Quote(ctx context.Context, req QuoteRequest) (*models.PriceQuote, error) {
	if _, err := checkNights(req.Range); err != nil {
		return nil, err
	}
	unit, err := s.Units.GetByID(ctx, req.UnitID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError("unit not found")
		}
		return nil, fmt.Errorf("pricing: load unit: %w", err)
	}
	periods, err := s.Rates.ListPeriods(ctx, unit.ID)
	if err != nil {
		return nil, fmt.Errorf("pricing: load rate periods: %w", err)
	}
	discounts, err := s.Rates.ListDiscounts(ctx, unit.ID)
	if err != nil {
		return nil, fmt.Errorf("pricing: load discounts: %w", err)
	}
	return ComputePeriodQuote(*unit, periods, discounts, req.Range, req.PartySize)
}

// ComputePeriodQuote walks every night of r. The first period in stored
// order that covers a night sets its rate; later periods are not
// consulted. Per-night prices keep full precision and only the total is
// rounded.
func ComputePeriodQuote(
	unit models.Unit,
	periods []models.RatePeriod,
	discounts []models.LongStayDiscount,
	r models.DateRange,
	partySize int,
) (*models.PriceQuote, error) {
	nights, err := checkNights(r)
	if err != nil {
		return nil, err
	}

	quote := &models.PriceQuote{
		Strategy:    StrategyPeriods,
		UnitID:      unit.ID,
		Start:       r.Start,
		End:         r.End,
		Nights:      nights,
		PartySize:   partySize,
		Breakdown:   make([]models.NightPrice, 0, nights),
		MinimumStay: unit.MinimumStay,
	}

	subtotal := 0.0
	for _, night := range r.EachNight() {
		day := night.Format(models.DateLayout)
		weekend := isUnitWeekend(night)
		price := unit.BasePrice
		label := LabelBaseRate

		matched := false
		for _, p := range periods {
			if !p.Covers(day) {
				continue
			}
			matched = true
			price = p.NightlyRate
			label = p.Name
			if weekend && p.WeekendRate != nil && *p.WeekendRate > 0 {
				price = *p.WeekendRate
				label += weekendSuffix
			}
			if p.MinimumStay > quote.MinimumStay {
				quote.MinimumStay = p.MinimumStay
			}
			break
		}
		if !matched && weekend && unit.WeekendPrice != nil && *unit.WeekendPrice > 0 {
			price = *unit.WeekendPrice
			label = LabelWeekendRate
		}

		subtotal += price
		quote.Breakdown = append(quote.Breakdown, models.NightPrice{
			Date:      day,
			Price:     price,
			Label:     label,
			IsWeekend: weekend,
		})
	}

	if d := selectDiscount(discounts, nights); d != nil {
		quote.DiscountPct = d.Percent
		quote.DiscountLabel = fmt.Sprintf("Discount %d+ nights", d.MinNights)
	}

	quote.NightsSubtotal = round2(subtotal)
	quote.Subtotal = round2(subtotal)
	quote.DiscountAmount = round2(subtotal * quote.DiscountPct / 100)
	quote.Total = round2(subtotal * (1 - quote.DiscountPct/100))
	quote.MeetsMinimumStay = nights >= quote.MinimumStay
	return quote, nil
}

// selectDiscount returns the rule with the largest threshold the stay
// still meets. Rules sharing a threshold resolve to the first stored one.
func selectDiscount(discounts []models.LongStayDiscount, nights int) *models.LongStayDiscount {
	ordered := append([]models.LongStayDiscount(nil), discounts...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].MinNights > ordered[j].MinNights
	})
	for i := range ordered {
		if nights >= ordered[i].MinNights {
			return &ordered[i]
		}
	}
	return nil
}
