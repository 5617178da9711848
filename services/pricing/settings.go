package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maisonette/database/repository"
	ratesRepo "maisonette/database/repository/rates"
	"maisonette/models"
	"maisonette/utils"

	"go.uber.org/zap"
)

const (
	monthlyDiscountNights = 30
	weeklyDiscountNights  = 7
)

// SettingsService owns the global pricing settings document.
type SettingsService struct {
	Repo   ratesRepo.RatesRepository
	Logger *zap.Logger
}

func NewSettingsService(repo ratesRepo.RatesRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{Repo: repo, Logger: logger}
}

// Get returns the settings, storing the defaults on first read.
func (s *SettingsService) Get(ctx context.Context) (*models.PricingSettings, error) {
	settings, err := s.Repo.GetSettings(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("pricing: load settings: %w", err)
	}

	defaults := models.DefaultPricingSettings()
	defaults.UpdatedAt = time.Now().UTC()
	if err := s.Repo.SaveSettings(ctx, &defaults); err != nil {
		return nil, fmt.Errorf("pricing: store default settings: %w", err)
	}
	s.Logger.Info("pricing settings initialised with defaults")
	return &defaults, nil
}

// Update applies the recognised fields of upd.
func (s *SettingsService) Update(ctx context.Context, upd models.PricingSettingsUpdate) (*models.PricingSettings, error) {
	if err := utils.ValidateStruct(upd); err != nil {
		return nil, err
	}
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if upd.BasePrice != nil {
		settings.BasePrice = *upd.BasePrice
	}
	if upd.WeekendPrice != nil {
		settings.WeekendPrice = *upd.WeekendPrice
	}
	if upd.GuestSurcharge != nil {
		settings.GuestSurcharge = *upd.GuestSurcharge
	}
	if upd.IncludedGuests != nil {
		settings.IncludedGuests = *upd.IncludedGuests
	}
	if upd.WeeklyDiscountPct != nil {
		settings.WeeklyDiscountPct = *upd.WeeklyDiscountPct
	}
	if upd.MonthlyDiscountPct != nil {
		settings.MonthlyDiscountPct = *upd.MonthlyDiscountPct
	}
	if upd.Seasons != nil {
		if err := validateSeasons(*upd.Seasons); err != nil {
			return nil, err
		}
		settings.Seasons = *upd.Seasons
	}
	if upd.MinimumStay != nil {
		settings.MinimumStay = *upd.MinimumStay
	}
	if upd.HighSeasonMinimumStay != nil {
		settings.HighSeasonMinimumStay = *upd.HighSeasonMinimumStay
	}

	settings.UpdatedAt = time.Now().UTC()
	if err := s.Repo.SaveSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("pricing: save settings: %w", err)
	}
	return settings, nil
}

func validateSeasons(seasons []models.Season) error {
	for _, season := range seasons {
		if season.Multiplier <= 0 {
			return utils.NewValidationError(fmt.Sprintf("season %q: multiplier must be positive", season.Name))
		}
		for _, m := range season.Months {
			if m < 1 || m > 12 {
				return utils.NewValidationError(fmt.Sprintf("season %q: month %d out of range", season.Name, m))
			}
		}
	}
	return nil
}

// SettingsStrategy prices a stay from the global settings document. It
// ignores the unit.
type SettingsStrategy struct {
	Settings *SettingsService
}

func NewSettingsStrategy(settings *SettingsService) *SettingsStrategy {
	return &SettingsStrategy{Settings: settings}
}

func (s *SettingsStrategy) Name() string { return StrategySettings }

func (s *SettingsStrategy) Quote(ctx context.Context, req QuoteRequest) (*models.PriceQuote, error) {
	if _, err := checkNights(req.Range); err != nil {
		return nil, err
	}
	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	quote, err := ComputeSettingsQuote(*settings, req.Range, req.PartySize)
	if err != nil {
		return nil, err
	}
	quote.UnitID = req.UnitID
	return quote, nil
}

// ComputeSettingsQuote applies the weekend price on Saturdays and Sundays,
// the multiplier of the first season listing the night's month, a
// per-guest surcharge above the included guests, and the monthly or
// weekly discount.
func ComputeSettingsQuote(settings models.PricingSettings, r models.DateRange, partySize int) (*models.PriceQuote, error) {
	nights, err := checkNights(r)
	if err != nil {
		return nil, err
	}

	quote := &models.PriceQuote{
		Strategy:    StrategySettings,
		Start:       r.Start,
		End:         r.End,
		Nights:      nights,
		PartySize:   partySize,
		Breakdown:   make([]models.NightPrice, 0, nights),
		MinimumStay: settings.MinimumStay,
	}

	highSeason := highestSeason(settings.Seasons)
	nightsTotal := 0.0
	for _, night := range r.EachNight() {
		weekend := isSettingsWeekend(night)
		price := settings.BasePrice
		label := LabelBaseRate
		if weekend && settings.WeekendPrice > 0 {
			price = settings.WeekendPrice
			label = LabelWeekendRate
		}

		for i, season := range settings.Seasons {
			if !containsMonth(season.Months, int(night.Month())) {
				continue
			}
			price *= season.Multiplier
			label += " - " + season.Name
			if i == highSeason && settings.HighSeasonMinimumStay > quote.MinimumStay {
				quote.MinimumStay = settings.HighSeasonMinimumStay
			}
			break
		}

		nightsTotal += price
		quote.Breakdown = append(quote.Breakdown, models.NightPrice{
			Date:      night.Format(models.DateLayout),
			Price:     round2(price),
			Label:     label,
			IsWeekend: weekend,
		})
	}

	extraGuests := partySize - settings.IncludedGuests
	if extraGuests < 0 {
		extraGuests = 0
	}
	surcharge := float64(extraGuests) * settings.GuestSurcharge * float64(nights)
	subtotal := nightsTotal + surcharge

	switch {
	case nights >= monthlyDiscountNights && settings.MonthlyDiscountPct > 0:
		quote.DiscountPct = settings.MonthlyDiscountPct
		quote.DiscountLabel = fmt.Sprintf("Monthly discount (%g%%)", settings.MonthlyDiscountPct)
	case nights >= weeklyDiscountNights && settings.WeeklyDiscountPct > 0:
		quote.DiscountPct = settings.WeeklyDiscountPct
		quote.DiscountLabel = fmt.Sprintf("Weekly discount (%g%%)", settings.WeeklyDiscountPct)
	}
	discount := subtotal * quote.DiscountPct / 100

	quote.NightsSubtotal = round2(nightsTotal)
	quote.GuestSurcharge = round2(surcharge)
	quote.Subtotal = round2(subtotal)
	quote.DiscountAmount = round2(discount)
	quote.Total = round2(subtotal - discount)
	quote.MeetsMinimumStay = nights >= quote.MinimumStay
	return quote, nil
}

// highestSeason returns the index of the season with the largest
// multiplier above 1, or -1.
func highestSeason(seasons []models.Season) int {
	best := -1
	for i, s := range seasons {
		if s.Multiplier <= 1 {
			continue
		}
		if best == -1 || s.Multiplier > seasons[best].Multiplier {
			best = i
		}
	}
	return best
}

func containsMonth(months []int, m int) bool {
	for _, v := range months {
		if v == m {
			return true
		}
	}
	return false
}
