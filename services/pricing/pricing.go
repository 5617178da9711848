// Package pricing holds the two independent price calculators: the
// per-unit rate period model and the global settings model. Their results
// are allowed to disagree.
package pricing

import (
	"context"
	"math"
	"time"

	"maisonette/models"
	"maisonette/utils"
)

const (
	StrategyPeriods  = "periods"
	StrategySettings = "settings"
)

// QuoteRequest is the input of every strategy.
type QuoteRequest struct {
	UnitID    string
	Range     models.DateRange
	PartySize int
}

// Strategy computes an itemized quote for a stay.
type Strategy interface {
	Name() string
	Quote(ctx context.Context, req QuoteRequest) (*models.PriceQuote, error)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func checkNights(r models.DateRange) (int, error) {
	nights := r.Nights()
	if nights < 1 {
		return 0, utils.NewValidationError("stay must be at least one night")
	}
	return nights, nil
}

// isUnitWeekend is the weekend rule of the period model: Friday to Sunday.
func isUnitWeekend(d time.Time) bool {
	switch d.Weekday() {
	case time.Friday, time.Saturday, time.Sunday:
		return true
	}
	return false
}

// isSettingsWeekend is the weekend rule of the settings model: Saturday
// and Sunday.
func isSettingsWeekend(d time.Time) bool {
	return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
}
