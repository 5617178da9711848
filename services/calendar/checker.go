package calendar

import (
	"context"

	"maisonette/models"
	"maisonette/utils"
)

// ReasonBooked is reported when an occupying booking overlaps.
const ReasonBooked = "already booked"

// Checker decides whether a date range is free for a unit.
type Checker struct {
	Store *Store
}

func NewChecker(store *Store) *Checker {
	return &Checker{Store: store}
}

// IsAvailable checks bookings first, then blocks.
func (c *Checker) IsAvailable(ctx context.Context, unitID string, r models.DateRange) (models.Availability, error) {
	return c.IsAvailableExcluding(ctx, unitID, r, "")
}

// IsAvailableExcluding ignores the booking with id excludeBookingID, so an
// edited booking does not conflict with itself.
func (c *Checker) IsAvailableExcluding(ctx context.Context, unitID string, r models.DateRange, excludeBookingID string) (models.Availability, error) {
	if !r.Valid() {
		return models.Availability{}, utils.NewValidationError(models.ErrInvalidRange.Error())
	}

	occ, err := c.Store.Overlapping(ctx, unitID, r, excludeBookingID)
	if err != nil {
		return models.Availability{}, err
	}
	if len(occ.Bookings) > 0 {
		return models.Availability{Available: false, Reason: ReasonBooked}, nil
	}
	if len(occ.Blocks) > 0 {
		return models.Availability{Available: false, Reason: occ.Blocks[0].DisplayReason()}, nil
	}
	return models.Availability{Available: true}, nil
}
