package booking

import (
	"context"
	"fmt"
	"time"

	"maisonette/models"
	"maisonette/services/calendar"
	"maisonette/services/pricing"
	"maisonette/utils"

	"go.uber.org/zap"
)

// UpdateBooking applies an admin edit. Changes to dates or party size are
// re-checked against the calendar, ignoring the booking itself. The whole
// edit runs under the unit lock on a fresh copy of the booking.
func (s *DefaultBookingService) UpdateBooking(ctx context.Context, id string, upd models.BookingUpdate) (*models.Booking, error) {
	if err := utils.ValidateStruct(upd); err != nil {
		return nil, err
	}
	found, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "booking")
	}

	var b *models.Booking
	err = calendar.WithUnitLock(ctx, s.Locker, found.UnitID, func(ctx context.Context) error {
		current, err := s.Bookings.GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "booking")
		}
		b, err = s.applyUpdate(ctx, current, upd)
		if err != nil {
			return err
		}
		if err := s.Bookings.Update(ctx, b); err != nil {
			return notFoundOr(err, "booking")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("booking updated",
		zap.String("bookingID", b.ID),
		zap.String("range", b.DateRange.String()),
		zap.Int("partySize", b.PartySize),
	)
	return b, nil
}

// applyUpdate returns current with upd applied. It must run under the
// unit lock of current.
func (s *DefaultBookingService) applyUpdate(ctx context.Context, current *models.Booking, upd models.BookingUpdate) (*models.Booking, error) {
	// Step 1: Apply the plain fields to a copy.
	b := *current
	if upd.GuestName != nil {
		b.GuestInfo.Name = *upd.GuestName
	}
	if upd.GuestEmail != nil {
		b.GuestInfo.Email = *upd.GuestEmail
	}
	if upd.GuestPhone != nil {
		b.GuestInfo.Phone = *upd.GuestPhone
	}
	if upd.Note != nil {
		b.Note = *upd.Note
	}
	if upd.TotalPrice != nil {
		b.TotalPrice = *upd.TotalPrice
	}
	if upd.Status != nil && *upd.Status != b.Status {
		if !upd.Status.Valid() {
			return nil, utils.NewValidationError(fmt.Sprintf("invalid status %q", *upd.Status))
		}
		if err := checkTransition(b.Status, *upd.Status); err != nil {
			return nil, err
		}
		b.Status = *upd.Status
	}
	b.UpdatedAt = time.Now().UTC()

	// Step 2: Dates and party size.
	start, end := b.Start, b.End
	if upd.Start != nil {
		start = *upd.Start
	}
	if upd.End != nil {
		end = *upd.End
	}
	r, err := models.NewDateRange(start, end)
	if err != nil {
		return nil, rangeError(err)
	}
	datesChanged := r != current.DateRange
	b.DateRange = r
	if upd.PartySize != nil {
		b.PartySize = *upd.PartySize
	}
	if !datesChanged && b.PartySize == current.PartySize {
		return &b, nil
	}

	unit, err := s.Units.GetByID(ctx, b.UnitID)
	if err != nil {
		return nil, notFoundOr(err, "unit")
	}
	if b.PartySize > unit.MaxOccupancy {
		return nil, utils.NewValidationError(fmt.Sprintf("party size %d exceeds the unit capacity of %d", b.PartySize, unit.MaxOccupancy))
	}
	if !datesChanged {
		return &b, nil
	}

	// Step 3: New dates must be free and are re-priced unless a total was given.
	if b.Status.Occupying() {
		avail, err := s.Checker.IsAvailableExcluding(ctx, b.UnitID, r, b.ID)
		if err != nil {
			return nil, err
		}
		if !avail.Available {
			return nil, unavailableError(avail)
		}
	}
	if upd.TotalPrice == nil {
		quote, err := s.Pricing.Quote(ctx, pricing.QuoteRequest{UnitID: b.UnitID, Range: r, PartySize: b.PartySize})
		if err != nil {
			return nil, err
		}
		b.TotalPrice = quote.Total
	}
	return &b, nil
}
