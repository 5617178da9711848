package booking

import (
	"context"
	"fmt"
	"time"

	"maisonette/models"
	"maisonette/services/calendar"
	"maisonette/utils"

	"go.uber.org/zap"
)

// UpdateBookingStatus moves a booking along the lifecycle. Setting the
// current status again is a no-op.
func (s *DefaultBookingService) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) (*models.Booking, error) {
	if !status.Valid() {
		return nil, utils.NewValidationError(fmt.Sprintf("invalid status %q", status))
	}
	found, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "booking")
	}

	var (
		b        *models.Booking
		previous models.BookingStatus
	)
	err = calendar.WithUnitLock(ctx, s.Locker, found.UnitID, func(ctx context.Context) error {
		// The copy read above may predate an edit that moved the dates.
		fresh, err := s.Bookings.GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "booking")
		}
		b = fresh
		previous = b.Status
		if b.Status == status {
			return nil
		}
		if err := checkTransition(b.Status, status); err != nil {
			return err
		}
		b.Status = status
		b.UpdatedAt = time.Now().UTC()
		if err := s.Bookings.Update(ctx, b); err != nil {
			return notFoundOr(err, "booking")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if previous != status {
		s.Logger.Info("booking status changed",
			zap.String("bookingID", b.ID),
			zap.String("from", string(previous)),
			zap.String("to", string(status)),
		)
	}
	return b, nil
}

func checkTransition(from, to models.BookingStatus) error {
	if from.CanTransitionTo(to) {
		return nil
	}
	return utils.NewConflictError(fmt.Sprintf("cannot change status from %s to %s", from, to))
}
