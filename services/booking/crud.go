package booking

import (
	"context"
	"fmt"

	"maisonette/models"

	"go.uber.org/zap"
)

func (s *DefaultBookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "booking")
	}
	return b, nil
}

// ListBookings returns bookings ordered by arrival.
func (s *DefaultBookingService) ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	bookings, err := s.Bookings.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("booking: list: %w", err)
	}
	return bookings, nil
}

// DeleteBooking removes a booking permanently, releasing its dates.
func (s *DefaultBookingService) DeleteBooking(ctx context.Context, id string) error {
	if err := s.Bookings.Delete(ctx, id); err != nil {
		return notFoundOr(err, "booking")
	}
	s.Logger.Info("booking deleted", zap.String("bookingID", id))
	return nil
}
