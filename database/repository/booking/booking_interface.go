package bookingRepo

import (
	"context"

	"maisonette/models"
)

// BookingRepository persists bookings.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	// FindOverlapping returns occupying bookings of unitID that overlap r,
	// ignoring excludeID when it is not empty.
	FindOverlapping(ctx context.Context, unitID string, r models.DateRange, excludeID string) ([]models.Booking, error)
	CountOccupying(ctx context.Context, unitID string) (int64, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Update(ctx context.Context, booking *models.Booking) error
	// SetGuestID links a booking to a guest account without touching any
	// other field.
	SetGuestID(ctx context.Context, id, guestID string) error
	Delete(ctx context.Context, id string) error
}
