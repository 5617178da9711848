package booking

import (
	"context"
	"time"

	bookingRepo "maisonette/database/repository/booking"
	guestRepo "maisonette/database/repository/guest"
	unitRepo "maisonette/database/repository/unit"
	"maisonette/models"
	"maisonette/services/calendar"
	"maisonette/services/notification"
	"maisonette/services/pricing"

	"go.uber.org/zap"
)

// BookingService runs the booking lifecycle.
type BookingService interface {
	CheckAvailability(ctx context.Context, unitID, start, end string) (models.Availability, error)
	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error)
	AdminCreateBooking(ctx context.Context, req models.AdminBookingRequest) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) (*models.Booking, error)
	UpdateBooking(ctx context.Context, id string, upd models.BookingUpdate) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// DefaultBookingService implements BookingService. Every check-then-write
// on a unit runs under Locker.
type DefaultBookingService struct {
	Units    unitRepo.UnitRepository
	Bookings bookingRepo.BookingRepository
	Guests   guestRepo.GuestRepository
	Checker  *calendar.Checker
	Pricing  pricing.Strategy
	Locker   calendar.UnitLocker
	Codes    *CodeGenerator
	Notifier notification.BookingNotifier
	Logger   *zap.Logger

	// NotifyTimeout bounds the notification call after a booking is stored.
	NotifyTimeout time.Duration
}

var _ BookingService = (*DefaultBookingService)(nil)

const (
	createdByGuest = "guest"
	createdByAdmin = "admin"
)
