// Package calendar answers "what is unavailable" for a unit. Every call
// reads current store state; nothing is cached.
package calendar

import (
	"context"
	"fmt"

	blockedRepo "maisonette/database/repository/blocked"
	bookingRepo "maisonette/database/repository/booking"
	"maisonette/models"
)

// Store is the union of occupying bookings and date blocks of a unit.
type Store struct {
	Bookings bookingRepo.BookingRepository
	Blocks   blockedRepo.BlockRepository
}

func NewStore(bookings bookingRepo.BookingRepository, blocks blockedRepo.BlockRepository) *Store {
	return &Store{Bookings: bookings, Blocks: blocks}
}

// Occupancy lists what overlaps a date range.
type Occupancy struct {
	Bookings []models.Booking
	Blocks   []models.DateBlock
}

// Empty reports whether nothing overlaps.
func (o Occupancy) Empty() bool {
	return len(o.Bookings) == 0 && len(o.Blocks) == 0
}

// Overlapping returns the occupying bookings and the blocks of unitID that
// overlap r. excludeBookingID is skipped, for edits of an existing booking.
func (s *Store) Overlapping(ctx context.Context, unitID string, r models.DateRange, excludeBookingID string) (Occupancy, error) {
	bookings, err := s.Bookings.FindOverlapping(ctx, unitID, r, excludeBookingID)
	if err != nil {
		return Occupancy{}, fmt.Errorf("calendar: bookings of unit %s: %w", unitID, err)
	}
	blocks, err := s.Blocks.FindOverlapping(ctx, unitID, r)
	if err != nil {
		return Occupancy{}, fmt.Errorf("calendar: blocks of unit %s: %w", unitID, err)
	}
	return Occupancy{Bookings: bookings, Blocks: blocks}, nil
}

// Unit returns every occupying booking and every block of unitID.
func (s *Store) Unit(ctx context.Context, unitID string) (Occupancy, error) {
	bookings, err := s.Bookings.List(ctx, models.BookingFilter{
		UnitID:   unitID,
		Statuses: models.OccupyingStatuses(),
	})
	if err != nil {
		return Occupancy{}, fmt.Errorf("calendar: bookings of unit %s: %w", unitID, err)
	}
	blocks, err := s.Blocks.ListByUnit(ctx, unitID)
	if err != nil {
		return Occupancy{}, fmt.Errorf("calendar: blocks of unit %s: %w", unitID, err)
	}
	return Occupancy{Bookings: bookings, Blocks: blocks}, nil
}
