package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maisonette/database/repository"
	"maisonette/models"
	"maisonette/services/calendar"
	"maisonette/services/notification"
	"maisonette/services/pricing"
	"maisonette/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// insertAttempts bounds retries when a freshly checked code is taken by a
// concurrent insert on another unit.
const insertAttempts = 3

// CheckAvailability reports whether the unit is free and, if so, its price.
func (s *DefaultBookingService) CheckAvailability(ctx context.Context, unitID, start, end string) (models.Availability, error) {
	r, err := models.NewDateRange(start, end)
	if err != nil {
		return models.Availability{}, rangeError(err)
	}
	unit, err := s.Units.GetByID(ctx, unitID)
	if err != nil {
		return models.Availability{}, notFoundOr(err, "unit")
	}
	if !unit.Active {
		return models.Availability{}, utils.NewNotFoundError("unit not found")
	}

	avail, err := s.Checker.IsAvailable(ctx, unitID, r)
	if err != nil {
		return models.Availability{}, err
	}
	if !avail.Available {
		return avail, nil
	}

	quote, err := s.Pricing.Quote(ctx, pricing.QuoteRequest{UnitID: unitID, Range: r})
	if err != nil {
		return models.Availability{}, err
	}
	avail.Price = quote
	return avail, nil
}

// CreateBooking stores a guest request as pending.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	return s.create(ctx, req, createOptions{status: models.StatusPending, createdBy: createdByGuest})
}

// AdminCreateBooking stores a booking with an explicit status (confirmed
// when empty), an optional price override and a linked guest account.
func (s *DefaultBookingService) AdminCreateBooking(ctx context.Context, req models.AdminBookingRequest) (*models.Booking, error) {
	var guest *models.Guest
	if req.GuestID != "" {
		// Contact details come from the guest record.
		g, err := s.resolveGuest(ctx, req.GuestID, "")
		if err != nil {
			return nil, err
		}
		fillGuestInfo(&req.GuestInfo, g)
		guest = g
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = models.StatusConfirmed
	}
	if !status.Valid() {
		return nil, utils.NewValidationError(fmt.Sprintf("invalid status %q", req.Status))
	}

	if guest == nil {
		g, err := s.resolveGuest(ctx, "", req.GuestInfo.Email)
		if err != nil {
			return nil, err
		}
		guest = g
	}

	b, err := s.create(ctx, req.BookingRequest, createOptions{
		status:        status,
		totalOverride: req.TotalPrice,
		createdBy:     createdByAdmin,
		guest:         guest,
	})
	if err != nil {
		return nil, err
	}
	s.linkGuest(ctx, guest, b)
	return b, nil
}

type createOptions struct {
	status        models.BookingStatus
	totalOverride *float64
	createdBy     string
	guest         *models.Guest
}

func (s *DefaultBookingService) create(ctx context.Context, req models.BookingRequest, opts createOptions) (*models.Booking, error) {
	// Step 1: Validate dates, unit and party size.
	r, err := models.NewDateRange(req.Start, req.End)
	if err != nil {
		return nil, rangeError(err)
	}
	unit, err := s.Units.GetByID(ctx, req.UnitID)
	if err != nil {
		return nil, notFoundOr(err, "unit")
	}
	if !unit.Active {
		return nil, utils.NewNotFoundError("unit not found")
	}
	if req.PartySize > unit.MaxOccupancy {
		return nil, utils.NewValidationError(fmt.Sprintf("party size %d exceeds the unit capacity of %d", req.PartySize, unit.MaxOccupancy))
	}

	now := time.Now().UTC()
	b := &models.Booking{
		ID:         uuid.NewString(),
		UnitID:     unit.ID,
		UnitName:   unit.Name,
		DateRange:  r,
		GuestInfo:  req.GuestInfo,
		PartySize:  req.PartySize,
		Status:     opts.status,
		Note:       req.Note,
		CreatedAt:  now,
		UpdatedAt:  now,
		TotalPrice: 0,
	}
	if opts.guest != nil {
		b.GuestID = opts.guest.ID
	}

	err = calendar.WithUnitLock(ctx, s.Locker, unit.ID, func(ctx context.Context) error {
		// Step 2: Availability, under the unit lock so no concurrent
		// request can claim the same nights before the insert below.
		// The unit may have been deleted while we waited for the lock.
		if _, err := s.Units.GetByID(ctx, unit.ID); err != nil {
			return notFoundOr(err, "unit")
		}
		avail, err := s.Checker.IsAvailable(ctx, unit.ID, r)
		if err != nil {
			return err
		}
		if !avail.Available {
			return unavailableError(avail)
		}

		// Step 3: Price, unless an admin supplied the total.
		if opts.totalOverride != nil {
			b.TotalPrice = *opts.totalOverride
		} else {
			quote, err := s.Pricing.Quote(ctx, pricing.QuoteRequest{UnitID: unit.ID, Range: r, PartySize: req.PartySize})
			if err != nil {
				return err
			}
			b.TotalPrice = quote.Total
		}

		// Step 4 and 5: Unique code, then persist.
		return s.insertWithCode(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("booking created",
		zap.String("bookingID", b.ID),
		zap.String("unitID", b.UnitID),
		zap.String("code", b.Code),
		zap.String("range", r.String()),
		zap.String("status", string(b.Status)),
	)

	// Step 6: Best-effort notification.
	s.notifyCreated(ctx, *b, opts.createdBy)
	return b, nil
}

func (s *DefaultBookingService) insertWithCode(ctx context.Context, b *models.Booking) error {
	for attempt := 1; ; attempt++ {
		code, err := s.Codes.Generate(ctx)
		if err != nil {
			return err
		}
		b.Code = code

		err = s.Bookings.Create(ctx, b)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicate) || attempt >= insertAttempts {
			return fmt.Errorf("booking: insert: %w", err)
		}
		s.Logger.Warn("booking code collided on insert, retrying", zap.String("code", code), zap.Int("attempt", attempt))
	}
}

// notifyCreated never fails the booking; it only logs.
func (s *DefaultBookingService) notifyCreated(ctx context.Context, b models.Booking, createdBy string) {
	if s.Notifier == nil {
		return
	}
	timeout := s.NotifyTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("booking notification panicked", zap.String("bookingID", b.ID), zap.Any("panic", r))
		}
	}()

	if err := s.Notifier.NotifyBookingCreated(ctx, notification.NewBookingNotification(b, createdBy)); err != nil {
		s.Logger.Warn("booking notification failed", zap.String("bookingID", b.ID), zap.String("code", b.Code), zap.Error(err))
	}
}
