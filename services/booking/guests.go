package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maisonette/database/repository"
	"maisonette/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// resolveGuest finds the account an admin booking belongs to: by id when
// given, otherwise by e-mail. A nil guest with a nil error means no
// account exists yet.
func (s *DefaultBookingService) resolveGuest(ctx context.Context, guestID, email string) (*models.Guest, error) {
	if guestID != "" {
		guest, err := s.Guests.GetByID(ctx, guestID)
		if err != nil {
			return nil, notFoundOr(err, "guest")
		}
		return guest, nil
	}
	if email == "" {
		return nil, nil
	}
	guest, err := s.Guests.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("booking: lookup guest: %w", err)
	}
	return guest, nil
}

// fillGuestInfo copies the contact details stored on the guest record.
func fillGuestInfo(info *models.GuestInfo, guest *models.Guest) {
	if guest.Name != "" {
		info.Name = guest.Name
	}
	if guest.Email != "" {
		info.Email = guest.Email
	}
	if guest.Phone != "" {
		info.Phone = guest.Phone
	}
}

// linkGuest attaches a stored booking to its guest account, creating one
// whose password is the booking code when needed. Failures are logged;
// the booking stays valid without a link.
func (s *DefaultBookingService) linkGuest(ctx context.Context, guest *models.Guest, b *models.Booking) {
	if guest == nil {
		created, err := s.createGuest(ctx, b)
		if err != nil {
			s.Logger.Warn("failed to create guest account",
				zap.String("bookingID", b.ID), zap.String("email", b.GuestInfo.Email), zap.Error(err))
			return
		}
		guest = created
	} else if err := s.Guests.SetBookingCode(ctx, guest.ID, b.Code); err != nil {
		s.Logger.Warn("failed to update guest booking code", zap.String("guestID", guest.ID), zap.Error(err))
	}

	if b.GuestID == guest.ID {
		return
	}
	b.GuestID = guest.ID
	if err := s.Bookings.SetGuestID(ctx, b.ID, guest.ID); err != nil {
		s.Logger.Warn("failed to link booking to guest",
			zap.String("bookingID", b.ID), zap.String("guestID", guest.ID), zap.Error(err))
	}
}

func (s *DefaultBookingService) createGuest(ctx context.Context, b *models.Booking) (*models.Guest, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(b.Code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash guest password: %w", err)
	}
	guest := &models.Guest{
		ID:           uuid.NewString(),
		Name:         b.GuestInfo.Name,
		Email:        b.GuestInfo.Email,
		Phone:        b.GuestInfo.Phone,
		PasswordHash: string(hash),
		BookingCode:  b.Code,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.Guests.Create(ctx, guest); err != nil {
		return nil, err
	}
	return guest, nil
}
