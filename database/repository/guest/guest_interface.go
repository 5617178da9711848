package guestRepo

import (
	"context"

	"maisonette/models"
)

// GuestRepository persists guest accounts.
type GuestRepository interface {
	Create(ctx context.Context, guest *models.Guest) error
	GetByID(ctx context.Context, id string) (*models.Guest, error)
	GetByEmail(ctx context.Context, email string) (*models.Guest, error)
	SetBookingCode(ctx context.Context, id, code string) error
}
