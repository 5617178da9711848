package unitRepo

import (
	"context"

	"maisonette/models"
)

// UnitRepository persists rentable units.
type UnitRepository interface {
	Create(ctx context.Context, unit *models.Unit) error
	GetByID(ctx context.Context, id string) (*models.Unit, error)
	List(ctx context.Context, activeOnly bool) ([]models.Unit, error)
	Update(ctx context.Context, unit *models.Unit) error
	Delete(ctx context.Context, id string) error
}
