package blockedRepo

import (
	"context"

	"maisonette/models"
)

// BlockRepository persists date blocks.
type BlockRepository interface {
	Create(ctx context.Context, block *models.DateBlock) error
	GetByID(ctx context.Context, id string) (*models.DateBlock, error)
	ListByUnit(ctx context.Context, unitID string) ([]models.DateBlock, error)
	FindOverlapping(ctx context.Context, unitID string, r models.DateRange) ([]models.DateBlock, error)
	Delete(ctx context.Context, id string) error
	// ReplaceFeedBlocks deletes every block owned by feedID, then inserts
	// blocks. The two steps are not atomic.
	ReplaceFeedBlocks(ctx context.Context, feedID string, blocks []models.DateBlock) (int, error)
	DeleteByFeed(ctx context.Context, feedID string) (int64, error)
	DeleteByUnit(ctx context.Context, unitID string) (int64, error)
}
