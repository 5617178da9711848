package blockedRepo

import (
	"context"
	"fmt"
	"time"

	"maisonette/database/repository"
	"maisonette/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBlockRepo implements BlockRepository using MongoDB.
type MongoBlockRepo struct {
	coll *mongo.Collection
}

func NewMongoBlockRepo(db *mongo.Database) *MongoBlockRepo {
	return &MongoBlockRepo{coll: db.Collection("date_blocks")}
}

func (r *MongoBlockRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("block_id_unique")},
		{Keys: bson.D{{Key: "unit_id", Value: 1}, {Key: "start", Value: 1}, {Key: "end", Value: 1}}, Options: options.Index().SetName("block_unit_range")},
		{Keys: bson.D{{Key: "feed_id", Value: 1}}, Options: options.Index().SetName("block_feed").SetSparse(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create block indexes: %w", err)
	}
	return nil
}

func (r *MongoBlockRepo) Create(ctx context.Context, block *models.DateBlock) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, block); err != nil {
		return fmt.Errorf("failed to insert date block: %w", repository.Translate(err))
	}
	return nil
}

func (r *MongoBlockRepo) GetByID(ctx context.Context, id string) (*models.DateBlock, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var block models.DateBlock
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&block); err != nil {
		return nil, fmt.Errorf("error fetching date block %s: %w", id, repository.Translate(err))
	}
	return &block, nil
}

func (r *MongoBlockRepo) ListByUnit(ctx context.Context, unitID string) ([]models.DateBlock, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	return r.find(ctx, bson.M{"unit_id": unitID})
}

func (r *MongoBlockRepo) FindOverlapping(ctx context.Context, unitID string, dr models.DateRange) ([]models.DateBlock, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	return r.find(ctx, bson.M{
		"unit_id": unitID,
		"start":   bson.M{"$lt": dr.End},
		"end":     bson.M{"$gt": dr.Start},
	})
}

func (r *MongoBlockRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete date block %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("date block %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *MongoBlockRepo) ReplaceFeedBlocks(ctx context.Context, feedID string, blocks []models.DateBlock) (int, error) {
	if _, err := r.DeleteByFeed(ctx, feedID); err != nil {
		return 0, err
	}
	if len(blocks) == 0 {
		return 0, nil
	}

	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	docs := make([]interface{}, 0, len(blocks))
	for i := range blocks {
		blocks[i].FeedID = feedID
		docs = append(docs, blocks[i])
	}
	res, err := r.coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("failed to insert blocks of feed %s: %w", feedID, err)
	}
	return len(res.InsertedIDs), nil
}

func (r *MongoBlockRepo) DeleteByFeed(ctx context.Context, feedID string) (int64, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"feed_id": feedID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete blocks of feed %s: %w", feedID, err)
	}
	return res.DeletedCount, nil
}

func (r *MongoBlockRepo) DeleteByUnit(ctx context.Context, unitID string) (int64, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"unit_id": unitID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete blocks of unit %s: %w", unitID, err)
	}
	return res.DeletedCount, nil
}

func (r *MongoBlockRepo) find(ctx context.Context, query bson.M) ([]models.DateBlock, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching date blocks: %w", err)
	}
	defer cursor.Close(ctx)

	blocks := []models.DateBlock{}
	if err := cursor.All(ctx, &blocks); err != nil {
		return nil, fmt.Errorf("error decoding date blocks: %w", err)
	}
	return blocks, nil
}
