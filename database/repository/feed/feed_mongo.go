package feedRepo

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

type MongoFeedRepo struct {
	coll *mongo.Collection
}

func NewMongoFeedRepo(db *mongo.Database) *MongoFeedRepo {
	return &MongoFeedRepo{
		coll: db.Collection("calendar_feeds"),
	}
}

func (r *MongoFeedRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("feed_id_unique")},
		{Keys: bson.D{{Key: "unit_id", Value: 1}, {Key: "active", Value: 1}}, Options: options.Index().SetName("feed_unit_active")},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create feed indexes: %w", err)
	}
	return nil
}

func (r *MongoFeedRepo) Create(ctx context.Context, feed *models.CalendarFeed) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, feed); err != nil {
		return fmt.Errorf("failed to insert feed: %w", repository.Translate(err))
	}
	return nil
}

func (r *MongoFeedRepo) GetByID(ctx context.Context, id string) (*models.CalendarFeed, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var feed models.CalendarFeed
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&feed); err != nil {
		return nil, fmt.Errorf("error fetching feed %s: %w", id, repository.Translate(err))
	}
	return &feed, nil
}

func (r *MongoFeedRepo) List(ctx context.Context, filter models.FeedFilter) ([]models.CalendarFeed, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	query := bson.M{}
	if filter.UnitID != "" {
		query["unit_id"] = filter.UnitID
	}
	if filter.FeedID != "" {
		query["id"] = filter.FeedID
	}
	if filter.ActiveOnly {
		query["active"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching feeds: %w", err)
	}
	defer cursor.Close(ctx)

	feeds := []models.CalendarFeed{}
	if err := cursor.All(ctx, &feeds); err != nil {
		return nil, fmt.Errorf("error decoding feeds: %w", err)
	}
	return feeds, nil
}

func (r *MongoFeedRepo) Update(ctx context.Context, feed *models.CalendarFeed) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	feed.UpdatedAt = time.Now().UTC()
	result, err := r.coll.ReplaceOne(ctx, bson.M{"id": feed.ID}, feed)
	if err != nil {
		return fmt.Errorf("failed to update feed %s: %w", feed.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("feed %s: %w", feed.ID, repository.ErrNotFound)
	}
	return nil
}

func (r *MongoFeedRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete feed %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("feed %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *MongoFeedRepo) RecordSync(ctx context.Context, id string, at time.Time, imported int) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"last_synced_at":  at,
		"events_imported": imported,
		"updated_at":      at,
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to record sync of feed %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("feed %s: %w", id, repository.ErrNotFound)
	}
	return nil
}
