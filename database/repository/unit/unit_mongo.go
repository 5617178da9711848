package unitRepo

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

// MongoUnitRepo implements UnitRepository using MongoDB.
type MongoUnitRepo struct {
	coll *mongo.Collection
}

func NewMongoUnitRepo(db *mongo.Database) *MongoUnitRepo {
	return &MongoUnitRepo{coll: db.Collection("units")}
}

// EnsureIndexes creates indexes for fields frequently used in queries.
func (r *MongoUnitRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unit_id_unique")},
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "name", Value: 1}}, Options: options.Index().SetName("unit_active_name")},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create unit indexes: %w", err)
	}
	return nil
}

func (r *MongoUnitRepo) Create(ctx context.Context, unit *models.Unit) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, unit); err != nil {
		return fmt.Errorf("failed to create unit: %w", repository.Translate(err))
	}
	return nil
}

func (r *MongoUnitRepo) GetByID(ctx context.Context, id string) (*models.Unit, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var unit models.Unit
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&unit); err != nil {
		return nil, fmt.Errorf("failed to fetch unit with id %s: %w", id, repository.Translate(err))
	}
	return &unit, nil
}

func (r *MongoUnitRepo) List(ctx context.Context, activeOnly bool) ([]models.Unit, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve units: %w", err)
	}
	defer cursor.Close(ctx)

	units := []models.Unit{}
	if err := cursor.All(ctx, &units); err != nil {
		return nil, fmt.Errorf("failed to decode units: %w", err)
	}
	return units, nil
}

func (r *MongoUnitRepo) Update(ctx context.Context, unit *models.Unit) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	result, err := r.coll.ReplaceOne(ctx, bson.M{"id": unit.ID}, unit)
	if err != nil {
		return fmt.Errorf("failed to update unit with id %s: %w", unit.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("unit with id %s: %w", unit.ID, repository.ErrNotFound)
	}
	return nil
}

func (r *MongoUnitRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete unit with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("unit with id %s: %w", id, repository.ErrNotFound)
	}
	return nil
}
