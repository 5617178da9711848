package ratesRepo

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

// MongoRatesRepo implements RatesRepository using MongoDB.
type MongoRatesRepo struct {
	periods   *mongo.Collection
	discounts *mongo.Collection
	settings  *mongo.Collection
}

func NewMongoRatesRepo(db *mongo.Database) *MongoRatesRepo {
	return &MongoRatesRepo{
		periods:   db.Collection("rate_periods"),
		discounts: db.Collection("long_stay_discounts"),
		settings:  db.Collection("pricing_settings"),
	}
}

func (r *MongoRatesRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	byUnit := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "unit_id", Value: 1}, {Key: "created_at", Value: 1}}},
	}
	if _, err := r.periods.Indexes().CreateMany(ctx, byUnit); err != nil {
		return fmt.Errorf("failed to create rate period indexes: %w", err)
	}
	if _, err := r.discounts.Indexes().CreateMany(ctx, byUnit); err != nil {
		return fmt.Errorf("failed to create discount indexes: %w", err)
	}
	return nil
}

func (r *MongoRatesRepo) CreatePeriod(ctx context.Context, p *models.RatePeriod) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	if _, err := r.periods.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert rate period: %w", repository.Translate(err))
	}
	return nil
}

func (r *MongoRatesRepo) GetPeriod(ctx context.Context, id string) (*models.RatePeriod, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var p models.RatePeriod
	if err := r.periods.FindOne(ctx, bson.M{"id": id}).Decode(&p); err != nil {
		return nil, fmt.Errorf("error fetching rate period %s: %w", id, repository.Translate(err))
	}
	return &p, nil
}

func (r *MongoRatesRepo) ListPeriods(ctx context.Context, unitID string) ([]models.RatePeriod, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "id", Value: 1}})
	cursor, err := r.periods.Find(ctx, bson.M{"unit_id": unitID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching rate periods: %w", err)
	}
	defer cursor.Close(ctx)

	periods := []models.RatePeriod{}
	if err := cursor.All(ctx, &periods); err != nil {
		return nil, fmt.Errorf("error decoding rate periods: %w", err)
	}
	return periods, nil
}

func (r *MongoRatesRepo) UpdatePeriod(ctx context.Context, p *models.RatePeriod) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	result, err := r.periods.ReplaceOne(ctx, bson.M{"id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("failed to update rate period %s: %w", p.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("rate period %s: %w", p.ID, repository.ErrNotFound)
	}
	return nil
}

func (r *MongoRatesRepo) DeletePeriod(ctx context.Context, id string) error {
	return r.deleteOne(ctx, r.periods, "rate period", id)
}

func (r *MongoRatesRepo) CreateDiscount(ctx context.Context, d *models.LongStayDiscount) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	if _, err := r.discounts.InsertOne(ctx, d); err != nil {
		return fmt.Errorf("failed to insert discount: %w", repository.Translate(err))
	}
	return nil
}

func (r *MongoRatesRepo) ListDiscounts(ctx context.Context, unitID string) ([]models.LongStayDiscount, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "id", Value: 1}})
	cursor, err := r.discounts.Find(ctx, bson.M{"unit_id": unitID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching discounts: %w", err)
	}
	defer cursor.Close(ctx)

	discounts := []models.LongStayDiscount{}
	if err := cursor.All(ctx, &discounts); err != nil {
		return nil, fmt.Errorf("error decoding discounts: %w", err)
	}
	return discounts, nil
}

func (r *MongoRatesRepo) DeleteDiscount(ctx context.Context, id string) error {
	return r.deleteOne(ctx, r.discounts, "discount", id)
}

func (r *MongoRatesRepo) DeleteByUnit(ctx context.Context, unitID string) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	if _, err := r.periods.DeleteMany(ctx, bson.M{"unit_id": unitID}); err != nil {
		return fmt.Errorf("failed to delete rate periods of unit %s: %w", unitID, err)
	}
	if _, err := r.discounts.DeleteMany(ctx, bson.M{"unit_id": unitID}); err != nil {
		return fmt.Errorf("failed to delete discounts of unit %s: %w", unitID, err)
	}
	return nil
}

func (r *MongoRatesRepo) GetSettings(ctx context.Context) (*models.PricingSettings, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var s models.PricingSettings
	if err := r.settings.FindOne(ctx, bson.M{"id": models.PricingSettingsID}).Decode(&s); err != nil {
		return nil, fmt.Errorf("error fetching pricing settings: %w", repository.Translate(err))
	}
	return &s, nil
}

func (r *MongoRatesRepo) SaveSettings(ctx context.Context, s *models.PricingSettings) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	s.ID = models.PricingSettingsID
	opts := options.Replace().SetUpsert(true)
	if _, err := r.settings.ReplaceOne(ctx, bson.M{"id": s.ID}, s, opts); err != nil {
		return fmt.Errorf("failed to save pricing settings: %w", err)
	}
	return nil
}

func (r *MongoRatesRepo) deleteOne(ctx context.Context, coll *mongo.Collection, what, id string) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	result, err := coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", what, id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%s %s: %w", what, id, repository.ErrNotFound)
	}
	return nil
}
