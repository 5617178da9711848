package guestRepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"maisonette/database/repository"
	"maisonette/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoGuestRepo implements GuestRepository using MongoDB.
type MongoGuestRepo struct {
	coll *mongo.Collection
}

func NewMongoGuestRepo(db *mongo.Database) *MongoGuestRepo {
	return &MongoGuestRepo{coll: db.Collection("guests")}
}

// EnsureIndexes creates indexes for fields frequently used in queries.
func (r *MongoGuestRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create guest indexes: %w", err)
	}
	return nil
}

// Create inserts a new guest document.
func (r *MongoGuestRepo) Create(ctx context.Context, guest *models.Guest) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	guest.Email = strings.ToLower(guest.Email)
	guest.CreatedAt = now
	guest.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, guest); err != nil {
		return fmt.Errorf("failed to create guest: %w", repository.Translate(err))
	}
	return nil
}

// GetByID retrieves a guest by its unique ID.
func (r *MongoGuestRepo) GetByID(ctx context.Context, id string) (*models.Guest, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

// GetByEmail retrieves a guest by e-mail, case-insensitively.
func (r *MongoGuestRepo) GetByEmail(ctx context.Context, email string) (*models.Guest, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *MongoGuestRepo) SetBookingCode(ctx context.Context, id, code string) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{"booking_code": code, "updated_at": time.Now().UTC()}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update guest with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("guest with id %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *MongoGuestRepo) findOne(ctx context.Context, filter bson.M) (*models.Guest, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var guest models.Guest
	if err := r.coll.FindOne(ctx, filter).Decode(&guest); err != nil {
		return nil, fmt.Errorf("failed to fetch guest: %w", repository.Translate(err))
	}
	return &guest, nil
}
