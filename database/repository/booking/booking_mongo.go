package bookingRepo

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

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

func NewMongoBookingRepo(db *mongo.Database) *MongoBookingRepo {
	return &MongoBookingRepo{coll: db.Collection("bookings")}
}

// EnsureIndexes creates the unique code index and the overlap lookup index.
func (r *MongoBookingRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("booking_id_unique")},
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true).SetName("booking_code_unique")},
		{
			Keys: bson.D{
				{Key: "unit_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "start", Value: 1},
				{Key: "end", Value: 1},
			},
			Options: options.Index().SetName("booking_unit_status_range"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to insert booking: %w", repository.Translate(err))
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		return nil, fmt.Errorf("error fetching booking with id %s: %w", id, repository.Translate(err))
	}
	return &booking, nil
}

func (r *MongoBookingRepo) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	query := bson.M{}
	if filter.UnitID != "" {
		query["unit_id"] = filter.UnitID
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}, {Key: "created_at", Value: 1}})
	return r.find(ctx, query, opts)
}

func (r *MongoBookingRepo) FindOverlapping(ctx context.Context, unitID string, dr models.DateRange, excludeID string) ([]models.Booking, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	// Strict half-open overlap: start < other.end && end > other.start.
	query := bson.M{
		"unit_id": unitID,
		"status":  bson.M{"$in": models.OccupyingStatuses()},
		"start":   bson.M{"$lt": dr.End},
		"end":     bson.M{"$gt": dr.Start},
	}
	if excludeID != "" {
		query["id"] = bson.M{"$ne": excludeID}
	}
	return r.find(ctx, query, options.Find().SetSort(bson.D{{Key: "start", Value: 1}}))
}

func (r *MongoBookingRepo) CountOccupying(ctx context.Context, unitID string) (int64, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{
		"unit_id": unitID,
		"status":  bson.M{"$in": models.OccupyingStatuses()},
	})
	if err != nil {
		return 0, fmt.Errorf("error counting bookings of unit %s: %w", unitID, err)
	}
	return n, nil
}

func (r *MongoBookingRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"code": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking booking code: %w", err)
	}
	return n > 0, nil
}

func (r *MongoBookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	booking.UpdatedAt = time.Now().UTC()
	result, err := r.coll.ReplaceOne(ctx, bson.M{"id": booking.ID}, booking)
	if err != nil {
		return fmt.Errorf("failed to update booking with id %s: %w", booking.ID, repository.Translate(err))
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("booking with id %s: %w", booking.ID, repository.ErrNotFound)
	}
	return nil
}

func (r *MongoBookingRepo) SetGuestID(ctx context.Context, id, guestID string) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{"guest_id": guestID, "updated_at": time.Now().UTC()}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to link guest to booking %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("booking with id %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *MongoBookingRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete booking with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("booking with id %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *MongoBookingRepo) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]models.Booking, error) {
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, nil
}
