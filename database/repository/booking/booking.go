package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"nursesrent/database/repository"
	"nursesrent/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "bookings"

// BookingRepository reads bookings and toggles the per-side archive flags.
// Bookings are created and checked in/out by the entitlement store.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*models.Booking, error)
	ListForUser(ctx context.Context, role models.Role, userID string) ([]models.Booking, error)
	SetArchived(ctx context.Context, id string, side models.Role, archived bool) error
}

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

func NewMongoBookingRepo(db *mongo.Database) BookingRepository {
	repo := &MongoBookingRepo{coll: db.Collection(Collection)}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := EnsureIndexes(ctx, repo.coll); err != nil {
		fmt.Printf("failed to create booking indexes: %v\n", err)
	}
	return repo
}

// EnsureIndexes creates the unique payment and session indexes that make booking creation idempotent.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "paymentId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "checkoutSessionId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "host", Value: 1}}},
		{Keys: bson.D{{Key: "nurse", Value: 1}}},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) findOne(ctx context.Context, filter bson.M) (*models.Booking, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, filter).Decode(&booking); err != nil {
		return nil, repository.Translate(err)
	}
	return &booking, nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := r.findOne(ctx, bson.M{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking with id %s: %w", id, err)
	}
	return booking, nil
}

func (r *MongoBookingRepo) GetByPaymentID(ctx context.Context, paymentID string) (*models.Booking, error) {
	booking, err := r.findOne(ctx, bson.M{"paymentId": paymentID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking with payment %s: %w", paymentID, err)
	}
	return booking, nil
}

func (r *MongoBookingRepo) ListForUser(ctx context.Context, role models.Role, userID string) ([]models.Booking, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	field := "nurse"
	if role == models.RoleHost {
		field = "host"
	}
	cursor, err := r.coll.Find(ctx, bson.M{field: userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) SetArchived(ctx context.Context, id string, side models.Role, archived bool) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	field := "isArchivedForNurse"
	if side == models.RoleHost {
		field = "isArchivedForHost"
	}
	update := bson.M{"$set": bson.M{field: archived, "updatedAt": time.Now()}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to archive booking %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("booking %s: %w", id, repository.ErrNotFound)
	}
	return nil
}
