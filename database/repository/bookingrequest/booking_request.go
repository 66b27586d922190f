package bookingRequestRepo

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

const Collection = "bookingrequests"

// BookingRequestRepository persists the pre-booking negotiation.
type BookingRequestRepository interface {
	Create(ctx context.Context, request *models.BookingRequest) error
	GetByID(ctx context.Context, id string) (*models.BookingRequest, error)
	// FindOpen returns the nurse's pending or approved request for a property.
	FindOpen(ctx context.Context, nurseID, propertyID string) (*models.BookingRequest, error)
	ListForUser(ctx context.Context, role models.Role, userID string) ([]models.BookingRequest, error)
	// UpdateStatus moves a request from one of from to to. It returns ErrNotFound when the
	// request is missing or not in an allowed state.
	UpdateStatus(ctx context.Context, id string, from []models.BookingRequestStatus, to models.BookingRequestStatus) error
	UpdateMessage(ctx context.Context, id, message string) error
	SetArchived(ctx context.Context, id string, archived bool) error
	Delete(ctx context.Context, id string) error
}

// MongoBookingRequestRepo implements BookingRequestRepository using MongoDB.
type MongoBookingRequestRepo struct {
	coll *mongo.Collection
}

func NewMongoBookingRequestRepo(db *mongo.Database) BookingRequestRepository {
	repo := &MongoBookingRequestRepo{coll: db.Collection(Collection)}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "nurse", Value: 1}, {Key: "property", Value: 1}}},
		{Keys: bson.D{{Key: "host", Value: 1}}},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		fmt.Printf("failed to create booking request indexes: %v\n", err)
	}
	return repo
}

func (r *MongoBookingRequestRepo) Create(ctx context.Context, request *models.BookingRequest) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	now := time.Now()
	request.CreatedAt, request.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, request); err != nil {
		return fmt.Errorf("failed to create booking request: %w", repository.Translate(err))
	}
	return nil
}

func (r *MongoBookingRequestRepo) GetByID(ctx context.Context, id string) (*models.BookingRequest, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var request models.BookingRequest
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&request); err != nil {
		return nil, fmt.Errorf("failed to fetch booking request %s: %w", id, repository.Translate(err))
	}
	return &request, nil
}

func (r *MongoBookingRequestRepo) FindOpen(ctx context.Context, nurseID, propertyID string) (*models.BookingRequest, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"nurse":    nurseID,
		"property": propertyID,
		"status":   bson.M{"$in": bson.A{models.RequestPending, models.RequestApproved}},
	}
	var request models.BookingRequest
	if err := r.coll.FindOne(ctx, filter).Decode(&request); err != nil {
		return nil, fmt.Errorf("failed to find open booking request: %w", repository.Translate(err))
	}
	return &request, nil
}

func (r *MongoBookingRequestRepo) ListForUser(ctx context.Context, role models.Role, userID string) ([]models.BookingRequest, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	field := "nurse"
	if role == models.RoleHost {
		field = "host"
	}
	cursor, err := r.coll.Find(ctx, bson.M{field: userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list booking requests: %w", err)
	}
	var requests []models.BookingRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode booking requests: %w", err)
	}
	return requests, nil
}

func (r *MongoBookingRequestRepo) update(ctx context.Context, filter, fields bson.M) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	fields["updatedAt"] = time.Now()
	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update booking request: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MongoBookingRequestRepo) UpdateStatus(ctx context.Context, id string, from []models.BookingRequestStatus, to models.BookingRequestStatus) error {
	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	return r.update(ctx, filter, bson.M{"status": to})
}

func (r *MongoBookingRequestRepo) UpdateMessage(ctx context.Context, id, message string) error {
	filter := bson.M{"id": id, "status": models.RequestPending}
	return r.update(ctx, filter, bson.M{"message": message})
}

func (r *MongoBookingRequestRepo) SetArchived(ctx context.Context, id string, archived bool) error {
	return r.update(ctx, bson.M{"id": id}, bson.M{"isArchived": archived})
}

func (r *MongoBookingRequestRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete booking request %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("booking request %s: %w", id, repository.ErrNotFound)
	}
	return nil
}
