package checkoutSessionRepo

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

const Collection = "checkoutsessions"

// CheckoutSessionRepository tracks the correlation record of every checkout session we create.
type CheckoutSessionRepository interface {
	Create(ctx context.Context, session *models.CheckoutSession) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.CheckoutSession, error)
	// Transition moves the session to `to` only from `from`. It reports whether a document moved.
	Transition(ctx context.Context, sessionID string, from, to models.CheckoutStatus) (bool, error)
}

// MongoCheckoutSessionRepo implements CheckoutSessionRepository using MongoDB.
type MongoCheckoutSessionRepo struct {
	coll *mongo.Collection
}

func NewMongoCheckoutSessionRepo(db *mongo.Database) CheckoutSessionRepository {
	repo := &MongoCheckoutSessionRepo{coll: db.Collection(Collection)}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sessionId", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		fmt.Printf("failed to create checkout session indexes: %v\n", err)
	}
	return repo
}

func (r *MongoCheckoutSessionRepo) Create(ctx context.Context, session *models.CheckoutSession) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	now := time.Now()
	session.CreatedAt, session.UpdatedAt = now, now
	if session.Status == "" {
		session.Status = models.CheckoutInitiated
	}
	if _, err := r.coll.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to record checkout session: %w", repository.Translate(err))
	}
	return nil
}

func (r *MongoCheckoutSessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var session models.CheckoutSession
	if err := r.coll.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to fetch checkout session %s: %w", sessionID, repository.Translate(err))
	}
	return &session, nil
}

func (r *MongoCheckoutSessionRepo) Transition(ctx context.Context, sessionID string, from, to models.CheckoutStatus) (bool, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	filter := bson.M{"sessionId": sessionID, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to move checkout session %s to %s: %w", sessionID, to, err)
	}
	return result.ModifiedCount > 0, nil
}
