package subscriptionRepo

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

const Collection = "subscriptions"

// SubscriptionRepository reads subscriptions. Writes go through the entitlement store.
type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Subscription, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Subscription, error)
}

// MongoSubscriptionRepo implements SubscriptionRepository using MongoDB.
type MongoSubscriptionRepo struct {
	coll *mongo.Collection
}

func NewMongoSubscriptionRepo(db *mongo.Database) SubscriptionRepository {
	repo := &MongoSubscriptionRepo{coll: db.Collection(Collection)}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := EnsureIndexes(ctx, repo.coll); err != nil {
		fmt.Printf("failed to create subscription indexes: %v\n", err)
	}
	return repo
}

// EnsureIndexes enforces one subscription per user.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "subscriptionId", Value: 1}}},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoSubscriptionRepo) findOne(ctx context.Context, filter bson.M) (*models.Subscription, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var sub models.Subscription
	if err := r.coll.FindOne(ctx, filter).Decode(&sub); err != nil {
		return nil, repository.Translate(err)
	}
	return &sub, nil
}

func (r *MongoSubscriptionRepo) GetByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := r.findOne(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscription of user %s: %w", userID, err)
	}
	return sub, nil
}

func (r *MongoSubscriptionRepo) GetByExternalID(ctx context.Context, externalID string) (*models.Subscription, error) {
	sub, err := r.findOne(ctx, bson.M{"subscriptionId": externalID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscription %s: %w", externalID, err)
	}
	return sub, nil
}
