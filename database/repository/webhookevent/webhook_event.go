package webhookEventRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nursesrent/database/repository"
	"nursesrent/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "webhookevents"

// WebhookEventRepository is the log of processed deliveries.
type WebhookEventRepository interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	// Record stores a processed event. Recording the same event twice is not an error.
	Record(ctx context.Context, event *models.WebhookEvent) error
}

// MongoWebhookEventRepo implements WebhookEventRepository using MongoDB.
type MongoWebhookEventRepo struct {
	coll *mongo.Collection
}

func NewMongoWebhookEventRepo(db *mongo.Database) WebhookEventRepository {
	repo := &MongoWebhookEventRepo{coll: db.Collection(Collection)}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "eventId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "processedAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(int32((90 * 24 * time.Hour).Seconds()))},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		fmt.Printf("failed to create webhook event indexes: %v\n", err)
	}
	return repo
}

func (r *MongoWebhookEventRepo) Seen(ctx context.Context, eventID string) (bool, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{"eventId": eventID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to look up webhook event %s: %w", eventID, err)
	}
	return count > 0, nil
}

func (r *MongoWebhookEventRepo) Record(ctx context.Context, event *models.WebhookEvent) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	if event.ProcessedAt.IsZero() {
		event.ProcessedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, event); err != nil {
		if errors.Is(repository.Translate(err), repository.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("failed to record webhook event %s: %w", event.EventID, err)
	}
	return nil
}
