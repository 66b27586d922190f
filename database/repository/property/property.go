package propertyRepo

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

const Collection = "properties"

// PropertyRepository reads and creates listings. Availability changes go through the entitlement store.
type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, id string) (*models.Property, error)
	ListByHost(ctx context.Context, hostID string) ([]models.Property, error)
}

// MongoPropertyRepo implements PropertyRepository using MongoDB.
type MongoPropertyRepo struct {
	coll *mongo.Collection
}

func NewMongoPropertyRepo(db *mongo.Database) PropertyRepository {
	repo := &MongoPropertyRepo{coll: db.Collection(Collection)}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "host", Value: 1}}},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		fmt.Printf("failed to create property indexes: %v\n", err)
	}
	return repo
}

func (r *MongoPropertyRepo) Create(ctx context.Context, property *models.Property) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	now := time.Now()
	property.CreatedAt, property.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, property); err != nil {
		return fmt.Errorf("failed to create property: %w", repository.Translate(err))
	}
	return nil
}

func (r *MongoPropertyRepo) GetByID(ctx context.Context, id string) (*models.Property, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var property models.Property
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&property); err != nil {
		return nil, fmt.Errorf("failed to fetch property with id %s: %w", id, repository.Translate(err))
	}
	return &property, nil
}

func (r *MongoPropertyRepo) ListByHost(ctx context.Context, hostID string) ([]models.Property, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"host": hostID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list properties for host %s: %w", hostID, err)
	}
	var properties []models.Property
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	return properties, nil
}
