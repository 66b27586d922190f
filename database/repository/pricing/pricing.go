package pricingRepo

import (
	"context"
	"fmt"
	"time"

	"nursesrent/database/repository"
	"nursesrent/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "subscriptionpricings"

// PricingRepository stores the plan offered to each role.
type PricingRepository interface {
	GetByRole(ctx context.Context, role models.Role) (*models.SubscriptionPricing, error)
	// EnsureDefault inserts pricing when the role has none yet.
	EnsureDefault(ctx context.Context, pricing *models.SubscriptionPricing) error
	SetLedgerIDs(ctx context.Context, role models.Role, planID, priceID, productID string) error
}

// MongoPricingRepo implements PricingRepository using MongoDB.
type MongoPricingRepo struct {
	coll *mongo.Collection
}

func NewMongoPricingRepo(db *mongo.Database) PricingRepository {
	repo := &MongoPricingRepo{coll: db.Collection(Collection)}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userRole", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		fmt.Printf("failed to create pricing indexes: %v\n", err)
	}
	return repo
}

func (r *MongoPricingRepo) GetByRole(ctx context.Context, role models.Role) (*models.SubscriptionPricing, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var pricing models.SubscriptionPricing
	if err := r.coll.FindOne(ctx, bson.M{"userRole": role}).Decode(&pricing); err != nil {
		return nil, fmt.Errorf("failed to fetch pricing for %s: %w", role, repository.Translate(err))
	}
	return &pricing, nil
}

func (r *MongoPricingRepo) EnsureDefault(ctx context.Context, pricing *models.SubscriptionPricing) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	if pricing.ID == "" {
		pricing.ID = uuid.New().String()
	}
	pricing.UpdatedAt = time.Now()
	update := bson.M{"$setOnInsert": pricing}
	opts := options.Update().SetUpsert(true)
	if _, err := r.coll.UpdateOne(ctx, bson.M{"userRole": pricing.UserRole}, update, opts); err != nil {
		return fmt.Errorf("failed to seed pricing for %s: %w", pricing.UserRole, err)
	}
	return nil
}

func (r *MongoPricingRepo) SetLedgerIDs(ctx context.Context, role models.Role, planID, priceID, productID string) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"stripePlanId":    planID,
		"stripePriceId":   priceID,
		"stripeProductId": productID,
		"updatedAt":       time.Now(),
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"userRole": role}, update)
	if err != nil {
		return fmt.Errorf("failed to update pricing for %s: %w", role, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("pricing for %s: %w", role, repository.ErrNotFound)
	}
	return nil
}
