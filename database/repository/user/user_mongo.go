package userRepo

import (
	"context"
	"fmt"
	"time"

	"nursesrent/database/repository"
	"nursesrent/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	HostsCollection  = "hosts"
	NursesCollection = "nurses"
)

// MongoUserRepo implements UserRepository using MongoDB.
type MongoUserRepo struct {
	hosts  *mongo.Collection
	nurses *mongo.Collection
}

// NewMongoUserRepo creates a new instance of UserRepository using MongoDB.
func NewMongoUserRepo(db *mongo.Database) UserRepository {
	repo := &MongoUserRepo{
		hosts:  db.Collection(HostsCollection),
		nurses: db.Collection(NursesCollection),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, coll := range []*mongo.Collection{repo.hosts, repo.nurses} {
		if err := ensureIndexes(ctx, coll); err != nil {
			fmt.Printf("failed to create indexes: %v\n", err)
		}
	}
	return repo
}

// CollectionFor returns the collection that stores accounts of role.
func CollectionFor(db *mongo.Database, role models.Role) *mongo.Collection {
	if role == models.RoleHost {
		return db.Collection(HostsCollection)
	}
	return db.Collection(NursesCollection)
}

func (r *MongoUserRepo) coll(role models.Role) *mongo.Collection {
	if role == models.RoleHost {
		return r.hosts
	}
	return r.nurses
}

func (r *MongoUserRepo) CreateHost(ctx context.Context, host *models.Host) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	now := time.Now()
	host.CreatedAt, host.UpdatedAt = now, now
	host.Role = models.RoleHost
	if _, err := r.hosts.InsertOne(ctx, host); err != nil {
		return fmt.Errorf("failed to create host: %w", repository.Translate(err))
	}
	return nil
}

func (r *MongoUserRepo) CreateNurse(ctx context.Context, nurse *models.Nurse) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	now := time.Now()
	nurse.CreatedAt, nurse.UpdatedAt = now, now
	nurse.Role = models.RoleNurse
	if _, err := r.nurses.InsertOne(ctx, nurse); err != nil {
		return fmt.Errorf("failed to create nurse: %w", repository.Translate(err))
	}
	return nil
}

func (r *MongoUserRepo) GetHost(ctx context.Context, id string) (*models.Host, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var host models.Host
	if err := r.hosts.FindOne(ctx, bson.M{"id": id}).Decode(&host); err != nil {
		return nil, fmt.Errorf("failed to fetch host with id %s: %w", id, repository.Translate(err))
	}
	return &host, nil
}

func (r *MongoUserRepo) GetNurse(ctx context.Context, id string) (*models.Nurse, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var nurse models.Nurse
	if err := r.nurses.FindOne(ctx, bson.M{"id": id}).Decode(&nurse); err != nil {
		return nil, fmt.Errorf("failed to fetch nurse with id %s: %w", id, repository.Translate(err))
	}
	return &nurse, nil
}

func (r *MongoUserRepo) GetAccount(ctx context.Context, role models.Role, id string) (models.Account, error) {
	switch role {
	case models.RoleHost:
		host, err := r.GetHost(ctx, id)
		if err != nil {
			return nil, err
		}
		return host, nil
	case models.RoleNurse:
		nurse, err := r.GetNurse(ctx, id)
		if err != nil {
			return nil, err
		}
		return nurse, nil
	default:
		return nil, fmt.Errorf("unknown role %q: %w", role, repository.ErrNotFound)
	}
}

func (r *MongoUserRepo) GetByEmail(ctx context.Context, role models.Role, email string) (models.Account, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	res := r.coll(role).FindOne(ctx, bson.M{"email": email})
	var account models.Account
	if role == models.RoleHost {
		account = &models.Host{}
	} else {
		account = &models.Nurse{}
	}
	if err := res.Decode(account); err != nil {
		return nil, fmt.Errorf("failed to fetch %s with email %s: %w", role, email, repository.Translate(err))
	}
	return account, nil
}

func (r *MongoUserRepo) updateFields(ctx context.Context, role models.Role, id string, fields bson.M) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	fields["updatedAt"] = time.Now()
	result, err := r.coll(role).UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update %s with id %s: %w", role, id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%s with id %s: %w", role, id, repository.ErrNotFound)
	}
	return nil
}

func (r *MongoUserRepo) UpdateTokenHash(ctx context.Context, role models.Role, id, tokenHash string) error {
	return r.updateFields(ctx, role, id, bson.M{"tokenHash": tokenHash})
}

func (r *MongoUserRepo) SetCustomerID(ctx context.Context, role models.Role, id, customerID string) error {
	return r.updateFields(ctx, role, id, bson.M{"stripeCustomerId": customerID})
}

func (r *MongoUserRepo) SetConnectedAccount(ctx context.Context, hostID, accountID string) error {
	return r.updateFields(ctx, models.RoleHost, hostID, bson.M{"stripeAccountId": accountID, "isConnected": true})
}

func (r *MongoUserRepo) SetVerified(ctx context.Context, role models.Role, id string) error {
	return r.updateFields(ctx, role, id, bson.M{"isVerified": true})
}
