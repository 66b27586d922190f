package entitlementRepo

import (
	"context"
	"fmt"
	"time"

	"nursesrent/database"
	"nursesrent/database/repository"
	bookingRepo "nursesrent/database/repository/booking"
	bookingRequestRepo "nursesrent/database/repository/bookingrequest"
	checkoutSessionRepo "nursesrent/database/repository/checkoutsession"
	propertyRepo "nursesrent/database/repository/property"
	subscriptionRepo "nursesrent/database/repository/subscription"
	userRepo "nursesrent/database/repository/user"
	"nursesrent/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// txRunner runs fn as one transaction, aborting it when fn fails.
type txRunner func(ctx context.Context, fn func(sc context.Context) error) error

func mongoTransactions(client *mongo.Client) txRunner {
	return func(ctx context.Context, fn func(sc context.Context) error) error {
		return database.WithTransaction(ctx, client, func(sc mongo.SessionContext) error {
			return fn(sc)
		})
	}
}

// MongoEntitlementStore implements Store with multi-document transactions.
type MongoEntitlementStore struct {
	db            *mongo.Database
	inTx          txRunner
	bookings      *mongo.Collection
	properties    *mongo.Collection
	requests      *mongo.Collection
	subscriptions *mongo.Collection
	sessions      *mongo.Collection
}

func NewMongoEntitlementStore(db *mongo.Database) Store {
	return &MongoEntitlementStore{
		db:            db,
		inTx:          mongoTransactions(db.Client()),
		bookings:      db.Collection(bookingRepo.Collection),
		properties:    db.Collection(propertyRepo.Collection),
		requests:      db.Collection(bookingRequestRepo.Collection),
		subscriptions: db.Collection(subscriptionRepo.Collection),
		sessions:      db.Collection(checkoutSessionRepo.Collection),
	}
}

func (s *MongoEntitlementStore) users(role models.Role) *mongo.Collection {
	return userRepo.CollectionFor(s.db, role)
}

func (s *MongoEntitlementStore) completeSession(sc context.Context, sessionID string, now time.Time) error {
	if sessionID == "" {
		return nil
	}
	filter := bson.M{"sessionId": sessionID, "status": models.CheckoutInitiated}
	update := bson.M{"$set": bson.M{"status": models.CheckoutCompleted, "updatedAt": now}}
	if _, err := s.sessions.UpdateOne(sc, filter, update); err != nil {
		return fmt.Errorf("complete checkout session %s: %w", sessionID, err)
	}
	return nil
}

func (s *MongoEntitlementStore) ConfirmBooking(ctx context.Context, booking *models.Booking, bookingRequestID string) error {
	now := time.Now()
	booking.CreatedAt, booking.UpdatedAt = now, now

	return s.inTx(ctx, func(sc context.Context) error {
		if _, err := s.bookings.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking for payment %s: %w", booking.PaymentID, repository.Translate(err))
		}

		update := bson.M{"$set": bson.M{"isAvailable": false, "updatedAt": now}}
		res, err := s.properties.UpdateOne(sc, bson.M{"id": booking.Property, "isAvailable": true}, update)
		if err != nil {
			return fmt.Errorf("mark property %s booked: %w", booking.Property, err)
		}
		if res.MatchedCount == 0 {
			if err := s.properties.FindOne(sc, bson.M{"id": booking.Property}).Err(); err != nil {
				return fmt.Errorf("property %s: %w", booking.Property, repository.Translate(err))
			}
			return fmt.Errorf("property %s is no longer available: %w", booking.Property, repository.ErrConflict)
		}

		if bookingRequestID != "" {
			if _, err := s.requests.DeleteOne(sc, bson.M{"id": bookingRequestID}); err != nil {
				return fmt.Errorf("consume booking request %s: %w", bookingRequestID, err)
			}
		}

		return s.completeSession(sc, booking.CheckoutSessionID, now)
	})
}

func (s *MongoEntitlementStore) ReplaceSubscription(ctx context.Context, sub *models.Subscription, sessionID string) error {
	now := time.Now()
	sub.CreatedAt = now
	users := s.users(sub.CustomerRole)

	return s.inTx(ctx, func(sc context.Context) error {
		if err := users.FindOne(sc, bson.M{"id": sub.UserID}).Err(); err != nil {
			return fmt.Errorf("owner %s of subscription: %w", sub.UserID, repository.Translate(err))
		}

		var current models.Subscription
		err := s.subscriptions.FindOne(sc, bson.M{"userId": sub.UserID}).Decode(&current)
		switch {
		case err == nil && current.SubscriptionID == sub.SubscriptionID:
			return fmt.Errorf("subscription %s: %w", sub.SubscriptionID, repository.ErrDuplicate)
		case err != nil && repository.Translate(err) != repository.ErrNotFound:
			return fmt.Errorf("load current subscription: %w", err)
		}

		if _, err := s.subscriptions.DeleteMany(sc, bson.M{"userId": sub.UserID}); err != nil {
			return fmt.Errorf("remove previous subscription: %w", err)
		}
		if _, err := s.subscriptions.InsertOne(sc, sub); err != nil {
			return fmt.Errorf("insert subscription: %w", repository.Translate(err))
		}

		update := bson.M{"$set": bson.M{"isSubscriber": true, "subscription": sub.ID, "updatedAt": now}}
		if _, err := users.UpdateOne(sc, bson.M{"id": sub.UserID}, update); err != nil {
			return fmt.Errorf("flag subscriber %s: %w", sub.UserID, err)
		}

		return s.completeSession(sc, sessionID, now)
	})
}

func (s *MongoEntitlementStore) RevokeSubscription(ctx context.Context, externalID string) (*models.Subscription, error) {
	var revoked models.Subscription
	err := s.inTx(ctx, func(sc context.Context) error {
		if err := s.subscriptions.FindOne(sc, bson.M{"subscriptionId": externalID}).Decode(&revoked); err != nil {
			return fmt.Errorf("subscription %s: %w", externalID, repository.Translate(err))
		}
		if _, err := s.subscriptions.DeleteOne(sc, bson.M{"id": revoked.ID}); err != nil {
			return fmt.Errorf("delete subscription %s: %w", externalID, err)
		}

		filter := bson.M{"id": revoked.UserID, "subscription": revoked.ID}
		update := bson.M{"$set": bson.M{"isSubscriber": false, "subscription": nil, "updatedAt": time.Now()}}
		if _, err := s.users(revoked.CustomerRole).UpdateOne(sc, filter, update); err != nil {
			return fmt.Errorf("clear subscriber %s: %w", revoked.UserID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &revoked, nil
}

func (s *MongoEntitlementStore) CheckIn(ctx context.Context, bookingID, propertyID string, checkIn, checkOut time.Time) error {
	now := time.Now()
	return s.inTx(ctx, func(sc context.Context) error {
		filter := bson.M{"id": bookingID, "status": models.BookingPending}
		update := bson.M{"$set": bson.M{
			"status":       models.BookingCheckedIn,
			"checkInDate":  checkIn,
			"checkOutDate": checkOut,
			"updatedAt":    now,
		}}
		res, err := s.bookings.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("check in booking %s: %w", bookingID, err)
		}
		if res.MatchedCount == 0 {
			return fmt.Errorf("pending booking %s: %w", bookingID, repository.ErrNotFound)
		}

		propUpdate := bson.M{"$set": bson.M{"availableFrom": checkOut, "updatedAt": now}}
		if _, err := s.properties.UpdateOne(sc, bson.M{"id": propertyID}, propUpdate); err != nil {
			return fmt.Errorf("set property %s availability date: %w", propertyID, err)
		}
		return nil
	})
}

func (s *MongoEntitlementStore) CheckOut(ctx context.Context, bookingID, propertyID string) error {
	now := time.Now()
	return s.inTx(ctx, func(sc context.Context) error {
		filter := bson.M{"id": bookingID, "status": models.BookingCheckedIn}
		update := bson.M{"$set": bson.M{"status": models.BookingCheckedOut, "updatedAt": now}}
		res, err := s.bookings.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("check out booking %s: %w", bookingID, err)
		}
		if res.MatchedCount == 0 {
			return fmt.Errorf("checked-in booking %s: %w", bookingID, repository.ErrNotFound)
		}

		propUpdate := bson.M{"$set": bson.M{"isAvailable": true, "availableFrom": nil, "updatedAt": now}}
		if _, err := s.properties.UpdateOne(sc, bson.M{"id": propertyID}, propUpdate); err != nil {
			return fmt.Errorf("release property %s: %w", propertyID, err)
		}
		return nil
	})
}

func (s *MongoEntitlementStore) PurgeHost(ctx context.Context, hostID string) (*PurgeResult, error) {
	result := &PurgeResult{}
	err := s.inTx(ctx, func(sc context.Context) error {
		requests, err := s.requests.DeleteMany(sc, bson.M{"host": hostID})
		if err != nil {
			return fmt.Errorf("delete booking requests of host %s: %w", hostID, err)
		}
		properties, err := s.properties.DeleteMany(sc, bson.M{"host": hostID})
		if err != nil {
			return fmt.Errorf("delete properties of host %s: %w", hostID, err)
		}
		subs, err := s.subscriptions.DeleteMany(sc, bson.M{"userId": hostID})
		if err != nil {
			return fmt.Errorf("delete subscription of host %s: %w", hostID, err)
		}
		res, err := s.users(models.RoleHost).DeleteOne(sc, bson.M{"id": hostID})
		if err != nil {
			return fmt.Errorf("delete host %s: %w", hostID, err)
		}
		if res.DeletedCount == 0 {
			return fmt.Errorf("host %s: %w", hostID, repository.ErrNotFound)
		}

		result.BookingRequests = requests.DeletedCount
		result.Properties = properties.DeletedCount
		result.Subscriptions = subs.DeletedCount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
