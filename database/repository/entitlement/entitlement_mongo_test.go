package entitlementRepo

import (
	"context"
	"testing"
	"time"

	"nursesrent/database/repository"
	userRepo "nursesrent/database/repository/user"
	"nursesrent/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// txRecorder runs transaction bodies inline and counts how each one ended.
type txRecorder struct {
	committed int
	aborted   int
}

func (r *txRecorder) run(ctx context.Context, fn func(sc context.Context) error) error {
	if err := fn(ctx); err != nil {
		r.aborted++
		return err
	}
	r.committed++
	return nil
}

func newTestStore(mt *mtest.T) (*MongoEntitlementStore, *txRecorder) {
	tx := &txRecorder{}
	return &MongoEntitlementStore{
		db:            mt.DB,
		inTx:          tx.run,
		bookings:      mt.Coll,
		properties:    mt.Coll,
		requests:      mt.Coll,
		subscriptions: mt.Coll,
		sessions:      mt.Coll,
	}, tx
}

func commandNames(mt *mtest.T) []string {
	var names []string
	for _, ev := range mt.GetAllStartedEvents() {
		names = append(names, ev.CommandName)
	}
	return names
}

func matched(n int32) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: n})
}

func pendingBooking() *models.Booking {
	return &models.Booking{
		ID: "b1", Status: models.BookingPending, PaymentID: "pi_1", CheckoutSessionID: "cs_1",
		Nurse: "n1", Host: "h1", Property: "p1",
	}
}

func TestMongoConfirmBooking(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("applies every write", func(mt *mtest.T) {
		store, tx := newTestStore(mt)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			matched(1),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}),
			matched(1),
		)

		require.NoError(t, store.ConfirmBooking(context.Background(), pendingBooking(), "r1"))
		assert.Equal(t, []string{"insert", "update", "delete", "update"}, commandNames(mt))
		assert.Equal(t, 1, tx.committed)
	})

	mt.Run("duplicate insert aborts", func(mt *mtest.T) {
		store, tx := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		err := store.ConfirmBooking(context.Background(), pendingBooking(), "r1")
		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.Equal(t, []string{"insert"}, commandNames(mt))
		assert.Equal(t, 1, tx.aborted)
		assert.Zero(t, tx.committed)
	})

	mt.Run("missing property aborts", func(mt *mtest.T) {
		store, tx := newTestStore(mt)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			matched(0),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		err := store.ConfirmBooking(context.Background(), pendingBooking(), "r1")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Equal(t, []string{"insert", "update", "find"}, commandNames(mt))
		assert.Equal(t, 1, tx.aborted)
	})

	mt.Run("property booked meanwhile aborts", func(mt *mtest.T) {
		store, tx := newTestStore(mt)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			matched(0),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "id", Value: "p1"}, {Key: "isAvailable", Value: false}}),
		)

		err := store.ConfirmBooking(context.Background(), pendingBooking(), "")
		assert.ErrorIs(t, err, repository.ErrConflict)
		assert.NotContains(t, commandNames(mt), "delete")
		assert.Equal(t, 1, tx.aborted)
	})
}

func TestMongoReplaceSubscription(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	sub := func() *models.Subscription {
		return &models.Subscription{ID: "s2", SubscriptionID: "sub_1", UserID: "h1", CustomerRole: models.RoleHost}
	}

	mt.Run("same subscription is a duplicate", func(mt *mtest.T) {
		store, tx := newTestStore(mt)
		hostsNS := mt.DB.Name() + "." + userRepo.HostsCollection
		subsNS := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, hostsNS, mtest.FirstBatch, bson.D{{Key: "id", Value: "h1"}}),
			mtest.CreateCursorResponse(0, subsNS, mtest.FirstBatch, bson.D{
				{Key: "id", Value: "s1"}, {Key: "subscriptionId", Value: "sub_1"}, {Key: "userId", Value: "h1"},
			}),
		)

		err := store.ReplaceSubscription(context.Background(), sub(), "cs_1")
		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.Equal(t, []string{"find", "find"}, commandNames(mt))
		assert.Equal(t, 1, tx.aborted)
	})

	mt.Run("replaces the previous subscription", func(mt *mtest.T) {
		store, tx := newTestStore(mt)
		hostsNS := mt.DB.Name() + "." + userRepo.HostsCollection
		subsNS := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, hostsNS, mtest.FirstBatch, bson.D{{Key: "id", Value: "h1"}}),
			mtest.CreateCursorResponse(0, subsNS, mtest.FirstBatch, bson.D{
				{Key: "id", Value: "s1"}, {Key: "subscriptionId", Value: "sub_0"}, {Key: "userId", Value: "h1"},
			}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}),
			mtest.CreateSuccessResponse(),
			matched(1),
			matched(1),
		)

		require.NoError(t, store.ReplaceSubscription(context.Background(), sub(), "cs_1"))
		assert.Equal(t, []string{"find", "find", "delete", "insert", "update", "update"}, commandNames(mt))
		assert.Equal(t, 1, tx.committed)
	})

	mt.Run("missing owner aborts", func(mt *mtest.T) {
		store, tx := newTestStore(mt)
		hostsNS := mt.DB.Name() + "." + userRepo.HostsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, hostsNS, mtest.FirstBatch))

		err := store.ReplaceSubscription(context.Background(), sub(), "")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Equal(t, 1, tx.aborted)
	})
}

func TestMongoRevokeSubscription(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unknown subscription", func(mt *mtest.T) {
		store, tx := newTestStore(mt)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := store.RevokeSubscription(context.Background(), "sub_missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Equal(t, 1, tx.aborted)
	})

	mt.Run("returns the revoked subscription", func(mt *mtest.T) {
		store, _ := newTestStore(mt)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
				{Key: "id", Value: "s1"}, {Key: "subscriptionId", Value: "sub_1"},
				{Key: "userId", Value: "h1"}, {Key: "customerRole", Value: string(models.RoleHost)},
			}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}),
			matched(1),
		)

		revoked, err := store.RevokeSubscription(context.Background(), "sub_1")
		require.NoError(t, err)
		assert.Equal(t, "h1", revoked.UserID)
		assert.Equal(t, models.RoleHost, revoked.CustomerRole)
	})
}

func TestMongoCheckInOut(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	in := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)

	mt.Run("check in requires a pending booking", func(mt *mtest.T) {
		store, tx := newTestStore(mt)
		mt.AddMockResponses(matched(0))

		err := store.CheckIn(context.Background(), "b1", "p1", in, in.AddDate(0, 1, 0))
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Equal(t, []string{"update"}, commandNames(mt))
		assert.Equal(t, 1, tx.aborted)
	})

	mt.Run("check in sets the property date", func(mt *mtest.T) {
		store, tx := newTestStore(mt)
		mt.AddMockResponses(matched(1), matched(1))

		require.NoError(t, store.CheckIn(context.Background(), "b1", "p1", in, in.AddDate(0, 1, 0)))
		assert.Equal(t, []string{"update", "update"}, commandNames(mt))
		assert.Equal(t, 1, tx.committed)
	})

	mt.Run("check out requires a checked-in booking", func(mt *mtest.T) {
		store, tx := newTestStore(mt)
		mt.AddMockResponses(matched(0))

		assert.ErrorIs(t, store.CheckOut(context.Background(), "b1", "p1"), repository.ErrNotFound)
		assert.Equal(t, 1, tx.aborted)
	})
}

func TestMongoPurgeHost(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	deleted := func(n int32) bson.D {
		return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n})
	}

	mt.Run("counts what it removed", func(mt *mtest.T) {
		store, _ := newTestStore(mt)
		mt.AddMockResponses(deleted(2), deleted(1), deleted(1), deleted(1))

		res, err := store.PurgeHost(context.Background(), "h1")
		require.NoError(t, err)
		assert.Equal(t, &PurgeResult{BookingRequests: 2, Properties: 1, Subscriptions: 1}, res)
	})

	mt.Run("unknown host aborts", func(mt *mtest.T) {
		store, tx := newTestStore(mt)
		mt.AddMockResponses(deleted(0), deleted(0), deleted(0), deleted(0))

		_, err := store.PurgeHost(context.Background(), "h_missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Equal(t, 1, tx.aborted)
	})
}
