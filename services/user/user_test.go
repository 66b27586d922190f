package user

import (
	"context"
	"testing"
	"time"

	"nursesrent/database/repository"
	"nursesrent/database/repository/memory"
	"nursesrent/models"
	"nursesrent/services/ledger"
	"nursesrent/services/ledger/ledgertest"
	"nursesrent/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type revoked struct {
	role   models.Role
	userID string
}

type recordingRevoker struct{ calls []revoked }

func (r *recordingRevoker) Revoke(_ context.Context, role models.Role, userID string) {
	r.calls = append(r.calls, revoked{role, userID})
}

type fixture struct {
	store   *memory.Store
	ledger  *ledgertest.Fake
	revoker *recordingRevoker
	svc     *DefaultUserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	fake := ledgertest.New()
	rev := &recordingRevoker{}
	return &fixture{
		store:   store,
		ledger:  fake,
		revoker: rev,
		svc: &DefaultUserService{
			Repo:          store.Users(),
			Subscriptions: store.Subscriptions(),
			Entitlements:  store.Entitlements(),
			Ledger:        fake,
			Tokens:        rev,
			Logger:        zap.NewNop(),
			Now:           func() time.Time { return time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC) },
		},
	}
}

func (f *fixture) host(t *testing.T, id string, verified bool) {
	t.Helper()
	require.NoError(t, f.store.Users().CreateHost(context.Background(), &models.Host{UserProfile: models.UserProfile{
		ID: id, Email: id + "@example.com", Name: id, IsVerified: verified, IsActive: true,
	}}))
}

// subscribe gives hostID an active recurring subscription known to both sides.
func (f *fixture) subscribe(t *testing.T, hostID, externalID string) {
	t.Helper()
	f.ledger.PutSubscription(&ledger.Subscription{ID: externalID, Status: ledger.SubscriptionStatusActive})
	require.NoError(t, f.store.Entitlements().ReplaceSubscription(context.Background(), &models.Subscription{
		ID: "local_" + externalID, SubscriptionID: externalID, SubscriptionStatus: ledger.SubscriptionStatusActive,
		UserID: hostID, CustomerRole: models.RoleHost,
	}, ""))
}

func TestConnectPaymentsForHost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.host(t, "h1", true)

	res, err := f.svc.ConnectPayments(ctx, models.RoleHost, "h1", "203.0.113.7")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccountID)
	assert.NotEmpty(t, res.CustomerID)

	host, err := f.store.Users().GetHost(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, host.IsConnected)
	assert.Equal(t, res.AccountID, host.StripeAccountID)
	assert.Equal(t, res.CustomerID, host.StripeCustomerID)
	assert.True(t, host.CanReceivePayouts())

	_, err = f.svc.ConnectPayments(ctx, models.RoleHost, "h1", "203.0.113.7")
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
	assert.Equal(t, 1, f.ledger.Calls("CreateConnectedAccount"))
}

func TestConnectPaymentsForNurse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Users().CreateNurse(ctx, &models.Nurse{UserProfile: models.UserProfile{
		ID: "n1", Email: "n1@example.com", IsVerified: true, IsActive: true,
	}}))

	res, err := f.svc.ConnectPayments(ctx, models.RoleNurse, "n1", "")
	require.NoError(t, err)
	assert.Empty(t, res.AccountID)
	assert.NotEmpty(t, res.CustomerID)
	assert.Equal(t, 0, f.ledger.Calls("CreateConnectedAccount"))

	_, err = f.svc.ConnectPayments(ctx, models.RoleNurse, "n1", "")
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
}

func TestConnectPaymentsRequiresVerification(t *testing.T) {
	f := newFixture(t)
	f.host(t, "h1", false)

	_, err := f.svc.ConnectPayments(context.Background(), models.RoleHost, "h1", "")
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
	assert.Equal(t, 0, f.ledger.Calls("CreateCustomer"))
}

func TestConnectPaymentsLedgerOutage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.host(t, "h1", true)
	f.ledger.FailNext("CreateConnectedAccount", ledgertest.Unavailable())

	_, err := f.svc.ConnectPayments(ctx, models.RoleHost, "h1", "")
	assert.True(t, utils.IsKind(err, utils.KindUpstream))
	host, err := f.store.Users().GetHost(ctx, "h1")
	require.NoError(t, err)
	assert.False(t, host.IsConnected)

	res, err := f.svc.ConnectPayments(ctx, models.RoleHost, "h1", "")
	require.NoError(t, err)
	assert.Equal(t, host.StripeCustomerID, res.CustomerID)
	assert.Equal(t, 1, f.ledger.Calls("CreateCustomer"))
	assert.Equal(t, 2, f.ledger.Calls("CreateConnectedAccount"))
}

func TestConnectPaymentsRetriesAfterCustomerFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.host(t, "h1", true)
	f.ledger.FailNext("CreateCustomer", ledgertest.Unavailable())

	_, err := f.svc.ConnectPayments(ctx, models.RoleHost, "h1", "")
	assert.True(t, utils.IsKind(err, utils.KindUpstream))
	assert.Equal(t, 0, f.ledger.Calls("CreateConnectedAccount"))

	res, err := f.svc.ConnectPayments(ctx, models.RoleHost, "h1", "")
	require.NoError(t, err)
	host, err := f.store.Users().GetHost(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, host.IsConnected)
	assert.Equal(t, res.CustomerID, host.StripeCustomerID)
	assert.Equal(t, res.AccountID, host.StripeAccountID)
	assert.Equal(t, 1, f.ledger.Calls("CreateConnectedAccount"))
}

func TestConnectPaymentsCompletesHostWithoutCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Users().CreateHost(ctx, &models.Host{
		UserProfile:     models.UserProfile{ID: "h1", Email: "h1@example.com", IsVerified: true, IsActive: true},
		StripeAccountID: "acct_h1",
		IsConnected:     true,
	}))

	res, err := f.svc.ConnectPayments(ctx, models.RoleHost, "h1", "")
	require.NoError(t, err)
	assert.Equal(t, "acct_h1", res.AccountID)
	assert.NotEmpty(t, res.CustomerID)
	assert.Equal(t, 0, f.ledger.Calls("CreateConnectedAccount"))

	host, err := f.store.Users().GetHost(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, res.CustomerID, host.StripeCustomerID)

	_, err = f.svc.ConnectPayments(ctx, models.RoleHost, "h1", "")
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
}

func TestCancelSubscriptionLeavesLocalStateToTheWebhook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.host(t, "h1", true)
	f.subscribe(t, "h1", "sub_1")

	require.NoError(t, f.svc.CancelSubscription(ctx, models.RoleHost, "h1"))
	assert.Equal(t, []string{"sub_1"}, f.ledger.Cancelled)

	host, err := f.store.Users().GetHost(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, host.IsSubscriber)
}

func TestCancelSubscriptionWithoutOne(t *testing.T) {
	f := newFixture(t)
	f.host(t, "h1", true)

	err := f.svc.CancelSubscription(context.Background(), models.RoleHost, "h1")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestDeleteHostSaga(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.host(t, "h1", true)
	f.subscribe(t, "h1", "sub_1")
	require.NoError(t, f.store.Properties().Create(ctx, &models.Property{ID: "p1", Host: "h1", Price: 900, IsAvailable: true, IsActive: true}))
	require.NoError(t, f.store.BookingRequests().Create(ctx, &models.BookingRequest{ID: "r1", Host: "h1", Nurse: "n1", Property: "p1", Status: models.RequestPending}))

	result, err := f.svc.DeleteHost(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Properties)
	assert.Equal(t, int64(1), result.BookingRequests)
	assert.Equal(t, int64(1), result.Subscriptions)
	assert.Equal(t, []string{"sub_1"}, f.ledger.Cancelled)
	assert.Equal(t, []revoked{{models.RoleHost, "h1"}}, f.revoker.calls)

	_, err = f.store.Users().GetHost(ctx, "h1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.store.Properties().GetByID(ctx, "p1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteHostAbortsOnLedgerFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.host(t, "h1", true)
	f.subscribe(t, "h1", "sub_1")
	f.ledger.FailNext("CancelSubscription", ledgertest.Unavailable())

	_, err := f.svc.DeleteHost(ctx, "h1")
	assert.True(t, utils.IsKind(err, utils.KindUpstream))

	_, err = f.store.Users().GetHost(ctx, "h1")
	assert.NoError(t, err)
	assert.Empty(t, f.revoker.calls)
}

func TestDeleteHostToleratesSubscriptionGoneAtLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.host(t, "h1", true)
	require.NoError(t, f.store.Entitlements().ReplaceSubscription(ctx, &models.Subscription{
		ID: "local_1", SubscriptionID: "sub_gone", SubscriptionStatus: ledger.SubscriptionStatusActive,
		UserID: "h1", CustomerRole: models.RoleHost,
	}, ""))

	_, err := f.svc.DeleteHost(ctx, "h1")
	require.NoError(t, err)
	_, err = f.store.Users().GetHost(ctx, "h1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
