package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"nursesrent/database/repository"
	"nursesrent/database/repository/memory"
	"nursesrent/models"
	"nursesrent/services/tasks"
	"nursesrent/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scheduledTask struct {
	taskType string
	payload  models.NotificationPayload
	fireAt   time.Time
}

type recordingScheduler struct {
	mu    sync.Mutex
	tasks []scheduledTask
}

func (r *recordingScheduler) Schedule(_ context.Context, taskType string, payload models.NotificationPayload, fireAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, scheduledTask{taskType, payload, fireAt})
	return nil
}

var checkInTime = time.Date(2025, time.January, 31, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store     *memory.Store
	scheduler *recordingScheduler
	svc       *DefaultBookingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	sched := &recordingScheduler{}
	svc := &DefaultBookingService{
		Users:        store.Users(),
		Properties:   store.Properties(),
		Requests:     store.BookingRequests(),
		Bookings:     store.Bookings(),
		Entitlements: store.Entitlements(),
		Scheduler:    sched,
		Logger:       zap.NewNop(),
		Now:          func() time.Time { return checkInTime },
	}
	f := &fixture{store: store, scheduler: sched, svc: svc}

	ctx := context.Background()
	for _, id := range []string{"h1", "h2"} {
		require.NoError(t, store.Users().CreateHost(ctx, &models.Host{UserProfile: models.UserProfile{
			ID: id, Email: id + "@example.com", IsVerified: true, IsActive: true, IsSubscriber: true,
		}}))
	}
	for _, id := range []string{"n1", "n2"} {
		require.NoError(t, store.Users().CreateNurse(ctx, &models.Nurse{UserProfile: models.UserProfile{
			ID: id, Email: id + "@example.com", IsVerified: true, IsActive: true, IsSubscriber: id == "n1",
		}}))
	}
	require.NoError(t, store.Properties().Create(ctx, &models.Property{
		ID: "p1", Title: "Harbor loft", Price: 1000, MinimumDuration: 1, IsAvailable: true, IsActive: true, Host: "h1",
	}))
	return f
}

// booked confirms a paid booking of p1 by n1.
func (f *fixture) booked(t *testing.T) *models.Booking {
	t.Helper()
	b := &models.Booking{
		ID: "b1", Status: models.BookingPending, PaymentID: "pi_1", CheckoutSessionID: "cs_1",
		Nurse: "n1", Host: "h1", Property: "p1",
	}
	b.SetAmounts(100000, 10000)
	require.NoError(t, f.store.Entitlements().ConfirmBooking(context.Background(), b, ""))
	return b
}

func TestCheckInComputesCheckOutDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.booked(t)

	b, err := f.svc.CheckIn(ctx, "h1", "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCheckedIn, b.Status)
	require.NotNil(t, b.CheckInDate)
	require.NotNil(t, b.CheckOutDate)
	wantOut := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	assert.True(t, b.CheckInDate.Equal(checkInTime))
	assert.True(t, b.CheckOutDate.Equal(wantOut))

	prop, err := f.store.Properties().GetByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, prop.AvailableFrom)
	assert.True(t, prop.AvailableFrom.Equal(wantOut))
	assert.False(t, prop.IsAvailable)

	require.Len(t, f.scheduler.tasks, 1)
	assert.Equal(t, tasks.TypeCheckOutReminder, f.scheduler.tasks[0].taskType)
	assert.True(t, f.scheduler.tasks[0].fireAt.Equal(wantOut))
	assert.Equal(t, "b1", f.scheduler.tasks[0].payload.Booking)
}

func TestCheckInRequiresPropertyOwner(t *testing.T) {
	f := newFixture(t)
	f.booked(t)

	_, err := f.svc.CheckIn(context.Background(), "h2", "b1")
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
	assert.Empty(t, f.scheduler.tasks)
}

func TestCheckInTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.booked(t)

	_, err := f.svc.CheckIn(ctx, "h1", "b1")
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, "h1", "b1")
	assert.True(t, utils.IsKind(err, utils.KindConflict))
}

func TestCheckOutFreesProperty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.booked(t)

	_, err := f.svc.CheckOut(ctx, "h1", "b1")
	assert.True(t, utils.IsKind(err, utils.KindConflict), "pending bookings cannot be checked out")

	_, err = f.svc.CheckIn(ctx, "h1", "b1")
	require.NoError(t, err)
	b, err := f.svc.CheckOut(ctx, "h1", "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCheckedOut, b.Status)

	prop, err := f.store.Properties().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, prop.IsAvailable)
	assert.Nil(t, prop.AvailableFrom)
}

func TestArchiveFlagsAreIndependent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.booked(t)

	b, err := f.svc.SetBookingArchived(ctx, models.RoleHost, "h1", "b1", true)
	require.NoError(t, err)
	assert.True(t, b.IsArchivedForHost)
	assert.False(t, b.IsArchivedForNurse)
	assert.Equal(t, models.BookingPending, b.Status)

	b, err = f.svc.SetBookingArchived(ctx, models.RoleNurse, "n1", "b1", true)
	require.NoError(t, err)
	assert.True(t, b.IsArchivedForHost)
	assert.True(t, b.IsArchivedForNurse)

	b, err = f.svc.SetBookingArchived(ctx, models.RoleHost, "h1", "b1", false)
	require.NoError(t, err)
	assert.False(t, b.IsArchivedForHost)
	assert.True(t, b.IsArchivedForNurse)

	_, err = f.svc.SetBookingArchived(ctx, models.RoleNurse, "n2", "b1", true)
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
	_, err = f.svc.SetBookingArchived(ctx, models.RoleNurse, "n1", "missing", true)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestListBookingsPerSide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.booked(t)

	hostSide, err := f.svc.ListBookings(ctx, models.RoleHost, "h1")
	require.NoError(t, err)
	assert.Len(t, hostSide, 1)

	other, err := f.svc.ListBookings(ctx, models.RoleNurse, "n2")
	require.NoError(t, err)
	assert.NotNil(t, other)
	assert.Empty(t, other)
}

func TestCreateRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.CreateRequest(ctx, "n1", RequestInput{PropertyID: "p1", TravelingFrom: "Austin", Message: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.Equal(t, "h1", req.Host)

	_, err = f.svc.CreateRequest(ctx, "n1", RequestInput{PropertyID: "p1"})
	assert.True(t, utils.IsKind(err, utils.KindConflict))

	_, err = f.svc.CreateRequest(ctx, "n2", RequestInput{PropertyID: "p1"})
	assert.True(t, utils.IsKind(err, utils.KindForbidden), "nurse without subscription")

	_, err = f.svc.CreateRequest(ctx, "n1", RequestInput{PropertyID: "missing"})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestNurseEditsAndDeletesOwnRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req, err := f.svc.CreateRequest(ctx, "n1", RequestInput{PropertyID: "p1"})
	require.NoError(t, err)

	updated, err := f.svc.UpdateRequestMessage(ctx, "n1", req.ID, "Arriving on the 3rd")
	require.NoError(t, err)
	assert.Equal(t, "Arriving on the 3rd", updated.Message)

	_, err = f.svc.UpdateRequestMessage(ctx, "n2", req.ID, "hijack")
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	_, err = f.svc.ApproveRequest(ctx, "h1", req.ID)
	require.NoError(t, err)
	_, err = f.svc.UpdateRequestMessage(ctx, "n1", req.ID, "too late")
	assert.True(t, utils.IsKind(err, utils.KindConflict))

	require.NoError(t, f.svc.DeleteRequest(ctx, "n1", req.ID))
	_, err = f.store.BookingRequests().GetByID(ctx, req.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestHostDecidesRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req, err := f.svc.CreateRequest(ctx, "n1", RequestInput{PropertyID: "p1"})
	require.NoError(t, err)

	_, err = f.svc.ApproveRequest(ctx, "h2", req.ID)
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	approved, err := f.svc.ApproveRequest(ctx, "h1", req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, approved.Status)

	_, err = f.svc.RejectRequest(ctx, "h1", req.ID)
	assert.True(t, utils.IsKind(err, utils.KindConflict))

	archived, err := f.svc.SetRequestArchived(ctx, "h1", req.ID, true)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	assert.Equal(t, models.RequestApproved, archived.Status)

	restored, err := f.svc.SetRequestArchived(ctx, "h1", req.ID, false)
	require.NoError(t, err)
	assert.False(t, restored.IsArchived)
}

func TestHostWithoutSubscriptionCannotDecide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Users().CreateHost(ctx, &models.Host{UserProfile: models.UserProfile{
		ID: "h3", Email: "h3@example.com", IsVerified: true, IsActive: true,
	}}))
	require.NoError(t, f.store.Properties().Create(ctx, &models.Property{
		ID: "p3", Title: "Studio", Price: 800, MinimumDuration: 2, IsAvailable: true, IsActive: true, Host: "h3",
	}))
	req, err := f.svc.CreateRequest(ctx, "n1", RequestInput{PropertyID: "p3"})
	require.NoError(t, err)

	_, err = f.svc.RejectRequest(ctx, "h3", req.ID)
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
}
