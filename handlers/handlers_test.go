package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nursesrent/database/repository/memory"
	"nursesrent/middleware"
	"nursesrent/models"
	"nursesrent/services/auth"
	"nursesrent/services/booking"
	"nursesrent/services/ledger"
	"nursesrent/services/reconcile"
	"nursesrent/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubDelivery struct {
	outcome reconcile.Outcome
	err     error
	calls   int
	channel models.WebhookChannel
	sig     string
}

func (s *stubDelivery) HandleDelivery(_ context.Context, channel models.WebhookChannel, _ []byte, signature string) (reconcile.Outcome, error) {
	s.calls++
	s.channel = channel
	s.sig = signature
	return s.outcome, s.err
}

func postWebhook(r *gin.Engine, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/hook", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func webhookRouter(engine DeliveryHandler) *gin.Engine {
	r := gin.New()
	r.POST("/hook", NewWebhookHandler(engine).Handle(models.ChannelPropertyBooking))
	return r
}

func TestWebhookAcknowledgesProcessedDelivery(t *testing.T) {
	stub := &stubDelivery{outcome: reconcile.OutcomeProcessed}
	w := postWebhook(webhookRouter(stub), []byte(`{"id":"evt_1"}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true,"outcome":"processed"}`, w.Body.String())
	assert.Equal(t, models.ChannelPropertyBooking, stub.channel)
	assert.Equal(t, "t=1,v1=abc", stub.sig)
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	stub := &stubDelivery{err: utils.NewAppError(utils.KindInvalidSignature, "no signing secret configured", nil)}
	w := postWebhook(webhookRouter(stub), []byte(`{}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Webhook Error: no signing secret configured", w.Body.String())
}

func TestWebhookSignatureErrorStatesTheReasonOnce(t *testing.T) {
	verifier := auth.NewWebhookVerifier(map[models.WebhookChannel]string{models.ChannelPropertyBooking: "whsec_booking"})
	_, verifyErr := verifier.Verify(models.ChannelPropertyBooking, []byte(`{"id":"evt_1"}`), "t=1,v1=abc")
	require.Error(t, verifyErr)
	reason := errors.Unwrap(verifyErr).Error()

	w := postWebhook(webhookRouter(&stubDelivery{err: verifyErr}), []byte(`{"id":"evt_1"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Webhook Error: "+reason, w.Body.String())
	assert.Equal(t, 1, strings.Count(w.Body.String(), reason))
	assert.NotContains(t, w.Body.String(), string(utils.KindInvalidSignature))
}

func TestWebhookAsksForRedeliveryOnFailure(t *testing.T) {
	for _, err := range []error{
		utils.Internal("store unavailable", nil),
		utils.Upstream("ledger unavailable", nil),
	} {
		stub := &stubDelivery{err: err}
		w := postWebhook(webhookRouter(stub), []byte(`{}`))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"received":false}`, w.Body.String())
	}
}

func TestWebhookRejectsOversizedPayload(t *testing.T) {
	stub := &stubDelivery{outcome: reconcile.OutcomeProcessed}
	w := postWebhook(webhookRouter(stub), bytes.Repeat([]byte("a"), maxWebhookBody+1))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, stub.calls)
}

type apiFixture struct {
	store  *memory.Store
	router *gin.Engine
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.New()
	authSvc := auth.NewAuthService(store.Users(), auth.NewTokenService("test-secret", time.Hour), auth.NoopSessionCache{}, false)
	bookingSvc := &booking.DefaultBookingService{
		Users:        store.Users(),
		Properties:   store.Properties(),
		Requests:     store.BookingRequests(),
		Bookings:     store.Bookings(),
		Entitlements: store.Entitlements(),
		Logger:       zap.NewNop(),
	}
	authH := NewAuthHandler(authSvc)
	bookingH := NewBookingHandler(bookingSvc)

	r := gin.New()
	for prefix, role := range map[string]models.Role{"/host": models.RoleHost, "/nurse": models.RoleNurse} {
		g := r.Group(prefix)
		g.POST("/signup", authH.SignUp(role))
		g.POST("/signin", authH.SignIn(role))
		g.POST("/signout", middleware.JWTAuthMiddleware(authSvc), middleware.RequireRole(role), authH.SignOut)
	}
	requests := r.Group("/booking-requests", middleware.JWTAuthMiddleware(authSvc))
	requests.GET("", bookingH.ListRequests)
	requests.POST("", middleware.RequireRole(models.RoleNurse), bookingH.CreateRequest)
	requests.PATCH("/:id/approve", middleware.RequireRole(models.RoleHost), bookingH.ApproveRequest)

	return &apiFixture{store: store, router: r}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) signUp(t *testing.T, prefix, email string) auth.AuthResponse {
	t.Helper()
	w := f.do(t, http.MethodPost, prefix+"/signup", "", auth.SignUpInput{Name: "Pat", Email: email, Password: "correct-horse"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp auth.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSignUpSignInSignOut(t *testing.T) {
	f := newAPIFixture(t)
	host := f.signUp(t, "/host", "Host@Example.com")
	assert.Equal(t, "host@example.com", host.Email)
	assert.NotEmpty(t, host.Token)

	w := f.do(t, http.MethodPost, "/host/signup", "", auth.SignUpInput{Name: "Pat", Email: "host@example.com", Password: "correct-horse"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, "/host/signin", "", map[string]string{"email": "host@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/host/signin", "", map[string]string{"email": "host@example.com", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code)
	var signedIn auth.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signedIn))

	w = f.do(t, http.MethodPost, "/nurse/signout", signedIn.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "host token on a nurse route")

	w = f.do(t, http.MethodPost, "/host/signout", signedIn.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodPost, "/host/signout", signedIn.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookingRequestOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()
	host := f.signUp(t, "/host", "host@example.com")
	nurse := f.signUp(t, "/nurse", "nurse@example.com")

	for _, sub := range []*models.Subscription{
		{ID: "s_h", SubscriptionID: "sub_h", SubscriptionStatus: ledger.SubscriptionStatusActive, UserID: host.ID, CustomerRole: models.RoleHost},
		{ID: "s_n", SubscriptionStatus: ledger.SubscriptionStatusActive, UserID: nurse.ID, CustomerRole: models.RoleNurse},
	} {
		require.NoError(t, f.store.Entitlements().ReplaceSubscription(ctx, sub, ""))
	}
	require.NoError(t, f.store.Properties().Create(ctx, &models.Property{
		ID: "p1", Title: "Harbor loft", Price: 1000, MinimumDuration: 1, IsAvailable: true, IsActive: true, Host: host.ID,
	}))

	w := f.do(t, http.MethodPost, "/booking-requests", host.Token, booking.RequestInput{PropertyID: "p1"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPost, "/booking-requests", nurse.Token, map[string]string{"message": "no property"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/booking-requests", nurse.Token, booking.RequestInput{PropertyID: "p1", Message: "Hello"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.BookingRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = f.do(t, http.MethodPatch, "/booking-requests/"+created.ID+"/approve", nurse.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPatch, "/booking-requests/"+created.ID+"/approve", host.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/booking-requests", host.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		BookingRequests []models.BookingRequest `json:"bookingRequests"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.BookingRequests, 1)
	assert.Equal(t, models.RequestApproved, listed.BookingRequests[0].Status)

	w = f.do(t, http.MethodGet, "/booking-requests", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
