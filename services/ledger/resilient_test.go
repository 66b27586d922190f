package ledger_test

import (
	"context"
	"testing"
	"time"

	"nursesrent/services/ledger"
	"nursesrent/services/ledger/ledgertest"
	"nursesrent/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newResilient(fake *ledgertest.Fake, retries uint64, threshold uint32) *ledger.Resilient {
	return ledger.NewResilient(fake, ledger.ResilienceConfig{
		Timeout:          time.Second,
		MaxRetries:       retries,
		FailureThreshold: threshold,
		OpenTimeout:      time.Minute,
		InitialInterval:  time.Millisecond,
	}, nil, zap.NewNop())
}

func TestResilientRetriesUpstreamFailures(t *testing.T) {
	fake := ledgertest.New()
	fake.PutSubscription(&ledger.Subscription{ID: "sub_1", Status: ledger.SubscriptionStatusActive})
	fake.FailNext("GetSubscription", ledgertest.Unavailable(), ledgertest.Unavailable())

	sub, err := newResilient(fake, 3, 10).GetSubscription(context.Background(), "sub_1")
	require.NoError(t, err)
	assert.Equal(t, "sub_1", sub.ID)
	assert.Equal(t, 3, fake.Calls("GetSubscription"))
}

func TestResilientDoesNotRetryNotFound(t *testing.T) {
	fake := ledgertest.New()

	_, err := newResilient(fake, 3, 10).GetCheckoutSession(context.Background(), "cs_missing")
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
	assert.Equal(t, 1, fake.Calls("GetCheckoutSession"))
}

func TestResilientGivesUpAfterMaxRetries(t *testing.T) {
	fake := ledgertest.New()
	fake.FailNext("CreateCustomer",
		ledgertest.Unavailable(), ledgertest.Unavailable(), ledgertest.Unavailable(), ledgertest.Unavailable())

	_, err := newResilient(fake, 2, 10).CreateCustomer(context.Background(), ledger.CustomerInput{Email: "a@b.c"})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindUpstream))
	assert.Equal(t, 3, fake.Calls("CreateCustomer"))
}

func TestResilientBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	fake := ledgertest.New()
	fake.FailNext("GetPrice", ledgertest.Unavailable(), ledgertest.Unavailable())
	r := newResilient(fake, 0, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := r.GetPrice(ctx, "price_1")
		require.Error(t, err)
	}

	_, err := r.GetPrice(ctx, "price_1")
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindUpstream))
	assert.Equal(t, 2, fake.Calls("GetPrice"), "open breaker must short-circuit")
}

func TestResilientBreakerIgnoresNotFound(t *testing.T) {
	fake := ledgertest.New()
	r := newResilient(fake, 0, 2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := r.GetPrice(ctx, "price_missing")
		assert.True(t, utils.IsKind(err, utils.KindNotFound))
	}
	assert.Equal(t, 3, fake.Calls("GetPrice"))
}

// keyRecorder notes the idempotency key every CreateCustomer attempt carries.
type keyRecorder struct {
	*ledgertest.Fake
	keys []string
}

func (k *keyRecorder) CreateCustomer(ctx context.Context, in ledger.CustomerInput) (string, error) {
	k.keys = append(k.keys, ledger.IdempotencyKeyFrom(ctx))
	return k.Fake.CreateCustomer(ctx, in)
}

func TestResilientRetriesWritesWithOneIdempotencyKey(t *testing.T) {
	rec := &keyRecorder{Fake: ledgertest.New()}
	rec.FailNext("CreateCustomer", ledgertest.Unavailable())
	r := ledger.NewResilient(rec, ledger.ResilienceConfig{
		Timeout: time.Second, MaxRetries: 3, FailureThreshold: 10, InitialInterval: time.Millisecond,
	}, nil, zap.NewNop())
	ctx := context.Background()

	_, err := r.CreateCustomer(ctx, ledger.CustomerInput{Email: "a@b.c"})
	require.NoError(t, err)
	require.Len(t, rec.keys, 2)
	assert.NotEmpty(t, rec.keys[0])
	assert.Equal(t, rec.keys[0], rec.keys[1], "a retry must reuse the key of the first attempt")

	_, err = r.CreateCustomer(ctx, ledger.CustomerInput{Email: "a@b.c"})
	require.NoError(t, err)
	require.Len(t, rec.keys, 3)
	assert.NotEqual(t, rec.keys[0], rec.keys[2], "a new write gets a new key")

	_, err = r.CreateCustomer(ledger.WithIdempotencyKey(ctx, "signup-h1"), ledger.CustomerInput{Email: "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, "signup-h1", rec.keys[3])
}

func TestTranslateClassifiesProviderErrors(t *testing.T) {
	assert.True(t, utils.IsKind(ledger.Translate(ledgertest.NotFound("x")), utils.KindNotFound))
	assert.True(t, utils.IsKind(ledger.Translate(ledgertest.Unavailable()), utils.KindUpstream))
	assert.True(t, utils.IsKind(ledger.Translate(context.DeadlineExceeded), utils.KindUpstream))
	assert.NoError(t, ledger.Translate(nil))
	assert.True(t, ledger.IsNotFound(ledgertest.NotFound("x")))
}
