package auth

import (
	"testing"
	"time"

	"nursesrent/models"
	"nursesrent/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testPayload = `{
  "id": "evt_1",
  "object": "event",
  "type": "checkout.session.completed",
  "data": {"object": {"id": "cs_test_1", "object": "checkout.session"}}
}`

func sign(payload, secret string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	}).Header
}

func newVerifier() *WebhookVerifier {
	return NewWebhookVerifier(map[models.WebhookChannel]string{
		models.ChannelPropertyBooking:  "whsec_booking",
		models.ChannelHostSubscription: "whsec_host",
	})
}

func TestVerifyAcceptsSignedDelivery(t *testing.T) {
	event, err := newVerifier().Verify(models.ChannelPropertyBooking, []byte(testPayload), sign(testPayload, "whsec_booking"))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, "checkout.session.completed", event.Type)
	assert.Equal(t, "cs_test_1", event.ObjectID)
	assert.Equal(t, models.ChannelPropertyBooking, event.Channel)
}

func TestVerifyRejectsOtherChannelSecret(t *testing.T) {
	_, err := newVerifier().Verify(models.ChannelHostSubscription, []byte(testPayload), sign(testPayload, "whsec_booking"))
	assert.True(t, utils.IsKind(err, utils.KindInvalidSignature))
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	header := sign(testPayload, "whsec_booking")
	tampered := []byte(testPayload + " ")
	_, err := newVerifier().Verify(models.ChannelPropertyBooking, tampered, header)
	assert.True(t, utils.IsKind(err, utils.KindInvalidSignature))

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "signature verification failed", appErr.Message)
	assert.ErrorIs(t, err, webhook.ErrNoValidSignature)
}

func TestVerifyRejectsUnconfiguredChannel(t *testing.T) {
	_, err := newVerifier().Verify(models.ChannelNurseSubscription, []byte(testPayload), sign(testPayload, ""))
	assert.True(t, utils.IsKind(err, utils.KindInvalidSignature))
}

func TestVerifyRejectsMissingHeader(t *testing.T) {
	_, err := newVerifier().Verify(models.ChannelPropertyBooking, []byte(testPayload), "")
	assert.True(t, utils.IsKind(err, utils.KindInvalidSignature))
}
