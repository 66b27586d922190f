package auth

import (
	"encoding/json"

	"nursesrent/models"
	"nursesrent/utils"

	"github.com/stripe/stripe-go/v76/webhook"
)

// WebhookEvent is a delivery whose signature has been checked.
type WebhookEvent struct {
	ID      string
	Type    string
	Channel models.WebhookChannel
	// ObjectID is the id of the object the event carries.
	ObjectID string
	Raw      json.RawMessage
}

// WebhookVerifier authenticates deliveries against the signing secret of their channel.
type WebhookVerifier struct {
	secrets map[models.WebhookChannel]string
}

func NewWebhookVerifier(secrets map[models.WebhookChannel]string) *WebhookVerifier {
	return &WebhookVerifier{secrets: secrets}
}

// Verify checks header over the exact payload bytes. Any failure is KindInvalidSignature.
func (v *WebhookVerifier) Verify(channel models.WebhookChannel, payload []byte, header string) (*WebhookEvent, error) {
	secret := v.secrets[channel]
	if secret == "" {
		return nil, utils.NewAppError(utils.KindInvalidSignature, "no signing secret configured for "+string(channel), nil)
	}

	event, err := webhook.ConstructEventWithOptions(payload, header, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, utils.NewAppError(utils.KindInvalidSignature, "signature verification failed", err)
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type), Channel: channel}
	if event.Data != nil {
		out.Raw = event.Data.Raw
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(event.Data.Raw, &obj); err == nil {
			out.ObjectID = obj.ID
		}
	}
	return out, nil
}
