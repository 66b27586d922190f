package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"nursesrent/models"
	"nursesrent/services/reconcile"
	"nursesrent/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBody bounds the raw payload read before signature verification.
const maxWebhookBody = 65536

// DeliveryHandler reconciles one signed webhook delivery.
type DeliveryHandler interface {
	HandleDelivery(ctx context.Context, channel models.WebhookChannel, payload []byte, signature string) (reconcile.Outcome, error)
}

type WebhookHandler struct {
	Engine DeliveryHandler
}

func NewWebhookHandler(engine DeliveryHandler) *WebhookHandler {
	return &WebhookHandler{Engine: engine}
}

// Handle returns the endpoint of one webhook channel. The body is read raw, since the
// signature covers the exact bytes sent.
func (h *WebhookHandler) Handle(channel models.WebhookChannel) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusBadRequest, "Webhook Error: %s", err.Error())
			return
		}

		outcome, err := h.Engine.HandleDelivery(c.Request.Context(), channel, payload, c.GetHeader("Stripe-Signature"))
		switch {
		case utils.IsKind(err, utils.KindInvalidSignature):
			c.String(http.StatusBadRequest, "Webhook Error: %s", signatureDetail(err))
		case err != nil:
			getLogger(c).Error("Webhook delivery failed", zap.String("channel", string(channel)), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"received": false})
		default:
			c.JSON(http.StatusOK, gin.H{"received": true, "outcome": outcome})
		}
	}
}

// signatureDetail is the provider's reason for a rejected signature, or the rejection
// message when there is none.
func signatureDetail(err error) string {
	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	if appErr.Err != nil {
		return appErr.Err.Error()
	}
	return appErr.Message
}
