package handlers

import (
	"nursesrent/middleware"
	"nursesrent/services/auth"
	"nursesrent/utils"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	AuthService auth.AuthService

	Auth     *AuthHandler
	Verify   *VerificationHandler
	Account  *AccountHandler
	Property *PropertyHandler
	Checkout *CheckoutHandler
	Booking  *BookingHandler
	Webhook  *WebhookHandler
}

// principal returns the authenticated caller or answers 401.
func principal(c *gin.Context) (*auth.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		utils.RespondError(c, utils.Unauthenticated("You are not logged in! Please log in to get access."))
		return nil, false
	}
	return p, true
}
