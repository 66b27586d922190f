package handlers

import (
	"net/http"

	"nursesrent/services/checkout"
	"nursesrent/utils"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	CheckoutService checkout.CheckoutService
}

func NewCheckoutHandler(svc checkout.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{CheckoutService: svc}
}

// SubscriptionPlan handles POST /api/v1/{hosts|nurses}/subscription-plan.
func (h *CheckoutHandler) SubscriptionPlan(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	plan, err := h.CheckoutService.EnsureSubscriptionPlan(c.Request.Context(), p.Role)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// SubscriptionSession handles POST /api/v1/{hosts|nurses}/subscribe/checkout-session.
func (h *CheckoutHandler) SubscriptionSession(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	res, err := h.CheckoutService.CreateSubscriptionCheckout(c.Request.Context(), p.Role, p.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// RequestSession handles POST /api/v1/booking-requests/:id/checkout-session.
func (h *CheckoutHandler) RequestSession(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	res, err := h.CheckoutService.CreateRequestCheckout(c.Request.Context(), p.UserID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PropertySession handles POST /api/v1/bookings/checkout-session/:propertyId.
func (h *CheckoutHandler) PropertySession(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	res, err := h.CheckoutService.CreateBookingCheckout(c.Request.Context(), p.UserID, c.Param("propertyId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
