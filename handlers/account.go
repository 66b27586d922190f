package handlers

import (
	"net/http"

	"nursesrent/middleware"
	"nursesrent/services/user"
	"nursesrent/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AccountHandler struct {
	UserService user.UserService
}

func NewAccountHandler(svc user.UserService) *AccountHandler {
	return &AccountHandler{UserService: svc}
}

func (h *AccountHandler) Me(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	account, err := h.UserService.GetAccount(c.Request.Context(), p.Role, p.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// ConnectPayments handles POST /api/v1/{hosts|nurses}/connect-payments.
func (h *AccountHandler) ConnectPayments(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	res, err := h.UserService.ConnectPayments(c.Request.Context(), p.Role, p.UserID, middleware.ClientIP(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CancelSubscription handles DELETE /api/v1/hosts/subscription.
func (h *AccountHandler) CancelSubscription(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.UserService.CancelSubscription(c.Request.Context(), p.Role, p.UserID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Your subscription will be cancelled shortly"})
}

// DeleteHost handles DELETE /api/v1/hosts/me.
func (h *AccountHandler) DeleteHost(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	result, err := h.UserService.DeleteHost(c.Request.Context(), p.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("Host account deleted", zap.String("hostID", p.UserID))
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted", "deleted": result})
}
