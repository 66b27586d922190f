package handlers

import (
	"net/http"

	"nursesrent/services/auth"
	"nursesrent/utils"

	"github.com/gin-gonic/gin"
)

type VerificationHandler struct {
	Verifier *auth.EmailVerifier
}

func NewVerificationHandler(v *auth.EmailVerifier) *VerificationHandler {
	return &VerificationHandler{Verifier: v}
}

// RequestCode handles POST /api/v1/{hosts|nurses}/verify-email/request.
func (h *VerificationHandler) RequestCode(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.Verifier.RequestCode(c.Request.Context(), p.Role, p.UserID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

// Confirm handles POST /api/v1/{hosts|nurses}/verify-email.
func (h *VerificationHandler) Confirm(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body struct {
		Code string `json:"code" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}
	if err := h.Verifier.Confirm(c.Request.Context(), p.Role, p.UserID, body.Code); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}
