package handlers

import (
	"net/http"

	"nursesrent/models"
	"nursesrent/services/auth"
	"nursesrent/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	AuthService auth.AuthService
}

func NewAuthHandler(svc auth.AuthService) *AuthHandler {
	return &AuthHandler{AuthService: svc}
}

// SignUp handles POST /api/v1/{hosts|nurses}/signup.
func (h *AuthHandler) SignUp(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in auth.SignUpInput
		if !bindJSON(c, &in) {
			return
		}
		resp, err := h.AuthService.SignUp(c.Request.Context(), role, in)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

// SignIn handles POST /api/v1/{hosts|nurses}/signin.
func (h *AuthHandler) SignIn(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if !bindJSON(c, &req) {
			return
		}
		resp, err := h.AuthService.SignIn(c.Request.Context(), role, req.Email, req.Password)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.AuthService.SignOut(c.Request.Context(), p.Role, p.UserID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}
