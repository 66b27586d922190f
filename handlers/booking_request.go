package handlers

import (
	"net/http"

	"nursesrent/services/booking"
	"nursesrent/utils"

	"github.com/gin-gonic/gin"
)

func (h *BookingHandler) CreateRequest(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var in booking.RequestInput
	if !bindJSON(c, &in) {
		return
	}
	req, err := h.BookingService.CreateRequest(c.Request.Context(), p.UserID, in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *BookingHandler) ListRequests(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	list, err := h.BookingService.ListRequests(c.Request.Context(), p.Role, p.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingRequests": list})
}

func (h *BookingHandler) UpdateRequest(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body struct {
		Message string `json:"message" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}
	req, err := h.BookingService.UpdateRequestMessage(c.Request.Context(), p.UserID, c.Param("id"), body.Message)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *BookingHandler) DeleteRequest(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.BookingService.DeleteRequest(c.Request.Context(), p.UserID, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) ApproveRequest(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	req, err := h.BookingService.ApproveRequest(c.Request.Context(), p.UserID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *BookingHandler) RejectRequest(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	req, err := h.BookingService.RejectRequest(c.Request.Context(), p.UserID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *BookingHandler) SetRequestArchived(archived bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		req, err := h.BookingService.SetRequestArchived(c.Request.Context(), p.UserID, c.Param("id"), archived)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, req)
	}
}
