package handlers

import (
	"net/http"

	"nursesrent/services/booking"
	"nursesrent/utils"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	BookingService booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{BookingService: svc}
}

func (h *BookingHandler) ListBookings(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	list, err := h.BookingService.ListBookings(c.Request.Context(), p.Role, p.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

func (h *BookingHandler) CheckIn(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	b, err := h.BookingService.CheckIn(c.Request.Context(), p.UserID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) CheckOut(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	b, err := h.BookingService.CheckOut(c.Request.Context(), p.UserID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// SetArchived handles PATCH /api/v1/bookings/:id/{archive|restore} for the caller's side.
func (h *BookingHandler) SetArchived(archived bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		b, err := h.BookingService.SetBookingArchived(c.Request.Context(), p.Role, p.UserID, c.Param("id"), archived)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}
