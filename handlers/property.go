package handlers

import (
	"net/http"

	"nursesrent/services/property"
	"nursesrent/utils"

	"github.com/gin-gonic/gin"
)

type PropertyHandler struct {
	PropertyService property.PropertyService
}

func NewPropertyHandler(svc property.PropertyService) *PropertyHandler {
	return &PropertyHandler{PropertyService: svc}
}

func (h *PropertyHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var in property.Input
	if !bindJSON(c, &in) {
		return
	}
	created, err := h.PropertyService.Create(c.Request.Context(), p.UserID, in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *PropertyHandler) Get(c *gin.Context) {
	found, err := h.PropertyService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

// ListMine handles GET /api/v1/hosts/properties.
func (h *PropertyHandler) ListMine(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	list, err := h.PropertyService.ListByHost(c.Request.Context(), p.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": list})
}
