package uploads

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.GET("/presigned-url", requireAuth, h.RequestSlot)
}

func (h *Handler) RequestSlot(c *gin.Context) {
	slot, err := h.service.RequestSlot(
		c.Request.Context(),
		c.Query("fileName"),
		c.Query("fileType"),
		c.Query("itemType"),
	)
	if errors.Is(err, ErrMissingParams) {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, slot)
}
