package items

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"foundlink/lost-found-portal/portal-backend/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the item and verification endpoints. requireAuth and
// optionalAuth come from the auth package; resolution is the only endpoint
// that serves anonymous callers a reduced view instead of rejecting them.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireAuth, optionalAuth gin.HandlerFunc) {
	rg.GET("/items", h.ListItems)
	rg.POST("/upload", requireAuth, h.CommitItem)
	rg.GET("/user/items", requireAuth, h.UserItems)
	rg.POST("/item/:itemId/handover-confirm", requireAuth, h.ConfirmHandover)

	verify := rg.Group("/verify")
	{
		verify.POST("/generate", requireAuth, h.GenerateCode)
		verify.GET("/:code", optionalAuth, h.Resolve)
		verify.POST("/:code/claim", requireAuth, h.Claim)
	}
}

func (h *Handler) ListItems(c *gin.Context) {
	list, err := h.service.ListItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CommitItem(c *gin.Context) {
	var req CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	req.UploaderID = auth.CallerID(c)

	item, err := h.service.CommitItem(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UserItems(c *gin.Context) {
	callerID := auth.CallerID(c)

	var (
		list []Item
		err  error
	)
	switch c.Query("type") {
	case "uploaded":
		list, err = h.service.ListUploaded(c.Request.Context(), callerID)
	case "claimed":
		list, err = h.service.ListClaimed(c.Request.Context(), callerID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "type must be 'uploaded' or 'claimed'"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []Item{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GenerateCode(c *gin.Context) {
	var req struct {
		ItemID string `json:"itemId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "itemId is required"})
		return
	}

	code, err := h.service.GenerateCode(c.Request.Context(), req.ItemID, auth.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"verificationCode": code})
}

func (h *Handler) Resolve(c *gin.Context) {
	item, err := h.service.Resolve(c.Request.Context(), c.Param("code"), auth.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"itemDetails": item})
}

func (h *Handler) Claim(c *gin.Context) {
	item, err := h.service.Claim(c.Request.Context(), c.Param("code"), auth.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item successfully claimed. The uploader can now confirm the handover.",
		"item":    item,
	})
}

func (h *Handler) ConfirmHandover(c *gin.Context) {
	item, err := h.service.ConfirmHandover(c.Request.Context(), c.Param("itemId"), auth.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Handover confirmed.",
		"item":    item,
	})
}

// respondError maps service errors onto the API's status vocabulary. Every
// response body carries a human-readable message plus a stable code clients
// can branch on without parsing the wording; authorization failures get 403
// so clients can distinguish "not permitted" from "please log in" (401,
// produced by the auth middleware before handlers run).
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidItemType):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "code": "invalid_item_type"})
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrCodeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error(), "code": "not_found"})
	case errors.Is(err, ErrNotUploader), errors.Is(err, ErrOwnItem):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error(), "code": "forbidden"})
	case errors.Is(err, ErrAlreadyClaimed):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error(), "code": "already_claimed"})
	case errors.Is(err, ErrDuplicateItem):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error(), "code": "duplicate_item"})
	case errors.Is(err, ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error(), "code": "invalid_state"})
	case errors.Is(err, ErrAlreadyHandedOver):
		c.JSON(http.StatusGone, gin.H{"message": err.Error(), "code": "handed_over"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "code": "internal_error"})
	}
}
