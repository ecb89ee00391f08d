package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/dealdrop/backend/internal/content"
	"github.com/emilythestrangee/dealdrop/backend/internal/middleware"
	"github.com/emilythestrangee/dealdrop/backend/internal/models"
	"github.com/emilythestrangee/dealdrop/backend/internal/votes"
)

// ContentHandler serves deals, coupons and discussions. Each route is bound
// to one kind when it is registered.
type ContentHandler struct {
	svc *content.Service
}

func NewContentHandler(svc *content.Service) *ContentHandler {
	return &ContentHandler{svc: svc}
}

func notFoundMessage(kind votes.TargetType) string {
	switch kind {
	case votes.TargetDeal:
		return "Deal not found"
	case votes.TargetCoupon:
		return "Coupon not found"
	case votes.TargetDiscussion:
		return "Discussion not found"
	case votes.TargetComment:
		return "Comment not found"
	}
	return "Not found"
}

func listOptions(c *gin.Context) content.ListOptions {
	opts := content.ListOptions{
		Category:       c.Query("category"),
		Sort:           content.Sort(c.DefaultQuery("sort", string(content.SortRecent))),
		IncludeExpired: c.Query("include_expired") == "true",
	}
	if v, err := strconv.ParseUint(c.Query("merchant_id"), 10, 64); err == nil {
		opts.MerchantID = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("user_id"), 10, 64); err == nil {
		opts.UserID = uint(v)
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		opts.Limit = v
	}
	return opts
}

// List returns items of kind, e.g. GET /api/deals?sort=new&category=electronics
func (h *ContentHandler) List(kind votes.TargetType) gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := h.svc.List(c.Request.Context(), kind, listOptions(c), middleware.ViewerID(c))
		if err != nil {
			respondError(c, err, notFoundMessage(kind))
			return
		}
		c.JSON(http.StatusOK, views)
	}
}

// Get returns a single item with the viewer's projection
func (h *ContentHandler) Get(kind votes.TargetType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		view, err := h.svc.Load(c.Request.Context(), kind, id, middleware.ViewerID(c))
		if err != nil {
			respondError(c, err, notFoundMessage(kind))
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// Update edits an item (PROTECTED - requires ownership)
func (h *ContentHandler) Update(kind votes.TargetType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		var input models.UpdateContentRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		item, err := h.svc.Update(c.Request.Context(), kind, id, middleware.ViewerID(c), input)
		if err != nil {
			respondError(c, err, notFoundMessage(kind))
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// Expire marks a deal or coupon as expired (PROTECTED - requires ownership)
func (h *ContentHandler) Expire(kind votes.TargetType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		item, err := h.svc.Expire(c.Request.Context(), kind, id, middleware.ViewerID(c))
		if err != nil {
			respondError(c, err, notFoundMessage(kind))
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// CreateDeal posts a new deal (PROTECTED - requires authentication)
func (h *ContentHandler) CreateDeal(c *gin.Context) {
	var input models.CreateDealRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	deal, err := h.svc.SubmitDeal(c.Request.Context(), middleware.ViewerID(c), input)
	if err != nil {
		respondError(c, err, "Merchant not found")
		return
	}
	c.JSON(http.StatusCreated, deal)
}

// CreateCoupon posts a new coupon (PROTECTED - requires authentication)
func (h *ContentHandler) CreateCoupon(c *gin.Context) {
	var input models.CreateCouponRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	coupon, err := h.svc.SubmitCoupon(c.Request.Context(), middleware.ViewerID(c), input)
	if err != nil {
		respondError(c, err, "Merchant not found")
		return
	}
	c.JSON(http.StatusCreated, coupon)
}

// CreateDiscussion starts a new discussion (PROTECTED - requires authentication)
func (h *ContentHandler) CreateDiscussion(c *gin.Context) {
	var input models.CreateDiscussionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.svc.SubmitDiscussion(c.Request.Context(), middleware.ViewerID(c), input)
	if err != nil {
		respondError(c, err, "Merchant not found")
		return
	}
	c.JSON(http.StatusCreated, d)
}
