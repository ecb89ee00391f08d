package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/dealdrop/backend/internal/content"
	"github.com/emilythestrangee/dealdrop/backend/internal/middleware"
	"github.com/emilythestrangee/dealdrop/backend/internal/models"
)

type MerchantHandler struct {
	svc *content.Service
}

func NewMerchantHandler(svc *content.Service) *MerchantHandler {
	return &MerchantHandler{svc: svc}
}

func (h *MerchantHandler) GetMerchants(c *gin.Context) {
	merchants, err := h.svc.Merchants(c.Request.Context())
	if err != nil {
		respondError(c, err, "Merchant not found")
		return
	}
	c.JSON(http.StatusOK, merchants)
}

// GetStorefront returns a merchant with its live deals and coupons
func (h *MerchantHandler) GetStorefront(c *gin.Context) {
	sort := content.Sort(c.DefaultQuery("sort", string(content.SortTop)))
	front, err := h.svc.Storefront(c.Request.Context(), c.Param("slug"), sort, middleware.ViewerID(c))
	if err != nil {
		respondError(c, err, "Merchant not found")
		return
	}
	c.JSON(http.StatusOK, front)
}

func (h *MerchantHandler) CreateMerchant(c *gin.Context) {
	var input models.CreateMerchantRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := h.svc.CreateMerchant(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Merchant not found")
		return
	}
	c.JSON(http.StatusCreated, m)
}
