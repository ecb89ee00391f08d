package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/emilythestrangee/dealdrop/backend/internal/content"
	"github.com/emilythestrangee/dealdrop/backend/internal/middleware"
	"github.com/emilythestrangee/dealdrop/backend/internal/models"
	"github.com/emilythestrangee/dealdrop/backend/internal/votes"
)

type UserHandler struct {
	db  *gorm.DB
	svc *content.Service
}

func NewUserHandler(db *gorm.DB, svc *content.Service) *UserHandler {
	return &UserHandler{db: db, svc: svc}
}

// GetUserProfile returns a user's profile with everything they posted
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		respondError(c, err, "User not found")
		return
	}

	ctx := c.Request.Context()
	viewer := middleware.ViewerID(c)
	opts := content.ListOptions{UserID: userID, IncludeExpired: true}

	var deals, coupons, discussions []content.View
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		deals, err = h.svc.List(gctx, votes.TargetDeal, opts, viewer)
		return
	})
	g.Go(func() (err error) {
		coupons, err = h.svc.List(gctx, votes.TargetCoupon, opts, viewer)
		return
	})
	g.Go(func() (err error) {
		discussions, err = h.svc.List(gctx, votes.TargetDiscussion, opts, viewer)
		return
	})
	if err := g.Wait(); err != nil {
		respondError(c, err, "User not found")
		return
	}

	var commentCount int64
	if err := h.db.WithContext(ctx).Model(&models.Comment{}).Where("author_id = ?", userID).Count(&commentCount).Error; err != nil {
		respondError(c, fmt.Errorf("count comments of user %d: %w", userID, err), "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"deals":         deals,
		"coupons":       coupons,
		"discussions":   discussions,
		"comment_count": commentCount,
	})
}

// UpdateUserProfile saves profile settings (self only)
func (h *UserHandler) UpdateUserProfile(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	// Check if user is updating their own profile
	if middleware.ViewerID(c) != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own profile"})
		return
	}

	var input models.UpdateUserRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	updates := map[string]any{}
	if input.Bio != nil {
		updates["bio"] = strings.TrimSpace(*input.Bio)
	}
	if input.Avatar != nil {
		updates["avatar"] = strings.TrimSpace(*input.Avatar)
	}
	if len(updates) > 0 {
		if err := h.db.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
		if err := h.db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload profile"})
			return
		}
	}

	c.JSON(http.StatusOK, user.Account())
}
