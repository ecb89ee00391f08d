package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/dealdrop/backend/internal/auth"
	"github.com/emilythestrangee/dealdrop/backend/internal/content"
)

// Handler combines all handler types
type Handler struct {
	Auth     *AuthHandler
	Content  *ContentHandler
	Comment  *CommentHandler
	Vote     *VoteHandler
	User     *UserHandler
	Merchant *MerchantHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, svc *content.Service, tokens *auth.Tokens) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(db, tokens),
		Content:  NewContentHandler(svc),
		Comment:  NewCommentHandler(svc),
		Vote:     NewVoteHandler(svc),
		User:     NewUserHandler(db, svc),
		Merchant: NewMerchantHandler(svc),
	}
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + param})
		return 0, false
	}
	return uint(id), true
}

// respondError maps service errors onto status codes. notFound is the message
// used for a missing resource.
func respondError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, content.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only change your own content"})
	case errors.Is(err, content.ErrInvalid),
		errors.Is(err, content.ErrInvalidKind),
		errors.Is(err, content.ErrInvalidParent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, content.ErrSlugTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.Error(err)
		slog.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
