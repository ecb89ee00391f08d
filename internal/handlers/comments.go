package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/dealdrop/backend/internal/content"
	"github.com/emilythestrangee/dealdrop/backend/internal/middleware"
	"github.com/emilythestrangee/dealdrop/backend/internal/models"
	"github.com/emilythestrangee/dealdrop/backend/internal/votes"
)

type CommentHandler struct {
	svc *content.Service
}

func NewCommentHandler(svc *content.Service) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// GetComments returns the comment tree of an item with per-comment votes
func (h *CommentHandler) GetComments(kind votes.TargetType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		tree, err := h.svc.Comments(c.Request.Context(), kind, id, middleware.ViewerID(c))
		if err != nil {
			respondError(c, err, notFoundMessage(kind))
			return
		}
		c.JSON(http.StatusOK, tree)
	}
}

// CreateComment comments on an item, or replies to a comment on it
func (h *CommentHandler) CreateComment(kind votes.TargetType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		var input models.CreateCommentRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		comment, err := h.svc.AddComment(c.Request.Context(), kind, id, middleware.ViewerID(c), input)
		if err != nil {
			respondError(c, err, notFoundMessage(kind))
			return
		}
		c.JSON(http.StatusCreated, comment)
	}
}

// UpdateComment updates a comment (owner only)
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input models.UpdateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.svc.EditComment(c.Request.Context(), id, middleware.ViewerID(c), input.Content)
	if err != nil {
		respondError(c, err, "Comment not found")
		return
	}
	c.JSON(http.StatusOK, view)
}
