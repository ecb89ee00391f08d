package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/dealdrop/backend/internal/content"
	"github.com/emilythestrangee/dealdrop/backend/internal/middleware"
	"github.com/emilythestrangee/dealdrop/backend/internal/votes"
)

type VoteHandler struct {
	svc *content.Service
}

func NewVoteHandler(svc *content.Service) *VoteHandler {
	return &VoteHandler{svc: svc}
}

type voteInput struct {
	TargetID   uint             `json:"targetId" binding:"required"`
	TargetType votes.TargetType `json:"targetType" binding:"required,oneof=deal coupon discussion comment"`
	VoteType   votes.VoteType   `json:"voteType" binding:"required,oneof=up down"`
}

// Vote casts, flips or removes the caller's vote on a deal, coupon,
// discussion or comment (PROTECTED - requires authentication)
func (h *VoteHandler) Vote(c *gin.Context) {
	var input voteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid vote",
			"message": "targetType must be deal, coupon, discussion or comment and voteType must be up or down",
		})
		return
	}

	action, projection, err := h.svc.CastVote(c.Request.Context(), middleware.ViewerID(c), votes.Request{
		TargetID:   input.TargetID,
		TargetType: input.TargetType,
		VoteType:   input.VoteType,
	})
	if err != nil {
		respondError(c, err, notFoundMessage(input.TargetType))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"action":   action,
		"score":    projection.Score,
		"userVote": projection.UserVote,
	})
}
