package models

import (
	"time"

	"github.com/emilythestrangee/dealdrop/backend/internal/votes"
)

// Vote tracks one user's vote on a deal, coupon, discussion or comment.
// A user holds at most one vote per target.
type Vote struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	UserID     uint             `gorm:"not null;uniqueIndex:idx_vote_user_target" json:"user_id"`
	TargetType votes.TargetType `gorm:"type:varchar(16);not null;uniqueIndex:idx_vote_user_target;index:idx_vote_target" json:"target_type"`
	TargetID   uint             `gorm:"not null;uniqueIndex:idx_vote_user_target;index:idx_vote_target" json:"target_id"`
	VoteType   votes.VoteType   `gorm:"type:varchar(8);not null" json:"vote_type"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (v Vote) VoterID() uint { return v.UserID }
func (v Vote) Type() votes.VoteType { return v.VoteType }
