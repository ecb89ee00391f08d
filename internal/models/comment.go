package models

import (
	"time"

	"github.com/emilythestrangee/dealdrop/backend/internal/votes"
)

// Comment belongs to a deal, coupon or discussion. Replies point at their
// parent; a nil ParentID is a root comment.
type Comment struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	Content    string           `gorm:"not null" json:"content"`
	AuthorID   uint             `gorm:"not null;index" json:"author_id"`
	User       User             `gorm:"foreignKey:AuthorID" json:"user"`
	TargetType votes.TargetType `gorm:"type:varchar(16);not null;index:idx_comment_target" json:"target_type"`
	TargetID   uint             `gorm:"not null;index:idx_comment_target" json:"target_id"`
	ParentID   *uint            `gorm:"index" json:"parent_id,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

type CreateCommentRequest struct {
	Content  string `json:"content" binding:"required,max=10000"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,max=10000"`
}
