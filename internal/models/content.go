package models

import (
	"time"

	"github.com/lib/pq"

	"github.com/emilythestrangee/dealdrop/backend/internal/votes"
)

// ContentBase holds the fields shared by deals, coupons and discussions.
type ContentBase struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title" validate:"required,min=5,max=200"`
	Description string    `json:"description" validate:"max=20000"`
	Category    string    `gorm:"index" json:"category,omitempty" validate:"max=50"`
	MerchantID  *uint     `gorm:"index" json:"merchant_id,omitempty"`
	Merchant    *Merchant `json:"merchant,omitempty" validate:"-"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `json:"user" validate:"-"`
	Expired     bool      `gorm:"not null;default:false" json:"expired"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Base returns the shared part of a content item.
func (b ContentBase) Base() ContentBase { return b }

type Deal struct {
	ContentBase
	URL           string         `json:"url,omitempty" validate:"omitempty,url"`
	ImageURL      string         `json:"image_url,omitempty" validate:"omitempty,url"`
	Price         *float64       `json:"price,omitempty" validate:"omitempty,gte=0"`
	OriginalPrice *float64       `json:"original_price,omitempty" validate:"omitempty,gte=0"`
	Shipping      string         `json:"shipping,omitempty" validate:"max=100"`
	Tags          pq.StringArray `gorm:"type:text[]" json:"tags" validate:"max=10,dive,max=30"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
}

type Coupon struct {
	ContentBase
	DiscountCode  string     `json:"discount_code,omitempty" validate:"omitempty,max=50"`
	DiscountValue string     `json:"discount_value,omitempty" validate:"max=50"`
	URL           string     `json:"url,omitempty" validate:"omitempty,url"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

type Discussion struct {
	ContentBase
}

// KindOf maps a content model to the vote target type that addresses it.
func KindOf(item any) votes.TargetType {
	switch item.(type) {
	case Deal, *Deal:
		return votes.TargetDeal
	case Coupon, *Coupon:
		return votes.TargetCoupon
	case Discussion, *Discussion:
		return votes.TargetDiscussion
	case Comment, *Comment:
		return votes.TargetComment
	}
	return ""
}

// Submission payloads. Optional wizard steps may be left empty.

type CreateDealRequest struct {
	Title         string     `json:"title" binding:"required"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	MerchantID    *uint      `json:"merchant_id"`
	URL           string     `json:"url"`
	ImageURL      string     `json:"image_url"`
	Price         *float64   `json:"price"`
	OriginalPrice *float64   `json:"original_price"`
	Shipping      string     `json:"shipping"`
	Tags          []string   `json:"tags"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

type CreateCouponRequest struct {
	Title         string     `json:"title" binding:"required"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	MerchantID    *uint      `json:"merchant_id"`
	DiscountCode  string     `json:"discount_code"`
	DiscountValue string     `json:"discount_value"`
	URL           string     `json:"url"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

type CreateDiscussionRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	MerchantID  *uint  `json:"merchant_id"`
}

// UpdateContentRequest is the owner edit shared by every content kind.
type UpdateContentRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}
