package models

import "time"

// Merchant is a store that deals and coupons are posted for.
type Merchant struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name" validate:"required,max=100"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug" validate:"required,max=100"`
	Website     string    `json:"website,omitempty" validate:"omitempty,url"`
	LogoURL     string    `json:"logo_url,omitempty" validate:"omitempty,url"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateMerchantRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Website     string `json:"website"`
	LogoURL     string `json:"logo_url"`
	Description string `json:"description"`
}
