package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/emilythestrangee/dealdrop/backend/internal/models"
	"github.com/emilythestrangee/dealdrop/backend/internal/votes"
)

// SubmitDeal validates and stores a new deal posted by userID.
func (s *Service) SubmitDeal(ctx context.Context, userID uint, req models.CreateDealRequest) (*models.Deal, error) {
	deal := models.Deal{
		ContentBase:   s.base(userID, req.Title, req.Description, req.Category, req.MerchantID),
		URL:           strings.TrimSpace(req.URL),
		ImageURL:      strings.TrimSpace(req.ImageURL),
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Shipping:      strings.TrimSpace(req.Shipping),
		Tags:          normalizeTags(req.Tags),
		ExpiresAt:     req.ExpiresAt,
	}
	if err := s.create(ctx, &deal, deal.MerchantID); err != nil {
		return nil, err
	}
	return &deal, nil
}

// SubmitCoupon validates and stores a new coupon posted by userID.
func (s *Service) SubmitCoupon(ctx context.Context, userID uint, req models.CreateCouponRequest) (*models.Coupon, error) {
	coupon := models.Coupon{
		ContentBase:   s.base(userID, req.Title, req.Description, req.Category, req.MerchantID),
		DiscountCode:  strings.TrimSpace(req.DiscountCode),
		DiscountValue: strings.TrimSpace(req.DiscountValue),
		URL:           strings.TrimSpace(req.URL),
		ExpiresAt:     req.ExpiresAt,
	}
	if coupon.DiscountCode == "" && coupon.URL == "" {
		return nil, fmt.Errorf("%w: a coupon needs a discount code or a url", ErrInvalid)
	}
	if err := s.create(ctx, &coupon, coupon.MerchantID); err != nil {
		return nil, err
	}
	return &coupon, nil
}

// SubmitDiscussion stores a new discussion thread.
func (s *Service) SubmitDiscussion(ctx context.Context, userID uint, req models.CreateDiscussionRequest) (*models.Discussion, error) {
	d := models.Discussion{
		ContentBase: s.base(userID, req.Title, req.Description, req.Category, req.MerchantID),
	}
	if err := s.create(ctx, &d, d.MerchantID); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Service) base(userID uint, title, description, category string, merchantID *uint) models.ContentBase {
	return models.ContentBase{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Category:    strings.ToLower(strings.TrimSpace(category)),
		MerchantID:  merchantID,
		UserID:      userID,
	}
}

func normalizeTags(tags []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func (s *Service) create(ctx context.Context, item any, merchantID *uint) error {
	if err := s.validate.Struct(item); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	db := s.db.WithContext(ctx)
	if merchantID != nil {
		var n int64
		if err := db.Model(&models.Merchant{}).Where("id = ?", *merchantID).Count(&n).Error; err != nil {
			return fmt.Errorf("look up merchant: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: unknown merchant %d", ErrInvalid, *merchantID)
		}
	}

	if err := db.Create(item).Error; err != nil {
		return fmt.Errorf("create %s: %w", models.KindOf(item), err)
	}
	return db.Preload("User").Preload("Merchant").First(item).Error
}

// Update applies an owner's edit to any content kind.
func (s *Service) Update(ctx context.Context, kind votes.TargetType, id, userID uint, req models.UpdateContentRequest) (any, error) {
	item, err := s.owned(ctx, kind, id, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	base := item.(interface{ Base() models.ContentBase }).Base()
	if req.Title != nil {
		base.Title = strings.TrimSpace(*req.Title)
		updates["title"] = base.Title
	}
	if req.Description != nil {
		base.Description = strings.TrimSpace(*req.Description)
		updates["description"] = base.Description
	}
	if req.Category != nil {
		base.Category = strings.ToLower(strings.TrimSpace(*req.Category))
		updates["category"] = base.Category
	}
	if len(updates) == 0 {
		return item, nil
	}
	if err := s.validate.Struct(base); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(item).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update %s %d: %w", kind, id, err)
	}
	return s.find(ctx, kind, id)
}

// Expire flags a deal or coupon as no longer available. Items are never
// hard-deleted.
func (s *Service) Expire(ctx context.Context, kind votes.TargetType, id, userID uint) (any, error) {
	if kind != votes.TargetDeal && kind != votes.TargetCoupon {
		return nil, fmt.Errorf("%w: only deals and coupons expire", ErrInvalidKind)
	}
	item, err := s.owned(ctx, kind, id, userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(item).Update("expired", true).Error; err != nil {
		return nil, fmt.Errorf("expire %s %d: %w", kind, id, err)
	}
	return s.find(ctx, kind, id)
}

func (s *Service) owned(ctx context.Context, kind votes.TargetType, id, userID uint) (any, error) {
	item, err := newModel(kind)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).First(item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s %d: %w", kind, id, err)
	}
	if item.(interface{ Base() models.ContentBase }).Base().UserID != userID {
		return nil, fmt.Errorf("%s %d: %w", kind, id, ErrForbidden)
	}
	return item, nil
}
