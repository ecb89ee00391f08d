package content

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/emilythestrangee/dealdrop/backend/internal/models"
	"github.com/emilythestrangee/dealdrop/backend/internal/votes"
)

var ErrSlugTaken = errors.New("merchant slug already taken")

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a merchant name into its storefront path segment.
func Slugify(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// Storefront is a merchant page: the merchant and its live offers.
type Storefront struct {
	Merchant models.Merchant `json:"merchant"`
	Deals    []View          `json:"deals"`
	Coupons  []View          `json:"coupons"`
}

func (s *Service) Merchants(ctx context.Context) ([]models.Merchant, error) {
	merchants := []models.Merchant{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&merchants).Error; err != nil {
		return nil, fmt.Errorf("list merchants: %w", err)
	}
	return merchants, nil
}

func (s *Service) CreateMerchant(ctx context.Context, req models.CreateMerchantRequest) (*models.Merchant, error) {
	slug := Slugify(req.Slug)
	if slug == "" {
		slug = Slugify(req.Name)
	}
	m := models.Merchant{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Website:     strings.TrimSpace(req.Website),
		LogoURL:     strings.TrimSpace(req.LogoURL),
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.validate.Struct(m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%q: %w", slug, ErrSlugTaken)
		}
		return nil, fmt.Errorf("create merchant: %w", err)
	}
	return &m, nil
}

// Storefront loads a merchant by slug with its unexpired deals and coupons.
func (s *Service) Storefront(ctx context.Context, slug string, sort Sort, viewerID uint) (*Storefront, error) {
	var m models.Merchant
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("merchant %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load merchant %q: %w", slug, err)
	}

	opts := ListOptions{MerchantID: m.ID, Sort: sort, Limit: maxLimit}
	deals, err := s.List(ctx, votes.TargetDeal, opts, viewerID)
	if err != nil {
		return nil, err
	}
	coupons, err := s.List(ctx, votes.TargetCoupon, opts, viewerID)
	if err != nil {
		return nil, err
	}

	return &Storefront{Merchant: m, Deals: deals, Coupons: coupons}, nil
}
