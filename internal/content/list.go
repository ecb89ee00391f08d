package content

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/dealdrop/backend/internal/models"
	"github.com/emilythestrangee/dealdrop/backend/internal/votes"
)

type Sort string

const (
	// SortRecent lists everything newest first.
	SortRecent Sort = "recent"
	// SortNew lists items posted inside the "new" window, newest first.
	SortNew Sort = "new"
	// SortTop lists items by net score.
	SortTop Sort = "top"
)

const (
	defaultLimit = 30
	maxLimit     = 100
)

type ListOptions struct {
	Category       string
	MerchantID     uint
	UserID         uint
	Sort           Sort
	IncludeExpired bool
	Limit          int
}

// List returns projected items of one kind, filtered by simple equality
// matches and ordered by opts.Sort.
func (s *Service) List(ctx context.Context, kind votes.TargetType, opts ListOptions, viewerID uint) ([]View, error) {
	if !IsContentKind(kind) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	table := tables[kind]

	q := s.db.WithContext(ctx).Preload("User").Preload("Merchant")
	if opts.Category != "" {
		q = q.Where(table+".category = ?", opts.Category)
	}
	if opts.MerchantID != 0 {
		q = q.Where(table+".merchant_id = ?", opts.MerchantID)
	}
	if opts.UserID != 0 {
		q = q.Where(table+".user_id = ?", opts.UserID)
	}
	if !opts.IncludeExpired {
		q = q.Where(table + ".expired = false")
	}

	switch opts.Sort {
	case SortNew:
		q = q.Where(table+".created_at >= ?", s.now().Add(-s.newWindow)).
			Order(table + ".created_at DESC")
	case SortTop:
		q = q.Order(clause.OrderBy{Expression: clause.Expr{
			SQL: "(SELECT " + scoreSQL + " FROM votes WHERE votes.target_type = ? AND votes.target_id = " + table + ".id) DESC, " +
				table + ".created_at DESC",
			Vars:               []any{kind},
			WithoutParentheses: true,
		}})
	default:
		q = q.Order(table + ".created_at DESC")
	}

	limit := opts.Limit
	switch {
	case limit <= 0:
		limit = defaultLimit
	case limit > maxLimit:
		limit = maxLimit
	}
	q = q.Limit(limit)

	var (
		items []any
		ids   []uint
		err   error
	)
	switch kind {
	case votes.TargetDeal:
		items, ids, err = findAll[models.Deal](q)
	case votes.TargetCoupon:
		items, ids, err = findAll[models.Coupon](q)
	case votes.TargetDiscussion:
		items, ids, err = findAll[models.Discussion](q)
	}
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", kind, err)
	}

	return s.views(ctx, kind, items, ids, viewerID)
}

type item interface {
	Base() models.ContentBase
}

func findAll[T item](q *gorm.DB) ([]any, []uint, error) {
	var rows []T
	if err := q.Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	items := make([]any, len(rows))
	ids := make([]uint, len(rows))
	for i := range rows {
		items[i] = &rows[i]
		ids[i] = rows[i].Base().ID
	}
	return items, ids, nil
}
