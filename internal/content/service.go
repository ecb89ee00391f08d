package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/emilythestrangee/dealdrop/backend/internal/models"
	"github.com/emilythestrangee/dealdrop/backend/internal/votes"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalid       = errors.New("invalid input")
	ErrInvalidKind   = errors.New("unknown content kind")
	ErrInvalidParent = errors.New("parent comment does not belong to this item")
)

// tables maps every votable kind to the table holding it.
var tables = map[votes.TargetType]string{
	votes.TargetDeal:       "deals",
	votes.TargetCoupon:     "coupons",
	votes.TargetDiscussion: "discussions",
	votes.TargetComment:    "comments",
}

// IsContentKind reports whether kind names a top-level content item.
func IsContentKind(kind votes.TargetType) bool {
	return kind == votes.TargetDeal || kind == votes.TargetCoupon || kind == votes.TargetDiscussion
}

// View is a content item projected for one viewer.
type View struct {
	Kind votes.TargetType `json:"kind"`
	Item any              `json:"item"`
	votes.Projection
	CommentCount int64 `json:"commentCount"`
}

// Service is the read side of deals, coupons and discussions, plus the
// writes that change their vote and comment aggregates.
type Service struct {
	db        *gorm.DB
	validate  *validator.Validate
	newWindow time.Duration
	now       func() time.Time
}

func NewService(db *gorm.DB, newWindow time.Duration) *Service {
	if newWindow <= 0 {
		newWindow = 72 * time.Hour
	}
	return &Service{
		db:        db,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		newWindow: newWindow,
		now:       time.Now,
	}
}

// Load fetches one item with its score, the viewer's vote and its comment
// count. viewerID 0 is anonymous. A missing item is ErrNotFound.
func (s *Service) Load(ctx context.Context, kind votes.TargetType, id, viewerID uint) (*View, error) {
	item, err := s.find(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	views, err := s.views(ctx, kind, []any{item}, []uint{id}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func newModel(kind votes.TargetType) (any, error) {
	switch kind {
	case votes.TargetDeal:
		return &models.Deal{}, nil
	case votes.TargetCoupon:
		return &models.Coupon{}, nil
	case votes.TargetDiscussion:
		return &models.Discussion{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
}

func (s *Service) find(ctx context.Context, kind votes.TargetType, id uint) (any, error) {
	item, err := newModel(kind)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Preload("User").Preload("Merchant").First(item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s %d: %w", kind, id, err)
	}
	return item, nil
}

// exists checks any votable target, comments included.
func (s *Service) exists(ctx context.Context, kind votes.TargetType, id uint) error {
	table, ok := tables[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	var n int64
	if err := s.db.WithContext(ctx).Table(table).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("look up %s %d: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return nil
}

// views decorates items with their aggregates. items[i] must have id ids[i].
func (s *Service) views(ctx context.Context, kind votes.TargetType, items []any, ids []uint, viewerID uint) ([]View, error) {
	out := make([]View, len(items))
	if len(items) == 0 {
		return out, nil
	}

	var (
		projections map[uint]votes.Projection
		counts      map[uint]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projections, err = s.Projections(gctx, kind, ids, viewerID)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = s.CommentCounts(gctx, kind, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, item := range items {
		out[i] = View{
			Kind:         kind,
			Item:         item,
			Projection:   projections[ids[i]],
			CommentCount: counts[ids[i]],
		}
	}
	return out, nil
}
