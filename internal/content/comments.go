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

// CommentView is one node of a comment tree, projected for a viewer.
type CommentView struct {
	models.Comment
	votes.Projection
	Replies []*CommentView `json:"replies"`
}

// Comments returns the comment tree of an item, oldest first at every level.
func (s *Service) Comments(ctx context.Context, kind votes.TargetType, id, viewerID uint) ([]*CommentView, error) {
	if !IsContentKind(kind) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if err := s.exists(ctx, kind, id); err != nil {
		return nil, err
	}

	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("target_type = ? AND target_id = ?", kind, id).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("load comments for %s %d: %w", kind, id, err)
	}

	ids := make([]uint, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	projections, err := s.Projections(ctx, votes.TargetComment, ids, viewerID)
	if err != nil {
		return nil, err
	}

	return buildTree(comments, projections), nil
}

func buildTree(comments []models.Comment, projections map[uint]votes.Projection) []*CommentView {
	nodes := make(map[uint]*CommentView, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &CommentView{Comment: c, Projection: projections[c.ID], Replies: []*CommentView{}}
	}

	roots := []*CommentView{}
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		// Root, or a reply whose parent is gone.
		roots = append(roots, node)
	}
	return roots
}

// AddComment posts a comment, or a reply when req.ParentID is set, on an item.
func (s *Service) AddComment(ctx context.Context, kind votes.TargetType, id, authorID uint, req models.CreateCommentRequest) (*models.Comment, error) {
	if !IsContentKind(kind) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment is empty", ErrInvalid)
	}
	if err := s.exists(ctx, kind, id); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		var parent models.Comment
		err := s.db.WithContext(ctx).First(&parent, *req.ParentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("comment %d: %w", *req.ParentID, ErrInvalidParent)
		}
		if err != nil {
			return nil, fmt.Errorf("load parent comment: %w", err)
		}
		if parent.TargetType != kind || parent.TargetID != id {
			return nil, fmt.Errorf("comment %d: %w", parent.ID, ErrInvalidParent)
		}
	}

	comment := models.Comment{
		Content:    content,
		AuthorID:   authorID,
		TargetType: kind,
		TargetID:   id,
		ParentID:   req.ParentID,
	}
	db := s.db.WithContext(ctx)
	if err := db.Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	if err := db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		return nil, fmt.Errorf("reload comment %d: %w", comment.ID, err)
	}
	return &comment, nil
}

// EditComment replaces the content of a comment owned by userID.
func (s *Service) EditComment(ctx context.Context, commentID, userID uint, content string) (*CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment is empty", ErrInvalid)
	}

	db := s.db.WithContext(ctx)
	var comment models.Comment
	err := db.First(&comment, commentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("comment %d: %w", commentID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load comment %d: %w", commentID, err)
	}
	if comment.AuthorID != userID {
		return nil, fmt.Errorf("comment %d: %w", commentID, ErrForbidden)
	}

	if err := db.Model(&comment).Update("content", content).Error; err != nil {
		return nil, fmt.Errorf("update comment %d: %w", commentID, err)
	}
	if err := db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		return nil, fmt.Errorf("reload comment %d: %w", commentID, err)
	}

	projections, err := s.Projections(ctx, votes.TargetComment, []uint{comment.ID}, userID)
	if err != nil {
		return nil, err
	}
	return &CommentView{Comment: comment, Projection: projections[comment.ID], Replies: []*CommentView{}}, nil
}
