package content

import (
	"context"
	"fmt"

	"github.com/emilythestrangee/dealdrop/backend/internal/models"
	"github.com/emilythestrangee/dealdrop/backend/internal/votes"
)

// scoreSQL sums a group of vote rows into a net score.
const scoreSQL = "COALESCE(SUM(CASE WHEN vote_type = 'up' THEN 1 WHEN vote_type = 'down' THEN -1 ELSE 0 END), 0)"

type projectionRow struct {
	TargetID uint
	Score    int
	UserVote *string
}

// Projections computes score and viewer vote for many targets of one kind in
// a single grouped query. Targets without votes are absent from the map,
// which reads as the zero Projection.
func (s *Service) Projections(ctx context.Context, kind votes.TargetType, ids []uint, viewerID uint) (map[uint]votes.Projection, error) {
	out := make(map[uint]votes.Projection, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []projectionRow
	err := s.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("target_id, "+scoreSQL+" AS score, MAX(CASE WHEN user_id = ? THEN vote_type END) AS user_vote", viewerID).
		Where("target_type = ? AND target_id IN ?", kind, ids).
		Group("target_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate %s votes: %w", kind, err)
	}

	for _, r := range rows {
		p := votes.Projection{Score: r.Score}
		if r.UserVote != nil && viewerID != 0 {
			p.UserVote = votes.VoteType(*r.UserVote)
		}
		out[r.TargetID] = p
	}
	return out, nil
}

type countRow struct {
	TargetID uint
	Count    int64
}

// CommentCounts counts comments, replies included, per target.
func (s *Service) CommentCounts(ctx context.Context, kind votes.TargetType, ids []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(ids))
	if len(ids) == 0 || kind == votes.TargetComment {
		return out, nil
	}

	var rows []countRow
	err := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("target_id, COUNT(*) AS count").
		Where("target_type = ? AND target_id IN ?", kind, ids).
		Group("target_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count %s comments: %w", kind, err)
	}

	for _, r := range rows {
		out[r.TargetID] = r.Count
	}
	return out, nil
}
