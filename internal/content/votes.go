package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/dealdrop/backend/internal/models"
	"github.com/emilythestrangee/dealdrop/backend/internal/votes"
)

const uniqueViolation = "23505"

// CastVote creates, flips or removes userID's vote on the request target and
// returns what it did together with the target's new projection.
func (s *Service) CastVote(ctx context.Context, userID uint, req votes.Request) (votes.Action, votes.Projection, error) {
	if !req.TargetType.Valid() {
		return "", votes.Projection{}, fmt.Errorf("%w: target type %q", ErrInvalid, req.TargetType)
	}
	if !req.VoteType.Valid() {
		return "", votes.Projection{}, fmt.Errorf("%w: vote type %q", ErrInvalid, req.VoteType)
	}
	if err := s.exists(ctx, req.TargetType, req.TargetID); err != nil {
		return "", votes.Projection{}, err
	}

	var (
		action votes.Action
		err    error
	)
	// A concurrent first vote by the same user can win the insert; the
	// second attempt then sees its row and flips or removes it.
	for attempt := 0; attempt < 2; attempt++ {
		action, err = s.castOnce(ctx, userID, req)
		if !isUniqueViolation(err) {
			break
		}
		slog.Debug("Vote insert raced, retrying", "user_id", userID, "target", req.TargetType, "target_id", req.TargetID)
	}
	if err != nil {
		return "", votes.Projection{}, fmt.Errorf("cast vote: %w", err)
	}

	projections, err := s.Projections(ctx, req.TargetType, []uint{req.TargetID}, userID)
	if err != nil {
		return "", votes.Projection{}, err
	}
	return action, projections[req.TargetID], nil
}

func (s *Service) castOnce(ctx context.Context, userID uint, req votes.Request) (votes.Action, error) {
	var action votes.Action

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serializes clicks by one user on one target until commit.
		lockKey := fmt.Sprintf("vote:%d:%s:%d", userID, req.TargetType, req.TargetID)
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", lockKey).Error; err != nil {
			return err
		}

		var existing models.Vote
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND target_type = ? AND target_id = ?", userID, req.TargetType, req.TargetID).
			First(&existing).Error

		current := votes.VoteNone
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return err
		default:
			current = existing.VoteType
		}

		var next votes.VoteType
		next, action = votes.Resolve(current, req.VoteType)

		switch action {
		case votes.ActionCreated:
			return tx.Create(&models.Vote{
				UserID:     userID,
				TargetType: req.TargetType,
				TargetID:   req.TargetID,
				VoteType:   next,
			}).Error
		case votes.ActionUpdated:
			return tx.Model(&existing).Update("vote_type", next).Error
		default:
			return tx.Delete(&existing).Error
		}
	})
	return action, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
