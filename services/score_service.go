// services/score_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"tictactoe-arena/models"
)

// RankingStore keeps integer scores per (board, owner) with atomic increments.
// Top with limit <= 0 returns the whole board, highest score first.
type RankingStore interface {
	Increment(ctx context.Context, board, ownerID string, delta int64) (int64, error)
	Top(ctx context.Context, board string, limit int) ([]models.RankRecord, error)
	Score(ctx context.Context, board, ownerID string) (int64, error)
	Remove(ctx context.Context, board, ownerID string) error
}

// ScoreService is the score ledger: two independent counters, wins and losses.
type ScoreService struct {
	Ranks RankingStore
}

func NewScoreService(ranks RankingStore) *ScoreService {
	return &ScoreService{Ranks: ranks}
}

func (s *ScoreService) RecordWin(ctx context.Context, userID string) (int64, error) {
	return s.Ranks.Increment(ctx, models.BoardWins, userID, 1)
}

func (s *ScoreService) RecordLoss(ctx context.Context, userID string) (int64, error) {
	return s.Ranks.Increment(ctx, models.BoardLosses, userID, 1)
}

// ListWins returns every win record, highest first.
func (s *ScoreService) ListWins(ctx context.Context) ([]models.RankRecord, error) {
	return s.Ranks.Top(ctx, models.BoardWins, 0)
}

// ListLosses returns every loss record, highest first.
func (s *ScoreService) ListLosses(ctx context.Context) ([]models.RankRecord, error) {
	return s.Ranks.Top(ctx, models.BoardLosses, 0)
}

// Stats returns one player's counters; missing records count as 0.
func (s *ScoreService) Stats(ctx context.Context, userID string) (wins, losses int64, err error) {
	if wins, err = s.Ranks.Score(ctx, models.BoardWins, userID); err != nil {
		return 0, 0, fmt.Errorf("read wins for %s: %w", userID, err)
	}
	if losses, err = s.Ranks.Score(ctx, models.BoardLosses, userID); err != nil {
		return 0, 0, fmt.Errorf("read losses for %s: %w", userID, err)
	}
	return wins, losses, nil
}

// Delete removes the player from both boards, attempting both even if one fails.
func (s *ScoreService) Delete(ctx context.Context, userID string) error {
	var errs []error
	for _, board := range []string{models.BoardWins, models.BoardLosses} {
		if err := s.Ranks.Remove(ctx, board, userID); err != nil {
			errs = append(errs, fmt.Errorf("remove %s from %s: %w", userID, board, err))
		}
	}
	return errors.Join(errs...)
}
