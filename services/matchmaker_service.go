// services/matchmaker_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"tictactoe-arena/models"
)

var ErrInvalidMode = errors.New("invalid match mode")

// MatchRegistry is the listing/creation side of the match runtime.
type MatchRegistry interface {
	List(ctx context.Context, query models.MatchLabel, limit int) ([]string, error)
	Create(ctx context.Context, mode models.MatchMode) (string, error)
}

type MatchmakerService struct {
	Registry MatchRegistry
}

func NewMatchmakerService(registry MatchRegistry) *MatchmakerService {
	return &MatchmakerService{Registry: registry}
}

// FindOrCreateMatch returns the first open match of the mode, creating one if
// none is listed. Search and create are two separate steps.
func (s *MatchmakerService) FindOrCreateMatch(ctx context.Context, rawMode string) (string, error) {
	mode, ok := models.ParseMode(rawMode)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, rawMode)
	}

	ids, err := s.Registry.List(ctx, models.MatchLabel{Open: true, Mode: mode}, 1)
	if err != nil {
		return "", fmt.Errorf("list open %s matches: %w", mode, err)
	}
	if len(ids) > 0 {
		log.Printf("[MATCHMAKER] 🔎 Reusing open %s match %s", mode, ids[0])
		return ids[0], nil
	}

	id, err := s.Registry.Create(ctx, mode)
	if err != nil {
		return "", fmt.Errorf("create %s match: %w", mode, err)
	}
	log.Printf("[MATCHMAKER] ✨ Created %s match %s", mode, id)
	return id, nil
}
