// services/leaderboard_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"tictactoe-arena/models"
)

// DisplayNameLookup resolves identities to display names. Unknown ids are
// simply absent from the result.
type DisplayNameLookup interface {
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

type LeaderboardService struct {
	Scores  *ScoreService
	Streaks *StreakService
	Names   DisplayNameLookup
}

func NewLeaderboardService(scores *ScoreService, streaks *StreakService, names DisplayNameLookup) *LeaderboardService {
	return &LeaderboardService{Scores: scores, Streaks: streaks, Names: names}
}

// WinRate is wins as a percentage of games, one decimal, 0 with no games.
func WinRate(wins, losses int64) float64 {
	total := wins + losses
	if total == 0 {
		return 0
	}
	return math.Round(float64(wins)/float64(total)*1000) / 10
}

// ListTopPlayers joins the win and loss boards, adds streaks and names, and
// returns the top rows by wins. Ties are broken by identity.
func (s *LeaderboardService) ListTopPlayers(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = models.DefaultLeaderboardLimit
	}

	wins, err := s.Scores.ListWins(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wins: %w", err)
	}
	losses, err := s.Scores.ListLosses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list losses: %w", err)
	}

	rows := make(map[string]*models.LeaderboardEntry, len(wins)+len(losses))
	row := func(id string) *models.LeaderboardEntry {
		r, ok := rows[id]
		if !ok {
			r = &models.LeaderboardEntry{Identity: id}
			rows[id] = r
		}
		return r
	}
	for _, w := range wins {
		row(w.OwnerID).Wins = w.Score
	}
	for _, l := range losses {
		row(l.OwnerID).Losses = l.Score
	}

	entries := make([]models.LeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		r.WinRate = WinRate(r.Wins, r.Losses)
		entries = append(entries, *r)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		return entries[i].Identity < entries[j].Identity
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}

	ids := make([]string, len(entries))
	for i := range entries {
		ids[i] = entries[i].Identity
		s.fillStreak(ctx, &entries[i])
	}
	s.fillNames(ctx, entries, ids)
	return entries, nil
}

// PlayerStats builds the same row for a single player.
func (s *LeaderboardService) PlayerStats(ctx context.Context, userID string) (models.LeaderboardEntry, error) {
	wins, losses, err := s.Scores.Stats(ctx, userID)
	if err != nil {
		return models.LeaderboardEntry{}, err
	}
	entry := models.LeaderboardEntry{
		Identity: userID,
		Wins:     wins,
		Losses:   losses,
		WinRate:  WinRate(wins, losses),
	}
	s.fillStreak(ctx, &entry)
	entries := []models.LeaderboardEntry{entry}
	s.fillNames(ctx, entries, []string{userID})
	return entries[0], nil
}

func (s *LeaderboardService) fillStreak(ctx context.Context, e *models.LeaderboardEntry) {
	rec, err := s.Streaks.Get(ctx, e.Identity)
	if err != nil {
		log.Printf("[LEDGER] ⚠️ Streak lookup failed for %s, using defaults: %v", e.Identity, err)
		return
	}
	e.CurrentStreak = rec.CurrentStreak
	e.BestStreak = rec.BestStreak
}

func (s *LeaderboardService) fillNames(ctx context.Context, entries []models.LeaderboardEntry, ids []string) {
	var names map[string]string
	if s.Names != nil && len(ids) > 0 {
		var err error
		if names, err = s.Names.DisplayNames(ctx, ids); err != nil {
			log.Printf("[LEDGER] ⚠️ Display name lookup failed: %v", err)
		}
	}
	for i := range entries {
		if name := names[entries[i].Identity]; name != "" {
			entries[i].DisplayName = name
		} else {
			entries[i].DisplayName = entries[i].Identity
		}
	}
}
