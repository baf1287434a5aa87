// services/streak_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"tictactoe-arena/models"
)

// ObjectStore is a per-user JSON document store. Update must run fn as one
// atomic read-modify-write for the addressed object.
type ObjectStore interface {
	Read(ctx context.Context, collection, key, userID string) ([]byte, bool, error)
	Update(ctx context.Context, collection, key, userID string, fn func(current []byte, found bool) ([]byte, error)) error
	Delete(ctx context.Context, collection, key, userID string) error
}

// StreakService is the streak ledger.
type StreakService struct {
	Store ObjectStore
}

func NewStreakService(store ObjectStore) *StreakService {
	return &StreakService{Store: store}
}

func decodeStreak(raw []byte, found bool) (models.StreakRecord, error) {
	var rec models.StreakRecord
	if !found || len(raw) == 0 {
		return rec, nil
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("decode streak record: %w", err)
	}
	return rec, nil
}

// Get returns the player's record, or 0/0 when none exists yet. It never writes.
func (s *StreakService) Get(ctx context.Context, userID string) (models.StreakRecord, error) {
	raw, found, err := s.Store.Read(ctx, models.StreakCollection, models.StreakKey, userID)
	if err != nil {
		return models.StreakRecord{}, fmt.Errorf("read streak for %s: %w", userID, err)
	}
	return decodeStreak(raw, found)
}

// RecordWin extends the current streak and raises the best streak with it.
func (s *StreakService) RecordWin(ctx context.Context, userID string) (models.StreakRecord, error) {
	var out models.StreakRecord
	err := s.Store.Update(ctx, models.StreakCollection, models.StreakKey, userID, func(current []byte, found bool) ([]byte, error) {
		rec, err := decodeStreak(current, found)
		if err != nil {
			return nil, err
		}
		rec.CurrentStreak++
		if rec.CurrentStreak > rec.BestStreak {
			rec.BestStreak = rec.CurrentStreak
		}
		out = rec
		return json.Marshal(rec)
	})
	if err != nil {
		return models.StreakRecord{}, fmt.Errorf("record win streak for %s: %w", userID, err)
	}
	return out, nil
}

// ResetStreak zeroes the current streak; the best streak is kept.
func (s *StreakService) ResetStreak(ctx context.Context, userID string) error {
	err := s.Store.Update(ctx, models.StreakCollection, models.StreakKey, userID, func(current []byte, found bool) ([]byte, error) {
		rec, err := decodeStreak(current, found)
		if err != nil {
			return nil, err
		}
		rec.CurrentStreak = 0
		return json.Marshal(rec)
	})
	if err != nil {
		return fmt.Errorf("reset streak for %s: %w", userID, err)
	}
	return nil
}

func (s *StreakService) Delete(ctx context.Context, userID string) error {
	return s.Store.Delete(ctx, models.StreakCollection, models.StreakKey, userID)
}
