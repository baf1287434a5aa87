// storage/ranking.go
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"tictactoe-arena/models"
)

const rankingKeyPrefix = "leaderboard:"

// RankingStore keeps each board as a redis sorted set of owner -> score.
type RankingStore struct {
	rdb redis.UniversalClient
}

func NewRankingStore(rdb redis.UniversalClient) *RankingStore {
	return &RankingStore{rdb: rdb}
}

// OpenRedis parses a redis:// URL and checks the connection.
func OpenRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func boardKey(board string) string {
	return rankingKeyPrefix + board
}

func (s *RankingStore) Increment(ctx context.Context, board, ownerID string, delta int64) (int64, error) {
	score, err := s.rdb.ZIncrBy(ctx, boardKey(board), float64(delta), ownerID).Result()
	if err != nil {
		return 0, err
	}
	return int64(score), nil
}

// Top lists the board highest first; limit <= 0 lists everything.
func (s *RankingStore) Top(ctx context.Context, board string, limit int) ([]models.RankRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	zs, err := s.rdb.ZRevRangeWithScores(ctx, boardKey(board), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.RankRecord, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		out = append(out, models.RankRecord{OwnerID: member, Score: int64(z.Score)})
	}
	return out, nil
}

func (s *RankingStore) Score(ctx context.Context, board, ownerID string) (int64, error) {
	score, err := s.rdb.ZScore(ctx, boardKey(board), ownerID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int64(score), nil
}

func (s *RankingStore) Remove(ctx context.Context, board, ownerID string) error {
	return s.rdb.ZRem(ctx, boardKey(board), ownerID).Err()
}
