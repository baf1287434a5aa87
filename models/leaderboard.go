package models

// Ranking boards kept by the score ledger.
const (
	BoardWins   = "wins"
	BoardLosses = "losses"
)

// DefaultLeaderboardLimit is how many rows /leaderboard returns.
const DefaultLeaderboardLimit = 10

// RankRecord is one owner's score on a board.
type RankRecord struct {
	OwnerID string `json:"owner_id"`
	Score   int64  `json:"score"`
}

// LeaderboardEntry is one row of the public ranking.
type LeaderboardEntry struct {
	Identity      string  `json:"identity"`
	DisplayName   string  `json:"display_name"`
	Wins          int64   `json:"wins"`
	Losses        int64   `json:"losses"`
	WinRate       float64 `json:"win_rate"`
	CurrentStreak int     `json:"current_streak"`
	BestStreak    int     `json:"best_streak"`
}
