package models

import (
	"strings"
	"time"
)

// Mark is the symbol a player places on the board.
type Mark string

const (
	MarkEmpty Mark = ""
	MarkX     Mark = "X"
	MarkO     Mark = "O"
)

// Board is the 3x3 grid in row-major order (cell 0 = top-left, 8 = bottom-right).
type Board [9]Mark

// MatchStatus is the lifecycle stage of a match. It only moves forward.
type MatchStatus string

const (
	StatusWaiting   MatchStatus = "waiting"
	StatusActive    MatchStatus = "active"
	StatusCompleted MatchStatus = "completed"
)

// MatchMode is fixed at creation and decides whether turns have a deadline.
type MatchMode string

const (
	ModeClassic MatchMode = "classic"
	ModeTimed   MatchMode = "timed"
)

// ParseMode accepts "classic" or "timed" (case and surrounding spaces ignored).
func ParseMode(raw string) (MatchMode, bool) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeClassic:
		return ModeClassic, true
	case ModeTimed:
		return ModeTimed, true
	default:
		return "", false
	}
}

// MatchPlayer is a participant seated in a match.
type MatchPlayer struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Mark        Mark   `json:"mark"`
	Connected   bool   `json:"connected"`
}

// MatchState is the authoritative state of one match. It is owned by the match
// process and only mutated by services.MatchHandler.
type MatchState struct {
	ID                string                  `json:"match_id"`
	Board             Board                   `json:"board"`
	Players           map[string]*MatchPlayer `json:"players"`
	JoinOrder         []string                `json:"-"`
	Status            MatchStatus             `json:"status"`
	CurrentTurnPlayer string                  `json:"current_turn,omitempty"`
	Mode              MatchMode               `json:"mode"`
	TurnDeadline      *time.Time              `json:"turn_deadline,omitempty"`
	Winner            string                  `json:"winner,omitempty"`
	Draw              bool                    `json:"draw,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
}

// Snapshot returns a deep copy safe to hand outside the match process.
func (s *MatchState) Snapshot() MatchState {
	out := *s
	out.Players = make(map[string]*MatchPlayer, len(s.Players))
	for id, p := range s.Players {
		cp := *p
		out.Players[id] = &cp
	}
	out.JoinOrder = append([]string(nil), s.JoinOrder...)
	if s.TurnDeadline != nil {
		d := *s.TurnDeadline
		out.TurnDeadline = &d
	}
	return out
}

// Opponent returns the other seated player's id, or "" if there is none.
func (s *MatchState) Opponent(userID string) string {
	for id := range s.Players {
		if id != userID {
			return id
		}
	}
	return ""
}

// PlayerWithMark returns the id of the player holding mark.
func (s *MatchState) PlayerWithMark(mark Mark) string {
	for id, p := range s.Players {
		if p.Mark == mark {
			return id
		}
	}
	return ""
}

// MatchLabel is what the registry indexes for matchmaking queries.
type MatchLabel struct {
	Open bool      `json:"open"`
	Mode MatchMode `json:"mode"`
}

// Presence identifies a connected participant.
type Presence struct {
	UserID      string
	DisplayName string
}
