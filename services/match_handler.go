// services/match_handler.go
package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/jonboulle/clockwork"

	"tictactoe-arena/engine"
	"tictactoe-arena/models"
)

// Dispatcher is how a match talks back to the hosting runtime.
type Dispatcher interface {
	Broadcast(op models.OpCode, payload []byte) error
	UpdateLabel(label models.MatchLabel) error
}

// StreakRecorder is the part of the streak ledger the match needs.
type StreakRecorder interface {
	RecordWin(ctx context.Context, userID string) (models.StreakRecord, error)
	ResetStreak(ctx context.Context, userID string) error
}

// ScoreRecorder is the part of the score ledger the match needs.
type ScoreRecorder interface {
	RecordWin(ctx context.Context, userID string) (int64, error)
	RecordLoss(ctx context.Context, userID string) (int64, error)
}

const (
	DefaultTurnDuration = 30 * time.Second
	ledgerWriteTimeout  = 5 * time.Second
)

// MatchHandler is the match state machine. The runtime calls its hooks with the
// match lock held, so a MatchState is never touched by two hooks at once.
type MatchHandler struct {
	Streaks      StreakRecorder
	Scores       ScoreRecorder
	Clock        clockwork.Clock
	TurnDuration time.Duration
}

func NewMatchHandler(streaks StreakRecorder, scores ScoreRecorder, clock clockwork.Clock, turn time.Duration) *MatchHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if turn <= 0 {
		turn = DefaultTurnDuration
	}
	return &MatchHandler{Streaks: streaks, Scores: scores, Clock: clock, TurnDuration: turn}
}

// Init builds the empty state for a new match and its initial label.
func (h *MatchHandler) Init(matchID string, mode models.MatchMode) (*models.MatchState, models.MatchLabel) {
	state := &models.MatchState{
		ID:        matchID,
		Players:   make(map[string]*models.MatchPlayer, 2),
		Status:    models.StatusWaiting,
		Mode:      mode,
		CreatedAt: h.Clock.Now(),
	}
	return state, models.MatchLabel{Open: true, Mode: mode}
}

// JoinAttempt is the admission guard: at most two seats, one per identity.
func (h *MatchHandler) JoinAttempt(state *models.MatchState, p models.Presence) bool {
	if p.UserID == "" || len(state.Players) >= 2 {
		return false
	}
	if _, seated := state.Players[p.UserID]; seated {
		return false
	}
	return true
}

// Join seats an admitted player. The second seat starts the match.
func (h *MatchHandler) Join(ctx context.Context, d Dispatcher, state *models.MatchState, p models.Presence) {
	state.Players[p.UserID] = &models.MatchPlayer{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Connected:   true,
	}
	state.JoinOrder = append(state.JoinOrder, p.UserID)
	log.Printf("[MATCH] 👤 %s joined match %s (%d/2)", p.UserID, state.ID, len(state.Players))

	if len(state.Players) == 2 && state.Status == models.StatusWaiting {
		h.start(d, state)
	}
	h.broadcast(d, state)
}

func (h *MatchHandler) start(d Dispatcher, state *models.MatchState) {
	first, second := state.JoinOrder[0], state.JoinOrder[1]
	state.Players[first].Mark = models.MarkX
	state.Players[second].Mark = models.MarkO
	state.Status = models.StatusActive
	state.CurrentTurnPlayer = first
	h.resetDeadline(state)

	if err := d.UpdateLabel(models.MatchLabel{Open: false, Mode: state.Mode}); err != nil {
		log.Printf("[MATCH] ⚠️ Failed to close label for match %s: %v", state.ID, err)
	}
	log.Printf("[MATCH] ▶️ Match %s started (%s): X=%s O=%s", state.ID, state.Mode, first, second)
}

// Leave handles a departed presence.
func (h *MatchHandler) Leave(ctx context.Context, d Dispatcher, state *models.MatchState, userID string) {
	player, ok := state.Players[userID]
	if !ok {
		return
	}

	switch state.Status {
	case models.StatusWaiting:
		delete(state.Players, userID)
		order := state.JoinOrder[:0]
		for _, id := range state.JoinOrder {
			if id != userID {
				order = append(order, id)
			}
		}
		state.JoinOrder = order
		log.Printf("[MATCH] 🚪 %s left waiting match %s", userID, state.ID)
		h.broadcast(d, state)

	case models.StatusActive:
		player.Connected = false
		other := state.Opponent(userID)
		if op, ok := state.Players[other]; ok && op.Connected {
			log.Printf("[MATCH] 🏳️ %s disconnected from match %s, %s wins by forfeit", userID, state.ID, other)
			h.complete(ctx, d, state, other, false)
			return
		}
		h.broadcast(d, state)
	}
}

// Loop runs one tick: the deadline check first, then the buffered messages in
// arrival order.
func (h *MatchHandler) Loop(ctx context.Context, d Dispatcher, state *models.MatchState, messages []models.MatchMessage) {
	h.CheckTimeout(ctx, d, state)

	for _, msg := range messages {
		switch msg.OpCode {
		case models.OpMove:
			var payload models.MovePayload
			if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.Position == nil {
				log.Printf("[MATCH] ⚠️ Malformed move from %s in match %s (queued %s): %q",
					msg.UserID, state.ID, h.Clock.Since(msg.ReceivedAt), string(msg.Data))
				continue
			}
			h.MakeMove(ctx, d, state, msg.UserID, *payload.Position)
		default:
			log.Printf("[MATCH] ⚠️ Unknown op code %d from %s in match %s (queued %s)",
				msg.OpCode, msg.UserID, state.ID, h.Clock.Since(msg.ReceivedAt))
		}
	}
}

// MakeMove applies a move if it is legal. Illegal moves are dropped without a
// broadcast; the bool only reports acceptance to the caller.
func (h *MatchHandler) MakeMove(ctx context.Context, d Dispatcher, state *models.MatchState, actor string, cell int) bool {
	out, err := engine.ApplyMove(state, actor, cell)
	if err != nil {
		log.Printf("[MATCH] 🔇 Rejected move by %s at %d in match %s: %v", actor, cell, state.ID, err)
		return false
	}

	switch out.Result {
	case engine.Win:
		h.complete(ctx, d, state, state.PlayerWithMark(out.Mark), false)
	case engine.Draw:
		h.complete(ctx, d, state, "", true)
	default:
		state.CurrentTurnPlayer = state.Opponent(actor)
		h.resetDeadline(state)
		h.broadcast(d, state)
	}
	return true
}

// CheckTimeout ends a timed match whose turn deadline has passed. The player
// who was not on turn wins.
func (h *MatchHandler) CheckTimeout(ctx context.Context, d Dispatcher, state *models.MatchState) bool {
	if state.Status != models.StatusActive || state.Mode != models.ModeTimed || state.TurnDeadline == nil {
		return false
	}
	if h.Clock.Now().Before(*state.TurnDeadline) {
		return false
	}
	winner := state.Opponent(state.CurrentTurnPlayer)
	log.Printf("[MATCH] ⏰ %s ran out of time in match %s, %s wins", state.CurrentTurnPlayer, state.ID, winner)
	h.complete(ctx, d, state, winner, false)
	return true
}

func (h *MatchHandler) resetDeadline(state *models.MatchState) {
	if state.Mode != models.ModeTimed {
		state.TurnDeadline = nil
		return
	}
	deadline := h.Clock.Now().Add(h.TurnDuration)
	state.TurnDeadline = &deadline
}

// complete is the only way into StatusCompleted, so settlement runs once.
// A draw leaves Winner empty.
func (h *MatchHandler) complete(ctx context.Context, d Dispatcher, state *models.MatchState, winner string, draw bool) {
	if state.Status == models.StatusCompleted {
		return
	}
	state.Status = models.StatusCompleted
	state.Winner = winner
	state.Draw = draw
	state.CurrentTurnPlayer = ""
	state.TurnDeadline = nil
	if draw {
		log.Printf("[MATCH] 🤝 Match %s completed in a draw", state.ID)
	} else {
		log.Printf("[MATCH] 🏁 Match %s completed, winner=%s", state.ID, winner)
	}

	h.settle(ctx, state)
	h.broadcast(d, state)
}

func (h *MatchHandler) broadcast(d Dispatcher, state *models.MatchState) {
	snap := state.Snapshot()
	payload, err := json.Marshal(&snap)
	if err != nil {
		log.Printf("[MATCH] ❌ Failed to encode state for match %s: %v", state.ID, err)
		return
	}
	if err := d.Broadcast(models.OpState, payload); err != nil {
		log.Printf("[MATCH] ⚠️ Broadcast failed for match %s: %v", state.ID, err)
	}
}
