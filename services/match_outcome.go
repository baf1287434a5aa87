// services/match_outcome.go
package services

import (
	"context"
	"log"

	"tictactoe-arena/models"
)

// settle writes the ledgers for a finished match. Every write is best effort:
// failures are logged and the decided outcome stands.
func (h *MatchHandler) settle(ctx context.Context, state *models.MatchState) {
	if state.Draw {
		for _, id := range state.JoinOrder {
			h.resetStreak(ctx, state.ID, id)
		}
		return
	}

	winner := state.Winner
	loser := state.Opponent(winner)

	h.ledgerWrite(ctx, state.ID, "win for "+winner, func(c context.Context) error {
		_, err := h.Scores.RecordWin(c, winner)
		return err
	})
	if loser != "" {
		h.ledgerWrite(ctx, state.ID, "loss for "+loser, func(c context.Context) error {
			_, err := h.Scores.RecordLoss(c, loser)
			return err
		})
	}
	h.ledgerWrite(ctx, state.ID, "streak for "+winner, func(c context.Context) error {
		rec, err := h.Streaks.RecordWin(c, winner)
		if err == nil {
			log.Printf("[LEDGER] 🔥 %s streak now %d (best %d)", winner, rec.CurrentStreak, rec.BestStreak)
		}
		return err
	})
	if loser != "" {
		h.resetStreak(ctx, state.ID, loser)
	}
}

func (h *MatchHandler) resetStreak(ctx context.Context, matchID, userID string) {
	h.ledgerWrite(ctx, matchID, "streak reset for "+userID, func(c context.Context) error {
		return h.Streaks.ResetStreak(c, userID)
	})
}

func (h *MatchHandler) ledgerWrite(ctx context.Context, matchID, what string, write func(context.Context) error) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ledgerWriteTimeout)
	defer cancel()
	if err := write(wctx); err != nil {
		log.Printf("[LEDGER] ❌ Match %s: failed to record %s: %v", matchID, what, err)
	}
}
