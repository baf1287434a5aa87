// engine/move.go
package engine

import (
	"errors"

	"tictactoe-arena/models"
)

var (
	ErrNotActive   = errors.New("match is not active")
	ErrNotYourTurn = errors.New("not this player's turn")
	ErrOutOfRange  = errors.New("cell out of range")
	ErrOccupied    = errors.New("cell already occupied")
	ErrNotSeated   = errors.New("player not seated in match")
)

// Validate checks a move against the state without touching it. Checks run in
// a fixed order and the first failure is returned.
func Validate(state *models.MatchState, actor string, cell int) error {
	if state.Status != models.StatusActive {
		return ErrNotActive
	}
	if actor != state.CurrentTurnPlayer {
		return ErrNotYourTurn
	}
	if cell < 0 || cell > 8 {
		return ErrOutOfRange
	}
	if state.Board[cell] != models.MarkEmpty {
		return ErrOccupied
	}
	if _, ok := state.Players[actor]; !ok {
		return ErrNotSeated
	}
	return nil
}

// ApplyMove validates the move, writes the actor's mark and evaluates the
// resulting board. On error the state is left untouched.
func ApplyMove(state *models.MatchState, actor string, cell int) (Outcome, error) {
	if err := Validate(state, actor, cell); err != nil {
		return Outcome{}, err
	}
	state.Board[cell] = state.Players[actor].Mark
	return Evaluate(state.Board), nil
}
