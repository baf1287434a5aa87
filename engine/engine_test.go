package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tictactoe-arena/models"
)

const (
	x = models.MarkX
	o = models.MarkO
	e = models.MarkEmpty
)

func TestEvaluateEveryLineWins(t *testing.T) {
	for _, mark := range []models.Mark{x, o} {
		for _, l := range lines {
			var b models.Board
			for _, i := range l {
				b[i] = mark
			}
			out := Evaluate(b)
			assert.Equal(t, Win, out.Result, "line %v", l)
			assert.Equal(t, mark, out.Mark)
		}
	}
}

func TestEvaluateDraw(t *testing.T) {
	b := models.Board{
		x, o, x,
		x, o, o,
		o, x, x,
	}
	assert.Equal(t, Outcome{Result: Draw}, Evaluate(b))
}

func TestEvaluateOngoing(t *testing.T) {
	assert.Equal(t, Ongoing, Evaluate(models.Board{}).Result)

	b := models.Board{
		x, o, x,
		e, o, e,
		e, x, e,
	}
	assert.Equal(t, Ongoing, Evaluate(b).Result)
}

func TestEvaluateMixedTripleIsNotWin(t *testing.T) {
	b := models.Board{
		x, x, o,
		e, e, e,
		e, e, e,
	}
	assert.Equal(t, Ongoing, Evaluate(b).Result)
}

func TestEvaluateWinOnFullBoard(t *testing.T) {
	b := models.Board{
		x, o, x,
		o, x, o,
		o, x, x,
	}
	out := Evaluate(b)
	assert.Equal(t, Win, out.Result)
	assert.Equal(t, x, out.Mark)
}

func TestEvaluateAllBoards(t *testing.T) {
	triples := [][3]int{
		{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
		{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
		{0, 4, 8}, {2, 4, 6},
	}
	symbols := [3]models.Mark{e, x, o}

	for n := 0; n < 19683; n++ {
		var b models.Board
		full := true
		for i, v := 0, n; i < 9; i, v = i+1, v/3 {
			b[i] = symbols[v%3]
			if b[i] == e {
				full = false
			}
		}

		holders := map[models.Mark]bool{}
		for _, tr := range triples {
			if b[tr[0]] != e && b[tr[0]] == b[tr[1]] && b[tr[1]] == b[tr[2]] {
				holders[b[tr[0]]] = true
			}
		}

		got := Evaluate(b)
		switch {
		case len(holders) > 0:
			if assert.Equal(t, Win, got.Result, "board %v", b) {
				assert.True(t, holders[got.Mark], "board %v won by %q", b, got.Mark)
			}
		case full:
			assert.Equal(t, Outcome{Result: Draw}, got, "board %v", b)
		default:
			assert.Equal(t, Outcome{Result: Ongoing}, got, "board %v", b)
		}
		if t.Failed() {
			return
		}
	}
}

func activeState() *models.MatchState {
	return &models.MatchState{
		ID:     "m1",
		Status: models.StatusActive,
		Mode:   models.ModeClassic,
		Players: map[string]*models.MatchPlayer{
			"alice": {UserID: "alice", Mark: x, Connected: true},
			"bob":   {UserID: "bob", Mark: o, Connected: true},
		},
		JoinOrder:         []string{"alice", "bob"},
		CurrentTurnPlayer: "alice",
	}
}

func TestValidateOrder(t *testing.T) {
	st := activeState()
	st.Board[4] = o

	// every check fails at once; status wins
	st.Status = models.StatusWaiting
	assert.ErrorIs(t, Validate(st, "bob", 4), ErrNotActive)

	st.Status = models.StatusActive
	assert.ErrorIs(t, Validate(st, "bob", 9), ErrNotYourTurn)
	assert.ErrorIs(t, Validate(st, "alice", 9), ErrOutOfRange)
	assert.ErrorIs(t, Validate(st, "alice", -1), ErrOutOfRange)
	assert.ErrorIs(t, Validate(st, "alice", 4), ErrOccupied)
	assert.NoError(t, Validate(st, "alice", 0))
}

func TestValidateCompletedRejectsEverything(t *testing.T) {
	st := activeState()
	st.Status = models.StatusCompleted
	for cell := 0; cell < 9; cell++ {
		assert.ErrorIs(t, Validate(st, "alice", cell), ErrNotActive)
	}
}

func TestApplyMoveRejectLeavesStateUnchanged(t *testing.T) {
	st := activeState()
	st.Board[0] = x
	before := st.Snapshot()

	_, err := ApplyMove(st, "alice", 0)
	require.ErrorIs(t, err, ErrOccupied)
	assert.Equal(t, before.Board, st.Board)
	assert.Equal(t, before.CurrentTurnPlayer, st.CurrentTurnPlayer)
	assert.Equal(t, before.Status, st.Status)
}

func TestApplyMoveWritesMark(t *testing.T) {
	st := activeState()
	st.Board[0], st.Board[1] = x, x
	st.Board[3], st.Board[4] = o, o

	out, err := ApplyMove(st, "alice", 2)
	require.NoError(t, err)
	assert.Equal(t, x, st.Board[2])
	assert.Equal(t, Outcome{Result: Win, Mark: x}, out)
}
