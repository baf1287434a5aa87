// engine/outcome.go
package engine

import "tictactoe-arena/models"

// Result is the verdict on a board.
type Result int

const (
	Ongoing Result = iota
	Win
	Draw
)

func (r Result) String() string {
	switch r {
	case Win:
		return "win"
	case Draw:
		return "draw"
	default:
		return "ongoing"
	}
}

// Outcome carries the winning mark when Result is Win.
type Outcome struct {
	Result Result
	Mark   models.Mark
}

// lines are the 8 winning triples: rows, columns, diagonals.
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Evaluate returns Win if any triple holds three equal non-empty marks, Draw if
// the board is full otherwise, and Ongoing in every other case.
func Evaluate(board models.Board) Outcome {
	for _, l := range lines {
		m := board[l[0]]
		if m != models.MarkEmpty && m == board[l[1]] && m == board[l[2]] {
			return Outcome{Result: Win, Mark: m}
		}
	}
	for _, c := range board {
		if c == models.MarkEmpty {
			return Outcome{Result: Ongoing}
		}
	}
	return Outcome{Result: Draw}
}
