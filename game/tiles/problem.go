package tiles

import (
	"github.com/wricardo/puzzle-search/game/search"
)

// Problem is the unit-cost search problem over boards.
type Problem struct {
	start Board
}

var _ search.Problem[Board, Direction] = (*Problem)(nil)

// NewProblem wraps a validated start board.
func NewProblem(start Board) *Problem {
	return &Problem{start: start}
}

func (p *Problem) StartState() Board { return p.start }

func (p *Problem) IsGoal(b Board) bool { return b.IsGoal() }

func (p *Problem) Successors(b Board) []search.Successor[Board, Direction] {
	moves := b.LegalMoves()
	out := make([]search.Successor[Board, Direction], 0, len(moves))
	for _, d := range moves {
		next, err := b.Apply(d)
		if err != nil {
			continue
		}
		out = append(out, search.Successor[Board, Direction]{State: next, Action: d, Cost: 1})
	}
	return out
}

func (p *Problem) CostOfActions(actions []Direction) float64 {
	return float64(len(actions))
}

// ManhattanDistance sums, over every tile, the grid distance to its goal cell.
// It never overestimates the number of moves left.
func ManhattanDistance(b Board) float64 {
	total := 0
	for i, v := range b.cells {
		if v == Blank {
			continue
		}
		goal := v - 1
		total += abs(i/b.size-goal/b.size) + abs(i%b.size-goal%b.size)
	}
	return float64(total)
}

// MisplacedTiles counts tiles outside their goal cell.
func MisplacedTiles(b Board) float64 {
	count := 0
	for i, v := range b.cells {
		if v != Blank && v != i+1 {
			count++
		}
	}
	return float64(count)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
