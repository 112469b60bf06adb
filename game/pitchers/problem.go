package pitchers

import (
	"github.com/wricardo/puzzle-search/game/search"
)

// Problem is the unit-cost search problem over pitcher states.
type Problem struct {
	start State
}

var _ search.Problem[State, Move] = (*Problem)(nil)

func NewProblem(start State) *Problem {
	return &Problem{start: start}
}

func (p *Problem) StartState() State { return p.start }

func (p *Problem) IsGoal(s State) bool { return s.IsGoal() }

func (p *Problem) Successors(s State) []search.Successor[State, Move] {
	moves := s.LegalMoves()
	out := make([]search.Successor[State, Move], 0, len(moves))
	for _, m := range moves {
		next, err := s.Apply(m)
		if err != nil {
			continue
		}
		out = append(out, search.Successor[State, Move]{State: next, Action: m, Cost: 1})
	}
	return out
}

func (p *Problem) CostOfActions(actions []Move) float64 {
	return float64(len(actions))
}

// Heuristic is 0 at a goal state and 1 elsewhere.
func Heuristic(s State) float64 {
	if s.IsGoal() {
		return 0
	}
	return 1
}
