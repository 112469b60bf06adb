package engine

import (
	"errors"

	"github.com/wricardo/puzzle-search/game/search"
)

// Analysis summarizes the state space of a config's start position.
type Analysis struct {
	Name            string     `json:"name"`
	Kind            PuzzleKind `json:"kind"`
	Solvable        bool       `json:"solvable"`
	ReachableStates int        `json:"reachable_states"`
	Truncated       bool       `json:"truncated"`
	GoalStates      int        `json:"goal_states"`
	OptimalLength   int        `json:"optimal_length"`
	Expanded        int        `json:"expanded"`
}

// Analyze enumerates up to maxStates reachable positions with
// search.Enumerate and solves the config with BFS. OptimalLength is -1 when no plan exists or the budget ran
// out.
func Analyze(config *PuzzleConfig, maxStates int) (*Analysis, error) {
	if err := ValidatePuzzleConfig(config); err != nil {
		return nil, err
	}
	start, err := newPuzzle(config)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Name:          config.Name,
		Kind:          config.Kind,
		Solvable:      start.solvable(),
		OptimalLength: -1,
	}

	a.ReachableStates, a.Truncated = search.Enumerate[position, string](positionSpace{start: start}, maxStates, func(p position) {
		if p.isGoal() {
			a.GoalStates++
		}
	})

	if !a.Solvable {
		return a, nil
	}

	limit := config.MaxExpansions
	if limit <= 0 {
		limit = DefaultMaxExpansions
	}
	plan, err := start.solve(search.StrategyBFS, search.WithMaxExpansions(limit))
	switch {
	case err == nil:
		a.OptimalLength = len(plan.Actions)
		a.Expanded = plan.Expanded
	case errors.Is(err, search.ErrNoSolution), errors.Is(err, search.ErrBudgetExceeded):
	default:
		return nil, err
	}
	return a, nil
}

// position adapts a puzzle to search.State so the kind-independent view can
// be walked by the search package.
type position struct {
	puzzle
}

func (p position) Key() string { return p.key() }

// positionSpace is a search.Problem over kind-independent positions, used
// for enumeration where the concrete action type does not matter.
type positionSpace struct {
	start puzzle
}

func (s positionSpace) StartState() position             { return position{s.start} }
func (s positionSpace) IsGoal(p position) bool           { return p.isGoal() }
func (s positionSpace) CostOfActions(a []string) float64 { return float64(len(a)) }

func (s positionSpace) Successors(p position) []search.Successor[position, string] {
	next := p.successors()
	out := make([]search.Successor[position, string], len(next))
	for i, n := range next {
		out[i] = search.Successor[position, string]{State: position{n}, Cost: 1}
	}
	return out
}
