package engine

import (
	"fmt"

	"github.com/wricardo/puzzle-search/game/pitchers"
	"github.com/wricardo/puzzle-search/game/search"
	"github.com/wricardo/puzzle-search/game/tiles"
)

// puzzle is the kind-independent view of one position. Actions are wire
// tokens: directions for tiles, f:/e:/p: moves for pitchers.
type puzzle interface {
	key() string
	isGoal() bool
	legalMoves() []string
	parse(action string) error
	apply(action string) (puzzle, error)
	solvable() bool
	solve(strategy search.Strategy, opts ...search.Option) (*Plan, error)
	successors() []puzzle
	fill(state *GameState)
}

func newPuzzle(config *PuzzleConfig) (puzzle, error) {
	switch config.Kind {
	case KindTiles:
		b, err := tiles.NewBoard(config.Board)
		if err != nil {
			return nil, err
		}
		return tilesPuzzle{board: b}, nil
	case KindPitchers:
		s, err := pitchers.NewState(config.Goal, config.Capacities, config.Contents)
		if err != nil {
			return nil, err
		}
		return pitchersPuzzle{state: s}, nil
	}
	return nil, fmt.Errorf("%w: unknown puzzle kind %q", search.ErrInvalidState, config.Kind)
}

// puzzleFromState rebuilds the current position of a persisted GameState.
func puzzleFromState(state *GameState) (puzzle, error) {
	switch state.Kind {
	case KindTiles:
		b, err := tiles.NewBoard(state.Board)
		if err != nil {
			return nil, err
		}
		return tilesPuzzle{board: b}, nil
	case KindPitchers:
		s, err := pitchers.NewState(state.Goal, state.Capacities, state.Contents)
		if err != nil {
			return nil, err
		}
		return pitchersPuzzle{state: s}, nil
	}
	return nil, fmt.Errorf("%w: unknown puzzle kind %q", search.ErrInvalidState, state.Kind)
}

type tilesPuzzle struct {
	board tiles.Board
}

func (p tilesPuzzle) key() string  { return p.board.Key() }
func (p tilesPuzzle) isGoal() bool { return p.board.IsGoal() }

func (p tilesPuzzle) legalMoves() []string {
	moves := p.board.LegalMoves()
	out := make([]string, len(moves))
	for i, d := range moves {
		out[i] = string(d)
	}
	return out
}

func (p tilesPuzzle) parse(action string) error {
	_, err := tiles.ParseDirection(action)
	return err
}

func (p tilesPuzzle) apply(action string) (puzzle, error) {
	d, err := tiles.ParseDirection(action)
	if err != nil {
		return nil, err
	}
	next, err := p.board.Apply(d)
	if err != nil {
		return nil, err
	}
	return tilesPuzzle{board: next}, nil
}

func (p tilesPuzzle) solvable() bool { return tiles.Solvable(p.board) }

func (p tilesPuzzle) solve(strategy search.Strategy, opts ...search.Option) (*Plan, error) {
	result, err := search.Solve[tiles.Board, tiles.Direction](tiles.NewProblem(p.board), strategy, tiles.ManhattanDistance, opts...)
	if err != nil {
		return nil, err
	}
	path, err := tiles.BlankPath(p.board, result.Actions)
	if err != nil {
		return nil, err
	}

	actions := make([]string, len(result.Actions))
	for i, d := range result.Actions {
		actions[i] = string(d)
	}
	return &Plan{
		Strategy:  string(strategy),
		StartKey:  p.board.Key(),
		Actions:   actions,
		Cost:      result.Cost,
		Expanded:  result.Expanded,
		Generated: result.Generated,
		BlankPath: path,
	}, nil
}

func (p tilesPuzzle) successors() []puzzle {
	moves := p.board.LegalMoves()
	out := make([]puzzle, 0, len(moves))
	for _, d := range moves {
		if next, err := p.board.Apply(d); err == nil {
			out = append(out, tilesPuzzle{board: next})
		}
	}
	return out
}

func (p tilesPuzzle) fill(state *GameState) {
	state.Kind = KindTiles
	state.Board = p.board.Cells()
	state.Size = p.board.Size()
	state.Key = p.board.Key()
	state.Solved = p.board.IsGoal()
	state.PossibleMoves = p.legalMoves()
}

type pitchersPuzzle struct {
	state pitchers.State
}

func (p pitchersPuzzle) key() string  { return p.state.Key() }
func (p pitchersPuzzle) isGoal() bool { return p.state.IsGoal() }

func (p pitchersPuzzle) legalMoves() []string {
	return pitchers.FormatMoves(p.state.LegalMoves())
}

func (p pitchersPuzzle) parse(action string) error {
	_, err := pitchers.ParseMove(action)
	return err
}

func (p pitchersPuzzle) apply(action string) (puzzle, error) {
	m, err := pitchers.ParseMove(action)
	if err != nil {
		return nil, err
	}
	next, err := p.state.Apply(m)
	if err != nil {
		return nil, err
	}
	return pitchersPuzzle{state: next}, nil
}

func (p pitchersPuzzle) solvable() bool { return pitchers.Solvable(p.state) }

func (p pitchersPuzzle) solve(strategy search.Strategy, opts ...search.Option) (*Plan, error) {
	result, err := search.Solve[pitchers.State, pitchers.Move](pitchers.NewProblem(p.state), strategy, pitchers.Heuristic, opts...)
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(result.Actions))
	for i, m := range result.Actions {
		labels[i] = m.Describe()
	}
	return &Plan{
		Strategy:  string(strategy),
		StartKey:  p.state.Key(),
		Actions:   pitchers.FormatMoves(result.Actions),
		Cost:      result.Cost,
		Expanded:  result.Expanded,
		Generated: result.Generated,
		Labels:    labels,
	}, nil
}

func (p pitchersPuzzle) successors() []puzzle {
	moves := p.state.LegalMoves()
	out := make([]puzzle, 0, len(moves))
	for _, m := range moves {
		if next, err := p.state.Apply(m); err == nil {
			out = append(out, pitchersPuzzle{state: next})
		}
	}
	return out
}

func (p pitchersPuzzle) fill(state *GameState) {
	state.Kind = KindPitchers
	state.Goal = p.state.Goal()
	state.Capacities = p.state.Capacities()
	state.Contents = p.state.Contents()
	state.Key = p.state.Key()
	state.Solved = p.state.IsGoal()
	state.PossibleMoves = p.legalMoves()
}
