package engine

import (
	"errors"
	"fmt"

	"github.com/wricardo/puzzle-search/game/search"
)

// Engine provides the main interface for puzzle operations
type Engine interface {
	// State management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsSolved() bool

	// Human moves
	Move(action string) bool
	CanMove(action string) bool
	ValidateAction(action string) error
	GetPossibleMoves() []string

	// Solver
	Solve(opts SolveOptions) (*Plan, error)
	ApplyPlan(plan *Plan, step func(index int, state *GameState)) error

	// Configuration
	GetConfig() *PuzzleConfig
	SetConfig(config *PuzzleConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; the service layer serializes access per session.
type GameEngine struct {
	state   *GameState
	config  *PuzzleConfig
	current puzzle
}

var _ Engine = (*GameEngine)(nil)

// NewEngine creates a new engine positioned at the config's start.
func NewEngine(config *PuzzleConfig) (*GameEngine, error) {
	if err := ValidatePuzzleConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{config: config}
	if err := e.restart(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates an engine for DefaultConfig.
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultConfig())
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return e
}

func (e *GameEngine) restart() error {
	state, err := InitGameStateFromConfig(e.config)
	if err != nil {
		return err
	}
	p, err := newPuzzle(e.config)
	if err != nil {
		return err
	}
	e.state = state
	e.current = p
	return nil
}

func (e *GameEngine) messages() Messages {
	return e.config.Messages.WithDefaults()
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.Kind != e.config.Kind {
		return fmt.Errorf("%w: state kind %q does not match config kind %q", search.ErrInvalidState, state.Kind, e.config.Kind)
	}
	p, err := puzzleFromState(state)
	if err != nil {
		return err
	}

	e.state = state
	e.current = p
	p.fill(e.state)
	return nil
}

// Reset returns to the start position, keeping the cumulative history.
func (e *GameEngine) Reset() *GameState {
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	if err := e.restart(); err != nil {
		// The config was validated when it was set.
		panic(fmt.Sprintf("reset: %v", err))
	}

	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	return e.state
}

func (e *GameEngine) IsSolved() bool {
	return e.current.isGoal()
}

// ValidateAction reports whether action is a well-formed token for this
// puzzle kind, regardless of the current position.
func (e *GameEngine) ValidateAction(action string) error {
	return e.current.parse(action)
}

// CanMove reports whether action is legal from the current position.
func (e *GameEngine) CanMove(action string) bool {
	if e.current.isGoal() {
		return false
	}
	_, err := e.current.apply(action)
	return err == nil
}

// GetPossibleMoves returns the legal actions in enumeration order.
func (e *GameEngine) GetPossibleMoves() []string {
	return e.current.legalMoves()
}

// Move applies a human action. Every attempt is recorded in the history.
func (e *GameEngine) Move(action string) bool {
	return e.step(action, false) == nil
}

func (e *GameEngine) step(action string, solver bool) error {
	msgs := e.messages()
	from := e.current.key()

	if e.current.isGoal() {
		e.state.Message = msgs.AlreadySolved
		e.state.AddMoveToHistory(action, from, from, false, solver)
		return fmt.Errorf("%w: puzzle already solved", search.ErrIllegalMove)
	}

	next, err := e.current.apply(action)
	if err != nil {
		e.state.Message = fmt.Sprintf("%s [%v]", msgs.IllegalMove, err)
		e.state.AddMoveToHistory(action, from, from, false, solver)
		return err
	}

	e.current = next
	next.fill(e.state)
	e.state.AddMoveToHistory(action, from, next.key(), true, solver)

	if next.isGoal() {
		e.state.Message = fmt.Sprintf(msgs.Solved, e.state.SuccessfulMoves())
	} else {
		e.state.Message = fmt.Sprintf("Moved %s", action)
	}
	return nil
}

// BulkMove applies moves in order and stops at the first failure or once
// the puzzle is solved.
func (e *GameEngine) BulkMove(moves []string) []bool {
	results := make([]bool, 0, len(moves))
	for _, action := range moves {
		if e.IsSolved() {
			break
		}
		ok := e.Move(action)
		results = append(results, ok)
		if !ok {
			break
		}
	}
	return results
}

// Solve searches from the current position without changing it. Positions
// that fail the cheap solvability check return search.ErrNoSolution without
// searching.
func (e *GameEngine) Solve(opts SolveOptions) (*Plan, error) {
	name := opts.Strategy
	if name == "" {
		name = e.config.Strategy
	}
	strategy, err := search.ParseStrategy(name)
	if err != nil {
		return nil, err
	}

	if !e.current.solvable() {
		return nil, fmt.Errorf("%w: %s", search.ErrNoSolution, e.messages().NoSolution)
	}

	limit := opts.MaxExpansions
	if limit <= 0 {
		limit = e.config.MaxExpansions
	}
	if limit <= 0 {
		limit = DefaultMaxExpansions
	}

	searchOpts := []search.Option{search.WithMaxExpansions(limit)}
	if opts.Context != nil {
		searchOpts = append(searchOpts, search.WithContext(opts.Context))
	}
	if opts.Observer != nil {
		observer := opts.Observer
		searchOpts = append(searchOpts, search.WithObserver(func(s search.Stats) {
			observer(s.Expanded, s.Generated, s.FrontierSize)
		}))
	}

	return e.current.solve(strategy, searchOpts...)
}

// Snapshot returns a detached engine at the same position. Positions are
// immutable, so the copy can be solved on another goroutine while the
// original keeps taking moves.
func (e *GameEngine) Snapshot() *GameEngine {
	return &GameEngine{
		state:   e.state.Clone(),
		config:  e.config,
		current: e.current,
	}
}

// ApplyPlan replays plan as solver moves. step, when set, receives a copy of
// the state after each action.
func (e *GameEngine) ApplyPlan(plan *Plan, step func(index int, state *GameState)) error {
	if plan == nil {
		return errors.New("plan cannot be nil")
	}
	if plan.StartKey != "" && plan.StartKey != e.current.key() {
		return fmt.Errorf("%w: plan starts at %s but puzzle is at %s", search.ErrIllegalMove, plan.StartKey, e.current.key())
	}

	for i, action := range plan.Actions {
		if err := e.step(action, true); err != nil {
			return fmt.Errorf("plan action %d (%s): %w", i+1, action, err)
		}
		if step != nil {
			step(i, e.state.Clone())
		}
	}

	if len(plan.Actions) > 0 && !e.current.isGoal() {
		e.state.Message = fmt.Sprintf(e.messages().SolverApplied, len(plan.Actions))
	}
	return nil
}

func (e *GameEngine) GetConfig() *PuzzleConfig {
	return e.config
}

// SetConfig switches to a new config and restarts from its start position.
func (e *GameEngine) SetConfig(config *PuzzleConfig) error {
	if err := ValidatePuzzleConfig(config); err != nil {
		return err
	}

	prev := e.config
	e.config = config
	if err := e.restart(); err != nil {
		e.config = prev
		return err
	}
	return nil
}

func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}
