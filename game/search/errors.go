package search

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSolution reports an exhausted frontier. It is an expected outcome, not a defect.
	ErrNoSolution = errors.New("no solution")

	// ErrBudgetExceeded reports that the expansion budget ran out before a goal was found.
	ErrBudgetExceeded = errors.New("expansion budget exceeded")

	// ErrUnknownStrategy reports an unsupported strategy name.
	ErrUnknownStrategy = errors.New("unknown strategy")

	// ErrInvalidState reports malformed construction input for a state.
	ErrInvalidState = errors.New("invalid state")

	// ErrIllegalMove reports a transition outside the state's legal move set.
	ErrIllegalMove = errors.New("illegal move")
)

func unknownStrategy(name string) error {
	return fmt.Errorf("%w: %q (want one of bfs, dfs, ucs, astar)", ErrUnknownStrategy, name)
}
