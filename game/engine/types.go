package engine

import (
	"context"

	"github.com/wricardo/puzzle-search/game/tiles"
)

// PuzzleKind selects the domain a config describes.
type PuzzleKind string

const (
	KindTiles    PuzzleKind = "tiles"
	KindPitchers PuzzleKind = "pitchers"

	MaxBulkMoves         = 50
	DefaultMaxExpansions = 2_000_000
	WebSocketBufferSize  = 256
)

// Messages are the player-facing texts of a config. Empty fields fall back to
// the defaults of DefaultMessages.
type Messages struct {
	Welcome       string `json:"welcome" yaml:"welcome"`
	Solved        string `json:"solved" yaml:"solved"`
	AlreadySolved string `json:"already_solved" yaml:"already_solved"`
	IllegalMove   string `json:"illegal_move" yaml:"illegal_move"`
	NoSolution    string `json:"no_solution" yaml:"no_solution"`
	SolverApplied string `json:"solver_applied" yaml:"solver_applied"`
}

// PuzzleConfig is a puzzle definition loaded from the config directory.
type PuzzleConfig struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Kind        PuzzleKind `json:"kind" yaml:"kind"`

	// Tiles: row-major permutation of 0..N²-1, 0 is the blank.
	Board []int `json:"board,omitempty" yaml:"board,omitempty"`

	// Pitchers.
	Goal       int   `json:"goal,omitempty" yaml:"goal,omitempty"`
	Capacities []int `json:"capacities,omitempty" yaml:"capacities,omitempty"`
	Contents   []int `json:"contents,omitempty" yaml:"contents,omitempty"`

	// Strategy is the default for Solve (bfs, dfs, ucs, astar).
	Strategy      string `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	MaxExpansions int    `json:"max_expansions,omitempty" yaml:"max_expansions,omitempty"`

	Messages Messages `json:"messages" yaml:"messages"`
}

// GameState is the complete state of one session.
type GameState struct {
	Kind       PuzzleKind `json:"kind"`
	ConfigName string     `json:"config_name"`

	// Tiles view.
	Board []int `json:"board,omitempty"`
	Size  int   `json:"size,omitempty"`

	// Pitchers view.
	Goal       int   `json:"goal"`
	Capacities []int `json:"capacities,omitempty"`
	Contents   []int `json:"contents,omitempty"`

	Key           string   `json:"key"`
	Solved        bool     `json:"solved"`
	Message       string   `json:"message"`
	PossibleMoves []string `json:"possible_moves"`

	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`
}

// MoveHistoryEntry records one attempted action.
type MoveHistoryEntry struct {
	Action     string `json:"action"`
	FromKey    string `json:"from_key"`
	ToKey      string `json:"to_key"`
	Timestamp  int64  `json:"timestamp"`
	Success    bool   `json:"success"`
	MoveNumber int    `json:"move_number"`
	Solver     bool   `json:"solver,omitempty"`
}

// SolveOptions tunes one Solve call. Zero values fall back to the config.
type SolveOptions struct {
	Strategy      string
	MaxExpansions int
	Observer      func(expanded, generated, frontier int)
	// Context, when set, aborts the search once it is done.
	Context context.Context
}

// Plan is a solver result expressed in wire tokens.
type Plan struct {
	Strategy  string   `json:"strategy"`
	StartKey  string   `json:"start_key"`
	Actions   []string `json:"actions"`
	Cost      float64  `json:"cost"`
	Expanded  int      `json:"expanded"`
	Generated int      `json:"generated"`

	// Labels are human-readable action names for the pitchers kind.
	Labels []string `json:"labels,omitempty"`
	// BlankPath is the cell the blank lands on after each tiles action.
	BlankPath []tiles.Cell `json:"blank_path,omitempty"`
}

// Clone returns a deep copy that is safe to hand to another goroutine.
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	out := *gs
	out.Board = cloneSlice(gs.Board)
	out.Capacities = cloneSlice(gs.Capacities)
	out.Contents = cloneSlice(gs.Contents)
	out.PossibleMoves = cloneSlice(gs.PossibleMoves)
	out.MoveHistory = cloneSlice(gs.MoveHistory)
	out.CurrentMoves = cloneSlice(gs.CurrentMoves)
	return &out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
