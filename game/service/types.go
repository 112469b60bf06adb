package service

import (
	"time"

	"github.com/wricardo/puzzle-search/game/engine"
)

// SessionInfo provides information about a puzzle session
type SessionInfo struct {
	ID             string               `json:"id"`
	ConfigID       string               `json:"config_id"`
	Kind           engine.PuzzleKind    `json:"kind"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
	GameState      *engine.GameState    `json:"game_state"`
	PuzzleConfig   *engine.PuzzleConfig `json:"puzzle_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool              `json:"success"`
	Action    string            `json:"action"`
	FromKey   string            `json:"from_key"`
	ToKey     string            `json:"to_key"`
	Solved    bool              `json:"solved"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // illegal_move|already_solved|solved
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	StartKey string `json:"start_key"`
	EndKey   string `json:"end_key"`

	Steps []StepInfo `json:"steps,omitempty"`

	Solved        bool     `json:"solved"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record for each executed move in the bulk call
type StepInfo struct {
	Idx     int    `json:"idx"`
	Action  string `json:"action"`
	FromKey string `json:"from_key"`
	ToKey   string `json:"to_key"`
	Success bool   `json:"success"`
	Solved  bool   `json:"solved,omitempty"`
}

// GameEvent represents an event that occurred during play
type GameEvent struct {
	Type      string    `json:"type"` // "move", "illegal_move", "solved", "reset", "solver"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// SolveOptions selects the strategy and whether the plan is applied.
type SolveOptions struct {
	Strategy      string `json:"strategy,omitempty"`
	Apply         bool   `json:"apply,omitempty"`
	MaxExpansions int    `json:"max_expansions,omitempty"`

	// Progress receives search statistics after every expansion.
	Progress func(expanded, generated, frontier int) `json:"-"`
}

// SolveResult is returned for both solvable and unsolvable positions.
type SolveResult struct {
	Solvable   bool              `json:"solvable"`
	Plan       *engine.Plan      `json:"plan,omitempty"`
	Applied    bool              `json:"applied"`
	Steps      []ReplayStep      `json:"steps,omitempty"`
	GameState  *engine.GameState `json:"game_state"`
	Message    string            `json:"message"`
	DurationMs int64             `json:"duration_ms"`
}

// ReplayStep is the session state after one applied solver action.
type ReplayStep struct {
	Index     int               `json:"index"`
	Action    string            `json:"action"`
	Label     string            `json:"label,omitempty"`
	GameState *engine.GameState `json:"game_state"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a puzzle configuration
type ConfigInfo struct {
	Filename    string            `json:"filename"`
	ConfigID    string            `json:"config_id"` // The identifier to use for session creation
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Kind        engine.PuzzleKind `json:"kind"`
	Size        int               `json:"size,omitempty"`     // tiles: N
	Pitchers    int               `json:"pitchers,omitempty"` // pitchers: count
	Goal        int               `json:"goal,omitempty"`
}
