package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/puzzle-search/game/search"
)

// DefaultMessages returns the texts used when a config leaves one empty.
func DefaultMessages() Messages {
	return Messages{
		Welcome:       "Welcome! Solve the puzzle yourself or ask the solver for help.",
		Solved:        "Solved in %d moves!",
		AlreadySolved: "The puzzle is already solved. Reset to play again.",
		IllegalMove:   "That move is not allowed here.",
		NoSolution:    "This puzzle cannot be solved from the current position.",
		SolverApplied: "Solver applied a %d-move plan.",
	}
}

// WithDefaults returns m with empty fields taken from DefaultMessages.
func (m Messages) WithDefaults() Messages {
	d := DefaultMessages()
	if m.Welcome == "" {
		m.Welcome = d.Welcome
	}
	if m.Solved == "" {
		m.Solved = d.Solved
	}
	if m.AlreadySolved == "" {
		m.AlreadySolved = d.AlreadySolved
	}
	if m.IllegalMove == "" {
		m.IllegalMove = d.IllegalMove
	}
	if m.NoSolution == "" {
		m.NoSolution = d.NoSolution
	}
	if m.SolverApplied == "" {
		m.SolverApplied = d.SolverApplied
	}
	return m
}

// ValidatePuzzleConfig checks that a config describes a well-formed start
// position. Puzzle state errors wrap search.ErrInvalidState.
func ValidatePuzzleConfig(config *PuzzleConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	switch config.Kind {
	case KindTiles:
		if len(config.Capacities) > 0 || len(config.Contents) > 0 {
			return fmt.Errorf("config validation: tiles configs must not set capacities or contents")
		}
	case KindPitchers:
		if len(config.Board) > 0 {
			return fmt.Errorf("config validation: pitchers configs must not set board")
		}
	default:
		return fmt.Errorf("config validation: kind must be %q or %q, got %q", KindTiles, KindPitchers, config.Kind)
	}

	if _, err := newPuzzle(config); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	if config.Strategy != "" {
		if _, err := search.ParseStrategy(config.Strategy); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
	}
	if config.MaxExpansions < 0 {
		return fmt.Errorf("config validation: max_expansions must not be negative, got %d", config.MaxExpansions)
	}

	for name, msg := range map[string]string{
		"solved":         config.Messages.Solved,
		"solver_applied": config.Messages.SolverApplied,
	} {
		if msg != "" && !strings.Contains(msg, "%d") {
			return fmt.Errorf("config validation: messages.%s must contain %%d for the move count", name)
		}
	}

	return nil
}

// DecodePuzzleConfig parses data as YAML when ext is .yaml or .yml and as
// JSON otherwise, then validates it.
func DecodePuzzleConfig(data []byte, ext string) (*PuzzleConfig, error) {
	var config PuzzleConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse json config: %w", err)
		}
	}

	if err := ValidatePuzzleConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// EncodePuzzleConfig is the inverse of DecodePuzzleConfig.
func EncodePuzzleConfig(config *PuzzleConfig, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Marshal(config)
	default:
		return json.MarshalIndent(config, "", "  ")
	}
}

// LoadPuzzleConfig loads a config file. A "configs/" prefix is rewritten to
// CONFIG_DIR when that variable is set.
func LoadPuzzleConfig(filename string) (*PuzzleConfig, error) {
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	return DecodePuzzleConfig(data, filepath.Ext(configPath))
}

// DefaultConfig is a two-move 8-puzzle used when no config directory entry
// is available.
func DefaultConfig() *PuzzleConfig {
	return &PuzzleConfig{
		Name:        "default",
		Description: "Two moves away from the solved 8-puzzle",
		Kind:        KindTiles,
		Board:       []int{1, 2, 3, 4, 0, 6, 7, 5, 8},
		Strategy:    string(search.StrategyBFS),
		Messages:    DefaultMessages(),
	}
}

// InitGameStateFromConfig creates the start state of a config. A nil config
// uses DefaultConfig.
func InitGameStateFromConfig(config *PuzzleConfig) (*GameState, error) {
	if config == nil {
		config = DefaultConfig()
	}

	p, err := newPuzzle(config)
	if err != nil {
		return nil, err
	}

	state := &GameState{
		ConfigName:        config.Name,
		Message:           config.Messages.WithDefaults().Welcome,
		MoveHistory:       []MoveHistoryEntry{},
		TotalMoves:        0,
		CurrentMoves:      []MoveHistoryEntry{},
		CurrentMovesCount: 0,
	}
	p.fill(state)
	return state, nil
}
