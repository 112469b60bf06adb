// Command validate checks puzzle configuration files (JSON or YAML) in the
// ../configs directory, or in the directories and files given as arguments.
// It checks:
//   - file syntax and the config schema (kind, board or pitchers, strategy, messages)
//   - tiles boards: a permutation of 0..N²-1 and whether the goal is reachable
//   - pitchers: contents within capacities and whether the goal amount is reachable
//   - a strategy suited to the puzzle size
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/puzzle-search/game/engine"
	"github.com/wricardo/puzzle-search/game/pitchers"
	"github.com/wricardo/puzzle-search/game/search"
	"github.com/wricardo/puzzle-search/game/tiles"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.DecodePuzzleConfig(data, filepath.Ext(filePath))
	if err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	result.info("Kind: %s", config.Kind)
	switch config.Kind {
	case engine.KindTiles:
		validateTiles(config, &result)
	case engine.KindPitchers:
		validatePitchers(config, &result)
	}
	return result
}

func validateTiles(config *engine.PuzzleConfig, result *ValidationResult) {
	board, err := tiles.NewBoard(config.Board)
	if err != nil {
		result.fail("Invalid board: %v", err)
		return
	}

	size := board.Size()
	result.info("Board: %dx%d, %d inversions", size, size, tiles.Inversions(board))
	if tiles.Solvable(board) {
		result.info("Goal is reachable")
	} else {
		result.info("Goal is unreachable (solve reports no solution)")
	}

	// Uninformed search over a 4x4 state space does not finish in practice.
	if size > 3 && config.Strategy != "" && config.Strategy != string(search.StrategyAStar) {
		result.fail("Strategy %q is impractical for a %dx%d board, use astar", config.Strategy, size, size)
	}
}

func validatePitchers(config *engine.PuzzleConfig, result *ValidationResult) {
	state, err := pitchers.NewState(config.Goal, config.Capacities, config.Contents)
	if err != nil {
		result.fail("Invalid pitchers: %v", err)
		return
	}

	result.info("Pitchers: %s", state)
	if pitchers.Solvable(state) {
		result.info("Goal amount passes the gcd check")
	} else {
		result.info("Goal amount is unreachable (solve reports no solution)")
	}
}

// configFiles expands directories into their .json, .yaml and .yml files.
func configFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(path, pattern))
			if err != nil {
				return nil, err
			}
			files = append(files, matches...)
		}
	}
	return files, nil
}

// main validates each config file, printing a concise report and exiting
// with non-zero status if any are invalid.
func main() {
	paths := os.Args[1:]
	if len(paths) == 0 {
		paths = []string{"../configs"}
	}

	files, err := configFiles(paths)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
