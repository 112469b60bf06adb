// Command analyze prints a state-space summary for every puzzle configuration
// in a config directory: whether the goal is reachable, how many positions
// are reachable from the start, how many of those are goals, and the length
// of the shortest plan.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/wricardo/puzzle-search/game/config"
	"github.com/wricardo/puzzle-search/game/engine"
)

func main() {
	dir := flag.String("config-dir", "configs", "Directory containing puzzle configurations")
	maxStates := flag.Int("max-states", 500_000, "Stop enumerating after this many reachable states (0 = unlimited)")
	asJSON := flag.Bool("json", false, "Print results as JSON")
	flag.Parse()

	if err := run(os.Stdout, *dir, *maxStates, *asJSON); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, dir string, maxStates int, asJSON bool) error {
	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}
	infos, err := manager.ListConfigs()
	if err != nil {
		return err
	}

	var results []*engine.Analysis
	for _, info := range infos {
		puzzle, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Fprintf(w, "Error loading %s: %v\n", info.ConfigID, err)
			continue
		}
		a, err := engine.Analyze(puzzle, maxStates)
		if err != nil {
			fmt.Fprintf(w, "Error analyzing %s: %v\n", info.ConfigID, err)
			continue
		}
		if asJSON {
			results = append(results, a)
			continue
		}
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", info.Filename)
		printAnalysis(w, a)
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return nil
}

func printAnalysis(w io.Writer, a *engine.Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Kind: %s\n", a.Kind)

	reachable := fmt.Sprint(a.ReachableStates)
	if a.Truncated {
		reachable = "at least " + reachable
	}
	fmt.Fprintf(w, "Reachable states: %s\n", reachable)
	fmt.Fprintf(w, "Goal states: %d\n", a.GoalStates)

	switch {
	case !a.Solvable:
		fmt.Fprintf(w, "⚠️  Goal is unreachable from the start position\n")
	case a.OptimalLength >= 0:
		fmt.Fprintf(w, "✅ Shortest plan: %d moves (%d states expanded)\n", a.OptimalLength, a.Expanded)
	default:
		fmt.Fprintf(w, "⚠️  No plan found within the expansion budget\n")
	}
}
