package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/puzzle-search/game/search"
)

func runSolve(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(context.Background(), append([]string{"solve"}, args...))
	return out.String(), err
}

func TestSolveTiles(t *testing.T) {
	out, err := runSolve(t, "tiles", "--board", "1,2,3,4,5,6,0,7,8")
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if !strings.Contains(out, "Plan (bfs): 2 moves") {
		t.Errorf("Expected two-move plan, got:\n%s", out)
	}
	if !strings.Contains(out, "1. right (blank to 2,1)") {
		t.Errorf("Expected blank path, got:\n%s", out)
	}
}

func TestSolveTiles_Strategies(t *testing.T) {
	for _, strategy := range []string{"bfs", "ucs", "astar"} {
		t.Run(strategy, func(t *testing.T) {
			out, err := runSolve(t, "--strategy", strategy, "tiles", "--board", "1,2,3,4,0,6,7,5,8")
			if err != nil {
				t.Fatalf("solve failed: %v", err)
			}
			if !strings.Contains(out, "Plan ("+strategy+"): 2 moves") {
				t.Errorf("Expected optimal plan, got:\n%s", out)
			}
		})
	}
}

func TestSolveTiles_Unsolvable(t *testing.T) {
	out, err := runSolve(t, "tiles", "--board", "2,1,3,4,5,6,7,8,0")
	if err != nil {
		t.Fatalf("Expected unsolvable board to be reported, got error: %v", err)
	}
	if !strings.Contains(out, "No solution:") {
		t.Errorf("Expected no-solution message, got:\n%s", out)
	}
}

func TestSolveTiles_Errors(t *testing.T) {
	if _, err := runSolve(t, "tiles", "--board", "1,2,x,0"); !errors.Is(err, search.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState for bad number, got %v", err)
	}
	if _, err := runSolve(t, "-s", "greedy", "tiles", "--board", "1,2,3,0"); !errors.Is(err, search.ErrUnknownStrategy) {
		t.Errorf("Expected ErrUnknownStrategy, got %v", err)
	}
	if _, err := runSolve(t, "--max-expansions", "1", "tiles", "--board", "8,6,7,2,5,4,3,0,1"); !errors.Is(err, search.ErrBudgetExceeded) {
		t.Errorf("Expected ErrBudgetExceeded, got %v", err)
	}
}

func TestSolvePitchers(t *testing.T) {
	out, err := runSolve(t, "pitchers", "--numbers", "4,5,3,0,0")
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if !strings.Contains(out, "Plan (bfs): 6 moves") {
		t.Errorf("Expected six-move plan, got:\n%s", out)
	}
	if !strings.Contains(out, "f:0 (Fill 0)") {
		t.Errorf("Expected labelled moves, got:\n%s", out)
	}
}

func TestSolvePitchers_CatalogReplay(t *testing.T) {
	out, err := runSolve(t, "--replay", "pitchers", "--catalog", "four-from-5-3")
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if !strings.Contains(out, "After 6.") {
		t.Errorf("Expected six replay steps, got:\n%s", out)
	}
	last := out[strings.LastIndex(out, "After 6."):]
	if !strings.Contains(last, "4/5") {
		t.Errorf("Expected goal amount in final position, got:\n%s", last)
	}
}

func TestSolvePitchers_Flags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"neither", []string{"pitchers"}},
		{"both", []string{"pitchers", "-n", "4,5,3,0,0", "-c", "four-from-5-3"}},
		{"unknown catalog", []string{"pitchers", "-c", "nope"}},
		{"bad numbers", []string{"pitchers", "-n", "4,5,3,0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runSolve(t, tt.args...); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestCatalog(t *testing.T) {
	out, err := runSolve(t, "catalog")
	if err != nil {
		t.Fatalf("catalog failed: %v", err)
	}
	for _, name := range []string{"four-from-5-3", "one-from-3-8-12"} {
		if !strings.Contains(out, name) {
			t.Errorf("Expected %s in catalog, got:\n%s", name, out)
		}
	}
	if !strings.Contains(out, "[0/3 0/8 0/12] goal=1") {
		t.Errorf("Expected rendered instance, got:\n%s", out)
	}
}

func TestSolveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fifteen.yaml")
	content := "name: Fifteen\nkind: tiles\nstrategy: astar\nboard: [1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 0, 15]\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	out, err := runSolve(t, "config", "--file", path)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if !strings.Contains(out, "Plan (astar): 1 moves") {
		t.Errorf("Expected config strategy to be used, got:\n%s", out)
	}

	if _, err := runSolve(t, "config", "--file", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestParseInts(t *testing.T) {
	got, err := parseInts(" 1, 2 ,3,0 ")
	if err != nil {
		t.Fatalf("parseInts failed: %v", err)
	}
	if len(got) != 4 || got[0] != 1 || got[3] != 0 {
		t.Errorf("Unexpected values: %v", got)
	}
}

func TestSolveTiles_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := newApp(&out).Run(ctx, []string{"solve", "tiles", "--board", "8,6,7,2,5,4,3,0,1"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
