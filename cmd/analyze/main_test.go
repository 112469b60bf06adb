package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/puzzle-search/game/engine"
)

func createAnalyzeDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"jugs.json":    `{"name":"Jugs","kind":"pitchers","goal":4,"capacities":[5,3],"contents":[0,0]}`,
		"solved.json":  `{"name":"Solved","kind":"tiles","board":[1,2,3,0]}`,
		"swapped.yaml": "name: Swapped\nkind: tiles\nboard: [2, 1, 3, 0]\n",
		"broken.json":  `{"name": `,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestRun_Text(t *testing.T) {
	var out bytes.Buffer
	if err := run(&out, createAnalyzeDir(t), 0, false); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	text := out.String()

	for _, want := range []string{
		"=== Analyzing jugs.json ===",
		"✅ Shortest plan: 6 moves",
		"=== Analyzing solved.json ===",
		"Reachable states: 12",
		"✅ Shortest plan: 0 moves",
		"=== Analyzing swapped.yaml ===",
		"⚠️  Goal is unreachable",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, text)
		}
	}
	if strings.Contains(text, "broken") {
		t.Errorf("Expected invalid config to be skipped, got:\n%s", text)
	}
}

func TestRun_JSON(t *testing.T) {
	var out bytes.Buffer
	if err := run(&out, createAnalyzeDir(t), 0, true); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var results []engine.Analysis
	if err := json.Unmarshal(out.Bytes(), &results); err != nil {
		t.Fatalf("Expected JSON output: %v\n%s", err, out.String())
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 analyses, got %d", len(results))
	}

	byName := map[string]engine.Analysis{}
	for _, a := range results {
		byName[a.Name] = a
	}
	if a := byName["Swapped"]; a.Solvable || a.OptimalLength != -1 || a.GoalStates != 0 {
		t.Errorf("Unexpected analysis for unsolvable board: %+v", a)
	}
	if a := byName["Jugs"]; !a.Solvable || a.OptimalLength != 6 || a.GoalStates == 0 {
		t.Errorf("Unexpected analysis for jugs: %+v", a)
	}
}

func TestRun_Truncated(t *testing.T) {
	var out bytes.Buffer
	if err := run(&out, createAnalyzeDir(t), 3, false); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out.String(), "Reachable states: at least 3") {
		t.Errorf("Expected truncated count, got:\n%s", out.String())
	}
}

func TestRun_MissingDir(t *testing.T) {
	var out bytes.Buffer
	if err := run(&out, "/non/existent/path", 0, false); err == nil {
		t.Error("Expected error for missing config directory")
	}
}
