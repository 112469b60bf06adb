package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/puzzle-search/game/config"
	"github.com/wricardo/puzzle-search/game/engine"
	"github.com/wricardo/puzzle-search/game/session"
	"github.com/wricardo/puzzle-search/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Puzzle Search Server" {
		t.Errorf("Expected app name Puzzle Search Server, got %s", AppName)
	}
}

func withDirs(t *testing.T, cfgDir, sessDir string) {
	t.Helper()
	originalConfigDir, originalSessionsDir := *configDir, *sessionsDir
	*configDir, *sessionsDir = cfgDir, sessDir
	t.Cleanup(func() {
		*configDir, *sessionsDir = originalConfigDir, originalSessionsDir
	})
}

func writeEightPuzzle(t *testing.T, dir string) {
	t.Helper()
	data := `{"name":"Eight","kind":"tiles","board":[1,2,3,4,5,6,0,7,8]}`
	if err := os.WriteFile(filepath.Join(dir, "eight-puzzle.json"), []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func TestInitializeServices(t *testing.T) {
	cfgDir := t.TempDir()
	writeEightPuzzle(t, cfgDir)
	withDirs(t, cfgDir, filepath.Join(t.TempDir(), "sessions"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gameService, sessionManager, err := initializeServices(ctx)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if gameService == nil || sessionManager == nil {
		t.Fatal("Expected services to be initialized")
	}

	info, err := gameService.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if info.ConfigID != "eight-puzzle" {
		t.Errorf("Expected default config eight-puzzle, got %s", info.ConfigID)
	}
	if _, err := os.Stat(filepath.Join(*sessionsDir, strings.ToLower(info.ID)+".json")); err != nil {
		t.Errorf("Expected session file to be persisted: %v", err)
	}
}

func TestInitializeServices_RestoresSessions(t *testing.T) {
	cfgDir := t.TempDir()
	writeEightPuzzle(t, cfgDir)
	withDirs(t, cfgDir, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, _, err := initializeServices(ctx)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	info, err := first.CreateSession(ctx, "eight-puzzle")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := first.Move(ctx, info.ID, "right", false); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	second, _, err := initializeServices(ctx)
	if err != nil {
		t.Fatalf("Failed to re-initialize services: %v", err)
	}
	state, err := second.GetPuzzleState(ctx, info.ID)
	if err != nil {
		t.Fatalf("Expected restored session: %v", err)
	}
	if state.Key != "1,2,3,4,5,6,7,0,8" {
		t.Errorf("Expected restored position, got %s", state.Key)
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	withDirs(t, "/non/existent/path", t.TempDir())

	if _, _, err := initializeServices(context.Background()); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestFlagDefaults(t *testing.T) {
	if *port <= 0 || *port > 65535 {
		t.Errorf("Invalid default port: %d", *port)
	}
	if *host == "" {
		t.Error("Host should have a default value")
	}
	if *configDir == "" {
		t.Error("Config directory should have a default value")
	}
	if *sessionsDir == "" {
		t.Error("Sessions directory should have a default value")
	}
	if *maxExpansions != 0 {
		t.Errorf("Expected max-expansions to default to 0, got %d", *maxExpansions)
	}
}

func TestEnvDefault(t *testing.T) {
	t.Setenv("PUZZLE_TEST_DIR", "")
	if got := envDefault("PUZZLE_TEST_DIR", "configs"); got != "configs" {
		t.Errorf("Expected fallback, got %s", got)
	}

	t.Setenv("PUZZLE_TEST_DIR", "/srv/puzzles")
	if got := envDefault("PUZZLE_TEST_DIR", "configs"); got != "/srv/puzzles" {
		t.Errorf("Expected env value, got %s", got)
	}
}

func TestMCPHandler(t *testing.T) {
	handler := mcpHandler(mcp.NewClient("http://127.0.0.1:1").GetMCPServer())

	t.Run("rejects GET", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", rec.Code)
		}
	})

	t.Run("lists tools", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %s", ct)
		}
		for _, tool := range []string{"create_session", "solve", "puzzle_state"} {
			if !strings.Contains(rec.Body.String(), tool) {
				t.Errorf("Expected tool %s in response", tool)
			}
		}
	})
}

func TestPruneOrphans(t *testing.T) {
	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	persistence, err := session.NewFilePersistence(t.TempDir(), configs)
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}
	manager := session.NewManagerWithPersistence(persistence)

	kept, err := manager.Create("", "", engine.DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	orphan, err := manager.Create("", "", engine.DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if err := persistence.Delete(orphan.ID); err != nil {
		t.Fatalf("Failed to delete session file: %v", err)
	}

	if pruned := pruneOrphans(manager, persistence); pruned != 1 {
		t.Errorf("Expected 1 pruned session, got %d", pruned)
	}
	if _, err := manager.Get(kept.ID); err != nil {
		t.Errorf("Expected kept session to survive: %v", err)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session in memory, got %d", manager.Count())
	}
}
