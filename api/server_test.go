package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/puzzle-search/game/config"
	"github.com/wricardo/puzzle-search/game/engine"
	"github.com/wricardo/puzzle-search/game/search"
	"github.com/wricardo/puzzle-search/game/service"
	"github.com/wricardo/puzzle-search/game/session"
	"github.com/wricardo/puzzle-search/transport/websocket"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	for id, c := range map[string]*engine.PuzzleConfig{
		"eight-puzzle": {Name: "Two moves", Kind: engine.KindTiles, Board: []int{1, 2, 3, 4, 5, 6, 0, 7, 8}},
		"hard":         {Name: "Hard", Kind: engine.KindTiles, Board: []int{8, 6, 7, 2, 5, 4, 3, 0, 1}},
		"jugs":         {Name: "Jugs", Kind: engine.KindPitchers, Goal: 4, Capacities: []int{5, 3}, Contents: []int{0, 0}},
		"stuck":        {Name: "Stuck", Kind: engine.KindPitchers, Goal: 3, Capacities: []int{2, 4}, Contents: []int{0, 0}},
	} {
		if err := configs.SaveConfig(id, c); err != nil {
			t.Fatalf("Failed to save config %s: %v", id, err)
		}
	}
	configs.RefreshCache()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := websocket.NewHub()
	go hub.Run(ctx)

	svc := service.NewGameService(session.NewManager(), configs)
	return NewServer(svc, hub, "test")
}

func makeRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.ServeHTTP(w, makeRequest(method, path, body))
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response %q: %v", w.Body.String(), err)
	}
}

func createSession(t *testing.T, s *Server, configID string) string {
	t.Helper()
	w := do(t, s, "POST", "/api/sessions", map[string]string{"config_id": configID})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating session, got %d: %s", w.Code, w.Body.String())
	}
	var info service.SessionInfo
	parseResponse(t, w, &info)
	return info.ID
}

func TestHealth(t *testing.T) {
	s := setupTestServer(t)
	w := do(t, s, "GET", "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var body map[string]string
	parseResponse(t, w, &body)
	if body["status"] != "healthy" || body["version"] != "test" {
		t.Errorf("Unexpected health body: %v", body)
	}
}

func TestCreateSession(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantKind   engine.PuzzleKind
		wantConfig string
	}{
		{"default config", nil, http.StatusCreated, engine.KindTiles, "eight-puzzle"},
		{"by config id", map[string]string{"config_id": "jugs"}, http.StatusCreated, engine.KindPitchers, "jugs"},
		{"unknown config", map[string]string{"config_id": "nope"}, http.StatusNotFound, "", ""},
		{
			"inline config",
			map[string]any{"config": engine.PuzzleConfig{Name: "Inline", Kind: engine.KindPitchers, Goal: 1, Capacities: []int{3}, Contents: []int{0}}},
			http.StatusCreated, engine.KindPitchers, "",
		},
		{
			"invalid inline config",
			map[string]any{"config": engine.PuzzleConfig{Name: "Bad", Kind: engine.KindTiles, Board: []int{1, 1, 2, 3}}},
			http.StatusBadRequest, "", "",
		},
		{
			"both config id and config",
			map[string]any{"config_id": "jugs", "config": engine.PuzzleConfig{Name: "x"}},
			http.StatusBadRequest, "", "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, "POST", "/api/sessions", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				return
			}
			var info service.SessionInfo
			parseResponse(t, w, &info)
			if info.ID == "" {
				t.Error("Expected session ID")
			}
			if info.Kind != tt.wantKind {
				t.Errorf("Expected kind %s, got %s", tt.wantKind, info.Kind)
			}
			if info.ConfigID != tt.wantConfig {
				t.Errorf("Expected config %q, got %q", tt.wantConfig, info.ConfigID)
			}
			if info.GameState == nil || info.GameState.Key == "" {
				t.Error("Expected initial game state")
			}
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := setupTestServer(t)
	id := createSession(t, s, "jugs")
	createSession(t, s, "eight-puzzle")

	t.Run("list", func(t *testing.T) {
		w := do(t, s, "GET", "/api/sessions?kind=pitchers", nil)
		var body struct {
			Count    int                    `json:"count"`
			Sessions []*service.SessionInfo `json:"sessions"`
		}
		parseResponse(t, w, &body)
		if body.Count != 1 || body.Sessions[0].ID != id {
			t.Errorf("Expected only the pitchers session, got %+v", body)
		}

		w = do(t, s, "GET", "/api/sessions?limit=1", nil)
		parseResponse(t, w, &body)
		if body.Count != 1 {
			t.Errorf("Expected limit to apply, got %d", body.Count)
		}
	})

	t.Run("get", func(t *testing.T) {
		if w := do(t, s, "GET", "/api/sessions/"+id, nil); w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
		if w := do(t, s, "GET", "/api/sessions/missing", nil); w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("state", func(t *testing.T) {
		w := do(t, s, "GET", "/api/sessions/"+id+"/state", nil)
		var state engine.GameState
		parseResponse(t, w, &state)
		if state.Key != "4|5,3|0,0" {
			t.Errorf("Expected key 4|5,3|0,0, got %s", state.Key)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if w := do(t, s, "DELETE", "/api/sessions/"+id, nil); w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if w := do(t, s, "GET", "/api/sessions/"+id, nil); w.Code != http.StatusNotFound {
			t.Errorf("Expected 404 after delete, got %d", w.Code)
		}
		if w := do(t, s, "DELETE", "/api/sessions/"+id, nil); w.Code != http.StatusNotFound {
			t.Errorf("Expected 404 on second delete, got %d", w.Code)
		}
	})
}

func TestMove(t *testing.T) {
	s := setupTestServer(t)
	id := createSession(t, s, "eight-puzzle")
	path := "/api/sessions/" + id + "/move"

	t.Run("illegal but well-formed move", func(t *testing.T) {
		w := do(t, s, "POST", path, map[string]string{"action": "down"})
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		var result service.MoveResult
		parseResponse(t, w, &result)
		if result.Success {
			t.Error("Blank on the bottom row cannot move down")
		}
		if result.FromKey != result.ToKey {
			t.Error("Failed move must not change the state")
		}
	})

	t.Run("malformed action", func(t *testing.T) {
		if w := do(t, s, "POST", path, map[string]string{"action": "f:0"}); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("missing action", func(t *testing.T) {
		if w := do(t, s, "POST", path, map[string]string{}); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("legal moves solve the puzzle", func(t *testing.T) {
		var result service.MoveResult
		parseResponse(t, do(t, s, "POST", path, map[string]string{"action": "right"}), &result)
		if !result.Success || result.Solved {
			t.Fatalf("Expected successful unsolved move, got %+v", result)
		}
		parseResponse(t, do(t, s, "POST", path, map[string]string{"direction": "right"}), &result)
		if !result.Solved || result.ToKey != "1,2,3,4,5,6,7,8,0" {
			t.Errorf("Expected solved board, got %+v", result)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		if w := do(t, s, "POST", "/api/sessions/nope/move", map[string]string{"action": "up"}); w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}

func TestBulkMove(t *testing.T) {
	s := setupTestServer(t)
	id := createSession(t, s, "jugs")
	path := "/api/sessions/" + id + "/bulk-move"

	moves := []string{"f:0", "p:0:1", "e:1", "p:0:1", "f:0", "p:0:1", "e:0"}
	w := do(t, s, "POST", path, map[string]any{"moves": moves})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var result service.BulkMoveResult
	parseResponse(t, w, &result)
	if result.MovesExecuted != 6 || !result.Solved {
		t.Errorf("Expected 6 moves and solved, got %d solved=%v", result.MovesExecuted, result.Solved)
	}
	if result.StopReasonCode != "already_solved" {
		t.Errorf("Expected already_solved, got %q", result.StopReasonCode)
	}

	// Reset first, then stop at the first illegal move.
	w = do(t, s, "POST", path, map[string]any{"moves": []string{"f:1", "f:1"}, "reset": true})
	parseResponse(t, w, &result)
	if result.MovesExecuted != 1 || result.StopReasonCode != "illegal_move" || result.StoppedOnMove != 2 {
		t.Errorf("Unexpected bulk result: %+v", result)
	}
}

func TestSolve(t *testing.T) {
	s := setupTestServer(t)

	t.Run("plan without apply", func(t *testing.T) {
		id := createSession(t, s, "jugs")
		w := do(t, s, "POST", "/api/sessions/"+id+"/solve", map[string]any{"strategy": "bfs"})
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var result service.SolveResult
		parseResponse(t, w, &result)
		if !result.Solvable || result.Applied {
			t.Fatalf("Expected solvable unapplied plan, got %+v", result)
		}
		want := []string{"f:0", "p:0:1", "e:1", "p:0:1", "f:0", "p:0:1"}
		if strings.Join(result.Plan.Actions, " ") != strings.Join(want, " ") {
			t.Errorf("Expected plan %v, got %v", want, result.Plan.Actions)
		}
		if result.GameState.Key != "4|5,3|0,0" {
			t.Errorf("State must not change without apply, got %s", result.GameState.Key)
		}
	})

	t.Run("apply", func(t *testing.T) {
		id := createSession(t, s, "eight-puzzle")
		var result service.SolveResult
		parseResponse(t, do(t, s, "POST", "/api/sessions/"+id+"/solve", map[string]any{"apply": true}), &result)
		if !result.Applied || !result.GameState.Solved {
			t.Fatalf("Expected applied solution, got %+v", result)
		}
		if len(result.Steps) != 2 {
			t.Errorf("Expected 2 replay steps, got %d", len(result.Steps))
		}
	})

	t.Run("no solution", func(t *testing.T) {
		id := createSession(t, s, "stuck")
		w := do(t, s, "POST", "/api/sessions/"+id+"/solve", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		var result service.SolveResult
		parseResponse(t, w, &result)
		if result.Solvable || result.Plan != nil {
			t.Errorf("Expected solvable=false, got %+v", result)
		}
	})

	t.Run("unknown strategy", func(t *testing.T) {
		id := createSession(t, s, "jugs")
		if w := do(t, s, "POST", "/api/sessions/"+id+"/solve", map[string]any{"strategy": "greedy"}); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("budget exceeded", func(t *testing.T) {
		id := createSession(t, s, "hard")
		w := do(t, s, "POST", "/api/sessions/"+id+"/solve", map[string]any{"max_expansions": 10})
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected 422, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestResetAndHistory(t *testing.T) {
	s := setupTestServer(t)
	id := createSession(t, s, "jugs")

	for _, action := range []string{"f:0", "p:0:1", "f:1"} {
		do(t, s, "POST", "/api/sessions/"+id+"/move", map[string]string{"action": action})
	}

	w := do(t, s, "POST", "/api/sessions/"+id+"/reset", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var reset struct {
		State engine.GameState `json:"state"`
	}
	parseResponse(t, w, &reset)
	if reset.State.Key != "4|5,3|0,0" {
		t.Errorf("Expected start key after reset, got %s", reset.State.Key)
	}

	var history service.HistoryResponse
	parseResponse(t, do(t, s, "GET", "/api/sessions/"+id+"/history?limit=2&order=asc", nil), &history)
	if history.TotalMoves != 3 {
		t.Errorf("Expected 3 history entries across reset, got %d", history.TotalMoves)
	}
	if len(history.Moves) != 2 || history.Moves[0].Action != "f:0" || !history.HasNext {
		t.Errorf("Unexpected first page: %+v", history)
	}
	if history.Moves[1].Success != true {
		t.Error("p:0:1 after f:0 should succeed")
	}

	if w := do(t, s, "POST", "/api/sessions/missing/reset", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestConfigs(t *testing.T) {
	s := setupTestServer(t)

	t.Run("list", func(t *testing.T) {
		var configs []service.ConfigInfo
		parseResponse(t, do(t, s, "GET", "/api/configs", nil), &configs)
		if len(configs) != 4 {
			t.Fatalf("Expected 4 configs, got %d", len(configs))
		}
		if configs[0].ConfigID != "eight-puzzle" || configs[0].Size != 3 {
			t.Errorf("Unexpected first config: %+v", configs[0])
		}
	})

	t.Run("get", func(t *testing.T) {
		var c engine.PuzzleConfig
		w := do(t, s, "GET", "/api/configs/jugs", nil)
		parseResponse(t, w, &c)
		if c.Goal != 4 {
			t.Errorf("Expected goal 4, got %d", c.Goal)
		}
		if w := do(t, s, "GET", "/api/configs/missing", nil); w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("create", func(t *testing.T) {
		body := engine.PuzzleConfig{Name: "Two From 7 and 3", Kind: engine.KindPitchers, Goal: 2, Capacities: []int{7, 3}, Contents: []int{0, 0}}
		w := do(t, s, "POST", "/api/configs", body)
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		var resp map[string]any
		parseResponse(t, w, &resp)
		if resp["config_id"] != "two-from-7-and-3" {
			t.Errorf("Expected slug id, got %v", resp["config_id"])
		}
		if id := createSession(t, s, "two-from-7-and-3"); id == "" {
			t.Error("Expected a session from the new config")
		}
	})

	t.Run("create invalid", func(t *testing.T) {
		body := engine.PuzzleConfig{Name: "Broken", Kind: engine.KindPitchers, Goal: 2, Capacities: []int{7}, Contents: []int{9}}
		if w := do(t, s, "POST", "/api/configs", body); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestSolveReplayOverWebSocket(t *testing.T) {
	s := setupTestServer(t)
	id := createSession(t, s, "jugs")

	server := httptest.NewServer(s)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?session=" + id
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	read := func() websocket.Message {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read message: %v", err)
		}
		var m websocket.Message
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		return m
	}

	if first := read(); first.Event != websocket.EventStateUpdate {
		t.Fatalf("Expected initial state_update, got %s", first.Event)
	}

	resp, err := http.Post(server.URL+"/api/sessions/"+id+"/solve", "application/json", strings.NewReader(`{"apply":true}`))
	if err != nil {
		t.Fatalf("Solve request failed: %v", err)
	}
	resp.Body.Close()

	for i := range 6 {
		m := read()
		if m.Event != websocket.EventReplayStep {
			t.Fatalf("Frame %d: expected replay_step, got %s", i, m.Event)
		}
		step, _ := m.Data.(map[string]any)
		if int(step["index"].(float64)) != i {
			t.Errorf("Expected step %d, got %v", i, step["index"])
		}
	}
	final := read()
	if final.Event != websocket.EventStateUpdate || !final.GameState.Solved {
		t.Errorf("Expected solved state_update, got %+v", final)
	}
}

func TestWebSocketRejectsUnknownSession(t *testing.T) {
	s := setupTestServer(t)
	if w := do(t, s, "GET", "/ws?session=ghost", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
	if w := do(t, s, "GET", "/ws", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", service.ErrConfigNotFound), http.StatusNotFound},
		{session.ErrSessionAlreadyExists, http.StatusConflict},
		{fmt.Errorf("bad: %w", search.ErrIllegalMove), http.StatusBadRequest},
		{search.ErrInvalidState, http.StatusBadRequest},
		{search.ErrUnknownStrategy, http.StatusBadRequest},
		{service.ErrInvalidConfig, http.StatusBadRequest},
		{search.ErrBudgetExceeded, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestSlug(t *testing.T) {
	for in, want := range map[string]string{
		"Four from 5 and 3": "four-from-5-and-3",
		"  Eight Puzzle!  ": "eight-puzzle",
		"---":               "",
	} {
		if got := slug(in); got != want {
			t.Errorf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}
