package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/puzzle-search/game/engine"
	"github.com/wricardo/puzzle-search/game/pitchers"
	"github.com/wricardo/puzzle-search/game/service"
	"github.com/wricardo/puzzle-search/game/tiles"
)

// ErrRejected marks 4xx answers from the REST API. They are never retried.
var ErrRejected = errors.New("request rejected")

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
	retrier    retry.Retry[[]byte]
	breaker    circuitbreaker.CircuitBreaker[[]byte]
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// Solving large boards can take a while.
			Timeout: 60 * time.Second,
		},
		retrier: retry.New[[]byte](retry.Config{
			MaxAttempts:        3,
			InitialDelay:       100 * time.Millisecond,
			BackoffPolicy:      retry.BackoffExponential,
			Multiplier:         2.0,
			NonRetryableErrors: []error{ErrRejected},
		}),
		breaker: circuitbreaker.New[[]byte](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    30 * time.Second,
			Timeout:     10 * time.Second,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Puzzle Search",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Puzzle Search - MCP Interface

This is a thin client that proxies all requests to the REST API server.

PUZZLES:
- tiles: an N×N sliding-tile board. Actions move the blank: up, down, left, right.
  Solved when the tiles read 1..N²-1 in order with the blank last.
- pitchers: water pitchers with capacities. Actions: f:<i> fill, e:<i> empty,
  p:<i>:<j> pour i into j until i is empty or j is full. Solved when any
  pitcher holds exactly the goal amount.

AVAILABLE TOOLS:
- create_session, get_session, list_sessions, list_configs
- puzzle_state: current position and legal moves
- move / bulk_move: play moves yourself (explain your intent)
- solve: let the server search for a plan (bfs, dfs, ucs, astar), optionally applying it
- reset_puzzle, move_history
- puzzle_instructions: rules and move notation`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Session ID",
	}
}

func (c *Client) registerTools() {
	// Sessions
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new puzzle session from a stored config (default config when omitted)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"config_id": map[string]any{
					"type":        "string",
					"description": "Config ID from list_configs (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active puzzle sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Puzzle operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "puzzle_state",
		Description: "Get the current puzzle position and legal moves",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handlePuzzleState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Apply one move: a tile direction (up/down/left/right) or a pitcher move (f:<i>, e:<i>, p:<i>:<j>)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
				"action": map[string]any{
					"type":        "string",
					"description": "Move to apply",
				},
				"intent": map[string]any{
					"type":        "string",
					"description": "Brief explanation of why you chose this move",
				},
				"reset": map[string]any{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "action"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Apply up to %d moves in sequence, stopping at the first illegal move or when solved", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
				"moves": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Moves to apply in order",
				},
				"intent": map[string]any{
					"type":        "string",
					"description": "Brief explanation of the plan behind this sequence",
				},
				"reset": map[string]any{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve",
		Description: "Search for a plan from the current position. With apply=true the plan is played into the session.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
				"strategy": map[string]any{
					"type":        "string",
					"enum":        []string{"bfs", "dfs", "ucs", "astar"},
					"description": "Search strategy (config default when omitted)",
				},
				"apply": map[string]any{
					"type":        "boolean",
					"description": "Apply the plan to the session",
				},
				"max_expansions": map[string]any{
					"type":        "integer",
					"description": "Expansion budget (optional)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleSolve)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_puzzle",
		Description: "Reset the puzzle to its start position",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available puzzle configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "puzzle_instructions",
		Description: "Get the rules and move notation of both puzzle kinds",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func idempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodDelete
}

// apiCall sends one request through the circuit breaker. Idempotent requests
// are retried on transport errors and 5xx answers; moves and solves are not.
func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = data
	}

	attempt := func(ctx context.Context) ([]byte, error) {
		return c.send(ctx, method, path, payload)
	}

	// Rejections count as successful calls for the breaker.
	var rejected error
	data, err := c.breaker.Execute(ctx, func(ctx context.Context) ([]byte, error) {
		var (
			data []byte
			err  error
		)
		if idempotent(method) {
			data, err = c.retrier.Do(ctx, attempt)
		} else {
			data, err = attempt(ctx)
		}
		if errors.Is(err, ErrRejected) {
			rejected = err
			return nil, nil
		}
		return data, err
	})
	if rejected != nil {
		return rejected
	}
	if err != nil {
		return err
	}

	if result != nil {
		return json.Unmarshal(data, result)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		msg := fmt.Sprintf("API error: %d", resp.StatusCode)
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		if resp.StatusCode < 500 {
			return nil, fmt.Errorf("%w: %s", ErrRejected, msg)
		}
		return nil, errors.New(msg)
	}

	return data, nil
}

func arguments(request mcp.CallToolRequest) map[string]any {
	args, _ := request.Params.Arguments.(map[string]any)
	if args == nil {
		args = map[string]any{}
	}
	return args
}

func sessionPath(args map[string]any, suffix string) (string, error) {
	id, _ := args["session_id"].(string)
	if id == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(id) + suffix, nil
}

func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(strings.TrimPrefix(err.Error(), ErrRejected.Error()+": "))
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configID, _ := arguments(request)["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions", body, &info); err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\n%s", info.ID, formatSessionInfo(&info))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, http.MethodGet, "/api/sessions", nil, &resp); err != nil {
		return toolError(err), nil
	}

	if len(resp.Sessions) == 0 {
		return mcp.NewToolResultText("No active sessions"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active sessions (%d):\n", len(resp.Sessions))
	for _, info := range resp.Sessions {
		solved := ""
		if info.GameState != nil && info.GameState.Solved {
			solved = " solved"
		}
		fmt.Fprintf(&b, "- %s: %s %s%s\n", info.ID, info.Kind, configLabel(info), solved)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return toolError(err), nil
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &info); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handlePuzzleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/state")
	if err != nil {
		return toolError(err), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &state); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/move")
	if err != nil {
		return toolError(err), nil
	}
	action, _ := args["action"].(string)
	reset, _ := args["reset"].(bool)

	var result service.MoveResult
	body := map[string]any{"action": action, "reset": reset}
	if err := c.apiCall(ctx, http.MethodPost, path, body, &result); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/bulk-move")
	if err != nil {
		return toolError(err), nil
	}
	reset, _ := args["reset"].(bool)

	raw, _ := args["moves"].([]any)
	moves := make([]string, 0, len(raw))
	for _, m := range raw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}

	var result service.BulkMoveResult
	body := map[string]any{"moves": moves, "reset": reset}
	if err := c.apiCall(ctx, http.MethodPost, path, body, &result); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(formatBulkMoveResult(&result)), nil
}

func (c *Client) handleSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/solve")
	if err != nil {
		return toolError(err), nil
	}

	opts := service.SolveOptions{}
	opts.Strategy, _ = args["strategy"].(string)
	opts.Apply, _ = args["apply"].(bool)
	if n, ok := args["max_expansions"].(float64); ok {
		opts.MaxExpansions = int(n)
	}

	var result service.SolveResult
	if err := c.apiCall(ctx, http.MethodPost, path, opts, &result); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(formatSolveResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/reset")
	if err != nil {
		return toolError(err), nil
	}

	var resp struct {
		State *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText("Puzzle reset.\n" + formatGameState(resp.State)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/history")
	if err != nil {
		return toolError(err), nil
	}

	query := url.Values{}
	if page, ok := args["page"].(float64); ok && page > 0 {
		query.Set("page", fmt.Sprint(int(page)))
	}
	if limit, ok := args["limit"].(float64); ok && limit > 0 {
		query.Set("limit", fmt.Sprint(int(limit)))
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &history); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []*service.ConfigInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/configs", nil, &configs); err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	b.WriteString("Available configurations:\n")
	for _, info := range configs {
		detail := ""
		switch info.Kind {
		case engine.KindTiles:
			detail = fmt.Sprintf("%dx%d board", info.Size, info.Size)
		case engine.KindPitchers:
			detail = fmt.Sprintf("%d pitchers, goal %d", info.Pitchers, info.Goal)
		}
		fmt.Fprintf(&b, "- %s (%s, %s): %s\n", info.ConfigID, info.Kind, detail, info.Name)
		if info.Description != "" {
			fmt.Fprintf(&b, "  %s\n", info.Description)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `PUZZLE SEARCH

SLIDING TILES
The board is N×N with tiles 1..N²-1 and one blank (shown as _).
Moves name the direction the blank travels: up, down, left, right.
A move off the board is illegal. Goal (3×3):
  1 2 3
  4 5 6
  7 8 _
Half of all boards cannot reach the goal; solve reports them as unsolvable.

WATER PITCHERS
Pitchers have fixed capacities and start with some contents.
  f:<i>     fill pitcher i to capacity (illegal when already full)
  e:<i>     empty pitcher i (illegal when already empty)
  p:<i>:<j> pour i into j until i is empty or j is full (illegal when i is
            empty, j is full, or i == j)
The puzzle is solved when any pitcher holds exactly the goal amount.

SOLVING
solve runs a search from the current position:
  bfs    shortest plan in number of moves
  dfs    some plan, not necessarily short
  ucs    cheapest plan (all moves cost 1 here, so same length as bfs)
  astar  shortest plan guided by a heuristic (Manhattan distance for tiles)
Set apply=true to play the plan into the session step by step.

TIPS
- puzzle_state lists the legal moves of the current position.
- A malformed move is rejected with an error. A well-formed move that is not
  legal right now is recorded as a failed attempt and leaves the puzzle as is.`

// Formatting

func configLabel(info *service.SessionInfo) string {
	if info.ConfigID != "" {
		return info.ConfigID
	}
	if info.PuzzleConfig != nil {
		return fmt.Sprintf("%q (inline)", info.PuzzleConfig.Name)
	}
	return "(inline)"
}

func formatSessionInfo(info *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nKind: %s\nConfig: %s\n", info.ID, info.Kind, configLabel(info))
	if info.GameState != nil {
		b.WriteString(formatGameState(info.GameState))
	}
	return b.String()
}

// renderPosition draws the puzzle with the domain packages' own String forms.
func renderPosition(state *engine.GameState) string {
	switch state.Kind {
	case engine.KindTiles:
		if b, err := tiles.NewBoard(state.Board); err == nil {
			return b.String()
		}
	case engine.KindPitchers:
		if s, err := pitchers.NewState(state.Goal, state.Capacities, state.Contents); err == nil {
			return s.String() + "\n"
		}
	}
	return state.Key + "\n"
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No state\n"
	}

	var b strings.Builder
	b.WriteString(renderPosition(state))
	if state.Solved {
		b.WriteString("Status: SOLVED\n")
	} else {
		fmt.Fprintf(&b, "Legal moves: %s\n", strings.Join(state.PossibleMoves, ", "))
	}
	fmt.Fprintf(&b, "Moves since reset: %d (total %d)\n", state.CurrentMovesCount, state.TotalMoves)
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "OK %s: %s -> %s\n", result.Action, result.FromKey, result.ToKey)
	} else {
		fmt.Fprintf(&b, "FAILED %s: not legal from %s\n", result.Action, result.FromKey)
	}
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(result *service.BulkMoveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Executed %d/%d moves", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")
	if result.StopReasonCode != "" {
		fmt.Fprintf(&b, "Stopped: %s", result.StopReasonCode)
		if result.StoppedOnMove > 0 {
			fmt.Fprintf(&b, " at move %d", result.StoppedOnMove)
		}
		b.WriteString("\n")
	}
	for _, step := range result.Steps {
		status := "ok"
		if !step.Success {
			status = "FAILED"
		}
		fmt.Fprintf(&b, "%2d. %-8s %s\n", step.Idx, step.Action, status)
	}
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatSolveResult(result *service.SolveResult) string {
	var b strings.Builder
	if !result.Solvable {
		fmt.Fprintf(&b, "No solution: %s\n", result.Message)
		b.WriteString(formatGameState(result.GameState))
		return b.String()
	}

	plan := result.Plan
	fmt.Fprintf(&b, "Plan (%s, %d moves, %d expanded, %d generated, %dms):\n",
		plan.Strategy, len(plan.Actions), plan.Expanded, plan.Generated, result.DurationMs)
	for i, action := range plan.Actions {
		label := action
		if i < len(plan.Labels) {
			label = fmt.Sprintf("%s (%s)", action, plan.Labels[i])
		}
		fmt.Fprintf(&b, "%2d. %s\n", i+1, label)
	}
	if result.Applied {
		b.WriteString("Plan applied.\n")
	}
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "History page %d/%d (%d moves total)\n", history.Page, history.TotalPages, history.TotalMoves)
	for _, entry := range history.Moves {
		status := "ok"
		if !entry.Success {
			status = "FAILED"
		}
		by := ""
		if entry.Solver {
			by = " [solver]"
		}
		fmt.Fprintf(&b, "#%d %s %s%s\n", entry.MoveNumber, entry.Action, status, by)
	}
	return b.String()
}
