// Package mcp exposes the puzzle server to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes one REST request
// against a running server, so agents and browsers share the same sessions.
// Idempotent requests are retried with exponential backoff, and all requests
// pass through a circuit breaker that opens after repeated server failures.
// Moves and solves are never retried.
//
// MCP Tools:
//   - create_session, get_session, list_sessions: session management
//   - puzzle_state: rendered position and legal moves
//   - move, bulk_move: apply human moves
//   - solve: run bfs, dfs, ucs or astar from the current position
//   - reset_puzzle, move_history
//   - list_configs, puzzle_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
