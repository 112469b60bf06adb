// Package websocket pushes puzzle session updates to browser clients.
//
// A central Hub owns every connection, grouped by session ID. Handlers never
// write to connections directly: BroadcastToSession and BroadcastEvent queue a
// Message and the Run loop fans it out to the session's clients.
//
// Message Protocol:
//
// Every frame is one JSON object:
//
//	{"session_id": "ab12cd34", "event": "state_update", "game_state": {...}, "timestamp": "..."}
//
// Events:
//   - state_update: the session's state after a move, bulk move, reset, or solve
//   - replay_step: one step of an applied solver plan, in order
//   - session_deleted: the session no longer exists
//
// Clients that fall behind (full send buffer) are disconnected.
package websocket
