// Package api provides the HTTP REST API of the puzzle server.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session from {"config_id": "..."} or an inline {"config": {...}}
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N&kind=tiles|pitchers)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Puzzle Operations:
//   - GET /api/sessions/{id}/state - Current puzzle state
//   - POST /api/sessions/{id}/move - {"action": "up", "reset": false}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["f:0", "p:0:1"], "reset": false}
//   - POST /api/sessions/{id}/solve - {"strategy": "astar", "apply": true, "max_expansions": 100000}
//   - POST /api/sessions/{id}/reset - Back to the config's start position
//   - GET /api/sessions/{id}/history - Move history (?page=1&limit=20&order=desc)
//
// Configuration:
//   - GET /api/configs - List puzzle configs
//   - POST /api/configs - Save a config (?id=... or derived from its name)
//   - GET /api/configs/{name} - Get one config
//
// Other:
//   - GET /api/health - Liveness and version
//   - GET /ws?session={id} - WebSocket updates for a session
//
// Actions are tile directions (up, down, left, right) or pitcher moves
// (f:<i>, e:<i>, p:<i>:<j>). A malformed action is a 400. A well-formed move
// that is not legal in the current position returns 200 with success=false.
//
// Error Handling:
//
// Errors are returned as JSON with the matching HTTP status code:
//
//	{
//	  "error": "session not found: ab12cd34",
//	  "code": 404
//	}
//
// Unknown sessions and configs are 404. Invalid moves, states, configs, and
// strategies are 400. A search that runs out of its expansion budget is 422.
// A puzzle without a solution is not an error: solve answers 200 with
// "solvable": false.
package api
