// Package session provides session management for the puzzle server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Session ID generation
//   - Optional file persistence of session state
//   - Eviction of idle sessions
//
// Core Types:
//
// Manager is the main session manager. Each service.Session owns its own
// engine.GameEngine, so sessions never share puzzle state.
//
// Session Identifiers:
//
// Generated IDs are the first 8 hex characters of a random UUID. Callers may
// pick their own IDs (letters, digits, '-' and '_'). Lookups are
// case-insensitive.
//
// Persistence:
//
// FilePersistence writes one JSON file per session holding the config ID and
// the game state. Sessions created from an inline config store the config
// itself. Loading rebuilds the engine and restores the saved state.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", "eight-puzzle", puzzleConfig)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
package session
