// Package engine runs one puzzle per session on top of the search package.
//
// The engine package provides:
//   - PuzzleConfig loading (JSON or YAML) and validation
//   - Human moves in the wire tokens of each puzzle kind
//   - Move history that survives resets
//   - Solving with any search strategy and replaying the plan
//   - Offline analysis of a config's state space
//
// Core Types:
//
// The Engine interface is implemented by GameEngine. GameState is the JSON
// snapshot shared with the API, the WebSocket hub, and session persistence.
// PuzzleConfig describes the starting position of a sliding-tile board or a
// pitchers instance.
//
// Usage:
//
//	config, err := engine.LoadPuzzleConfig("configs/eight-puzzle.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.Move("left")
//	plan, err := gameEngine.Solve(engine.SolveOptions{Strategy: search.StrategyBFS})
//
// Puzzle Kinds:
//
// A tiles puzzle moves the blank up, down, left, or right until the board
// reads 1..N²-1 followed by the blank. A pitchers puzzle fills (f:i), empties
// (e:i), or pours (p:i:j) until some pitcher holds the goal quantity.
package engine
