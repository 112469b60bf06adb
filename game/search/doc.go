// Package search provides domain-agnostic state-space search for puzzle solving.
//
// The search package implements:
//   - The Problem contract binding a State universe to start/goal/successor semantics
//   - Breadth-first graph search with mark-on-generation duplicate detection
//   - Depth-first, uniform-cost and A* strategies sharing the same frontier and visited-set shape
//   - An optional expansion budget, progress observer and cancellation context
//   - Enumerate, a goal-free breadth-first walk of the reachable state space
//
// Core Types:
//
// State is any immutable configuration exposing a structural Key. Problem wraps a
// start State with goal and successor semantics. Every strategy returns a Result
// holding the ordered action sequence from the start to the goal that was found.
//
// Usage:
//
//	board, err := tiles.NewBoard([]int{1, 2, 3, 4, 5, 6, 7, 0, 8})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := search.BreadthFirst[tiles.Board, tiles.Direction](tiles.NewProblem(board))
//	if errors.Is(err, search.ErrNoSolution) {
//		// unreachable goal
//	}
//	fmt.Println(result.Actions) // [right]
//
// Guarantees:
//
// With unit step costs BreadthFirst returns a path with the minimum number of actions.
// Ties between equally short paths are broken by the order of Problem.Successors,
// so results are reproducible for a fixed start state. Each call owns its frontier
// and visited set, so independent problems may be searched concurrently.
package search
