package engine

import "time"

// AddMoveToHistory appends to both the cumulative history and the current
// segment.
func (gs *GameState) AddMoveToHistory(action, fromKey, toKey string, success, solver bool) {
	entry := MoveHistoryEntry{
		Action:     action,
		FromKey:    fromKey,
		ToKey:      toKey,
		Timestamp:  time.Now().Unix(),
		Success:    success,
		MoveNumber: gs.TotalMoves + 1,
		Solver:     solver,
	}
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}

// SuccessfulMoves counts successful entries in the current segment.
func (gs *GameState) SuccessfulMoves() int {
	n := 0
	for _, m := range gs.CurrentMoves {
		if m.Success {
			n++
		}
	}
	return n
}
