package tiles

import (
	"fmt"
	"math/rand/v2"
)

// Cell is a board coordinate.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Replay applies actions in order and returns the final board.
func Replay(b Board, actions []Direction) (Board, error) {
	current := b
	for i, d := range actions {
		next, err := current.Apply(d)
		if err != nil {
			return Board{}, fmt.Errorf("action %d: %w", i+1, err)
		}
		current = next
	}
	return current, nil
}

// BlankPath converts a plan into the cell the blank occupies after each action,
// which is the tile a client has to click to replay the move.
func BlankPath(b Board, actions []Direction) ([]Cell, error) {
	path := make([]Cell, 0, len(actions))
	current := b
	for i, d := range actions {
		next, err := current.Apply(d)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i+1, err)
		}
		row, col := next.BlankPosition()
		path = append(path, Cell{Row: row, Col: col})
		current = next
	}
	return path, nil
}

// RandomBoard returns a uniformly shuffled board. Half of all shuffles are not
// solvable; check with Solvable before searching.
func RandomBoard(size int, r *rand.Rand) (Board, error) {
	values := make([]int, size*size)
	for i := range values {
		values[i] = i
	}
	r.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
	return NewBoard(values)
}

// Scramble walks the blank randomly from the goal board, so the result is
// always solvable in at most steps moves.
func Scramble(size, steps int, r *rand.Rand) (Board, error) {
	b, err := GoalBoard(size)
	if err != nil {
		return Board{}, err
	}
	for i := 0; i < steps; i++ {
		moves := b.LegalMoves()
		b, err = b.Apply(moves[r.IntN(len(moves))])
		if err != nil {
			return Board{}, err
		}
	}
	return b, nil
}
