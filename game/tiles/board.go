// Package tiles implements the N×N sliding-tile puzzle (the 8-puzzle for N=3) as
// an immutable Board and a unit-cost search problem over it.
package tiles

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wricardo/puzzle-search/game/search"
)

// Blank is the value of the empty cell.
const Blank = 0

// MinSize is the smallest board edge. There is no upper bound; uninformed
// strategies simply exhaust their budget on large boards.
const MinSize = 2

// Direction is a blank-cell displacement.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists every direction in successor enumeration order.
var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection converts a token into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Up, Down, Left, Right:
		return d, nil
	}
	return "", fmt.Errorf("%w: unknown direction %q", search.ErrIllegalMove, s)
}

func (d Direction) delta() (dr, dc int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	}
	return 0, 0
}

// Board is an immutable row-major N×N configuration.
type Board struct {
	size  int
	cells []int
	blank int
}

// NewBoard validates that values hold a permutation of 0..N²-1 for some
// N >= MinSize.
func NewBoard(values []int) (Board, error) {
	n := len(values)
	size := int(math.Sqrt(float64(n)))
	if size*size != n {
		return Board{}, fmt.Errorf("%w: %d values do not form a square board", search.ErrInvalidState, n)
	}
	if size < MinSize {
		return Board{}, fmt.Errorf("%w: board size must be at least %d, got %d", search.ErrInvalidState, MinSize, size)
	}

	seen := make([]bool, n)
	blank := -1
	for i, v := range values {
		if v < 0 || v >= n {
			return Board{}, fmt.Errorf("%w: value %d at index %d out of range 0..%d", search.ErrInvalidState, v, i, n-1)
		}
		if seen[v] {
			return Board{}, fmt.Errorf("%w: duplicate value %d at index %d", search.ErrInvalidState, v, i)
		}
		seen[v] = true
		if v == Blank {
			blank = i
		}
	}

	cells := make([]int, n)
	copy(cells, values)
	return Board{size: size, cells: cells, blank: blank}, nil
}

// GoalBoard returns 1..N²-1 followed by the blank.
func GoalBoard(size int) (Board, error) {
	values := make([]int, size*size)
	for i := range values {
		values[i] = i + 1
	}
	if len(values) > 0 {
		values[len(values)-1] = Blank
	}
	return NewBoard(values)
}

// Size returns N.
func (b Board) Size() int { return b.size }

// Cells returns a copy of the row-major values.
func (b Board) Cells() []int {
	out := make([]int, len(b.cells))
	copy(out, b.cells)
	return out
}

// Rows returns a copy of the board as N rows.
func (b Board) Rows() [][]int {
	rows := make([][]int, b.size)
	for r := range rows {
		rows[r] = make([]int, b.size)
		copy(rows[r], b.cells[r*b.size:(r+1)*b.size])
	}
	return rows
}

// At returns the value at row, col.
func (b Board) At(row, col int) int { return b.cells[row*b.size+col] }

// BlankPosition returns the row and column of the empty cell.
func (b Board) BlankPosition() (row, col int) {
	return b.blank / b.size, b.blank % b.size
}

// CanMove reports whether the blank has a neighbor in direction d.
func (b Board) CanMove(d Direction) bool {
	dr, dc := d.delta()
	if dr == 0 && dc == 0 {
		return false
	}
	row, col := b.BlankPosition()
	row, col = row+dr, col+dc
	return row >= 0 && row < b.size && col >= 0 && col < b.size
}

// Apply swaps the blank with its neighbor in direction d.
func (b Board) Apply(d Direction) (Board, error) {
	if !b.CanMove(d) {
		row, col := b.BlankPosition()
		return Board{}, fmt.Errorf("%w: cannot move blank %s from (%d,%d)", search.ErrIllegalMove, d, row, col)
	}

	dr, dc := d.delta()
	target := b.blank + dr*b.size + dc

	cells := make([]int, len(b.cells))
	copy(cells, b.cells)
	cells[b.blank], cells[target] = cells[target], cells[b.blank]
	return Board{size: b.size, cells: cells, blank: target}, nil
}

// LegalMoves returns the in-bounds directions in enumeration order.
func (b Board) LegalMoves() []Direction {
	moves := make([]Direction, 0, len(Directions))
	for _, d := range Directions {
		if b.CanMove(d) {
			moves = append(moves, d)
		}
	}
	return moves
}

// IsGoal reports whether the board reads 1..N²-1 followed by the blank.
func (b Board) IsGoal() bool {
	last := len(b.cells) - 1
	for i := 0; i < last; i++ {
		if b.cells[i] != i+1 {
			return false
		}
	}
	return b.cells[last] == Blank
}

// Key returns the comma-joined row-major values.
func (b Board) Key() string {
	var sb strings.Builder
	for i, v := range b.cells {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

// Equal reports structural equality.
func (b Board) Equal(other Board) bool {
	if b.size != other.size {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// String renders the board one row per line with the blank shown as "_".
func (b Board) String() string {
	width := len(strconv.Itoa(len(b.cells) - 1))
	var sb strings.Builder
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			v := b.At(r, c)
			if v == Blank {
				sb.WriteString(strings.Repeat(" ", width-1) + "_")
				continue
			}
			fmt.Fprintf(&sb, "%*d", width, v)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
