package tiles

// Inversions counts ordered pairs of tiles that appear in the wrong relative
// order, ignoring the blank.
func Inversions(b Board) int {
	count := 0
	for i := 0; i < len(b.cells); i++ {
		if b.cells[i] == Blank {
			continue
		}
		for j := i + 1; j < len(b.cells); j++ {
			if b.cells[j] != Blank && b.cells[i] > b.cells[j] {
				count++
			}
		}
	}
	return count
}

// Solvable reports whether the goal board is reachable from b.
//
// For odd N the inversion count must be even. For even N, the inversion count
// plus the blank's row counted from the bottom (starting at 1) must be odd.
func Solvable(b Board) bool {
	inv := Inversions(b)
	if b.size%2 == 1 {
		return inv%2 == 0
	}
	row, _ := b.BlankPosition()
	fromBottom := b.size - row
	return (inv+fromBottom)%2 == 1
}
