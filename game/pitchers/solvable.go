package pitchers

// Solvable is a fast necessary-condition check. False means no sequence of
// moves reaches the goal; true means the search may still fail.
//
// A goal larger than every capacity never fits. Every move keeps each content
// a multiple of the capacities' gcd once it starts that way, so such an
// instance cannot reach a goal that is not a multiple.
func Solvable(s State) bool {
	if s.IsGoal() {
		return true
	}

	largest := 0
	g := 0
	for _, c := range s.capacities {
		largest = max(largest, c)
		g = gcd(g, c)
	}
	if s.goal > largest {
		return false
	}

	aligned := true
	for _, c := range s.contents {
		if c%g != 0 {
			aligned = false
			break
		}
	}
	return !aligned || s.goal%g == 0
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
