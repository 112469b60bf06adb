package pitchers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wricardo/puzzle-search/game/search"
)

// MoveKind is the single-letter prefix of a move's wire form.
type MoveKind string

const (
	Fill  MoveKind = "f"
	Empty MoveKind = "e"
	Pour  MoveKind = "p"
)

// Move is one pitchers action. Target is only meaningful for Pour.
type Move struct {
	Kind   MoveKind
	Source int
	Target int
}

// String returns the wire form: f:<i>, e:<i> or p:<i>:<j>.
func (m Move) String() string {
	if m.Kind == Pour {
		return fmt.Sprintf("p:%d:%d", m.Source, m.Target)
	}
	return fmt.Sprintf("%s:%d", m.Kind, m.Source)
}

// Describe returns a human readable label such as "Pour 0 to 1".
func (m Move) Describe() string {
	switch m.Kind {
	case Fill:
		return fmt.Sprintf("Fill %d", m.Source)
	case Empty:
		return fmt.Sprintf("Empty %d", m.Source)
	case Pour:
		return fmt.Sprintf("Pour %d to %d", m.Source, m.Target)
	}
	return m.String()
}

// ParseMove decodes the wire form produced by Move.String.
func ParseMove(s string) (Move, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	bad := fmt.Errorf("%w: malformed move %q", search.ErrIllegalMove, s)

	index := func(p string) (int, bool) {
		v, err := strconv.Atoi(p)
		return v, err == nil && v >= 0
	}

	switch MoveKind(parts[0]) {
	case Fill, Empty:
		if len(parts) != 2 {
			return Move{}, bad
		}
		i, ok := index(parts[1])
		if !ok {
			return Move{}, bad
		}
		return Move{Kind: MoveKind(parts[0]), Source: i}, nil
	case Pour:
		if len(parts) != 3 {
			return Move{}, bad
		}
		i, ok1 := index(parts[1])
		j, ok2 := index(parts[2])
		if !ok1 || !ok2 {
			return Move{}, bad
		}
		return Move{Kind: Pour, Source: i, Target: j}, nil
	}
	return Move{}, bad
}

// FormatMoves converts a plan to its wire tokens.
func FormatMoves(moves []Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return out
}

// Replay applies moves in order and returns the final state.
func Replay(s State, moves []Move) (State, error) {
	current := s
	for i, m := range moves {
		next, err := current.Apply(m)
		if err != nil {
			return State{}, fmt.Errorf("action %d: %w", i+1, err)
		}
		current = next
	}
	return current, nil
}
