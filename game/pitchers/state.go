// Package pitchers implements the water-pitchers puzzle: a set of pitchers
// with fixed capacities that can be filled, emptied, or poured into each other
// until one of them holds exactly the goal quantity.
package pitchers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wricardo/puzzle-search/game/search"
)

// State is an immutable pitchers configuration.
type State struct {
	goal       int
	capacities []int
	contents   []int
}

// NewState validates and copies its inputs.
func NewState(goal int, capacities, contents []int) (State, error) {
	if len(capacities) == 0 {
		return State{}, fmt.Errorf("%w: at least one pitcher is required", search.ErrInvalidState)
	}
	if len(capacities) != len(contents) {
		return State{}, fmt.Errorf("%w: %d capacities but %d contents", search.ErrInvalidState, len(capacities), len(contents))
	}
	if goal < 0 {
		return State{}, fmt.Errorf("%w: goal must not be negative, got %d", search.ErrInvalidState, goal)
	}
	for i := range capacities {
		if capacities[i] <= 0 {
			return State{}, fmt.Errorf("%w: pitcher %d has capacity %d", search.ErrInvalidState, i, capacities[i])
		}
		if contents[i] < 0 || contents[i] > capacities[i] {
			return State{}, fmt.Errorf("%w: pitcher %d holds %d of %d", search.ErrInvalidState, i, contents[i], capacities[i])
		}
	}

	return State{
		goal:       goal,
		capacities: append([]int(nil), capacities...),
		contents:   append([]int(nil), contents...),
	}, nil
}

// FromNumbers decodes the flat form [goal, cap_1..cap_n, con_1..con_n].
func FromNumbers(numbers []int) (State, error) {
	if len(numbers) < 3 || (len(numbers)-1)%2 != 0 {
		return State{}, fmt.Errorf("%w: expected goal followed by n capacities and n contents, got %d numbers", search.ErrInvalidState, len(numbers))
	}
	n := (len(numbers) - 1) / 2
	return NewState(numbers[0], numbers[1:1+n], numbers[1+n:])
}

// Numbers encodes the state in the flat form accepted by FromNumbers.
func (s State) Numbers() []int {
	out := make([]int, 0, 1+2*len(s.capacities))
	out = append(out, s.goal)
	out = append(out, s.capacities...)
	return append(out, s.contents...)
}

func (s State) Goal() int { return s.goal }

func (s State) Len() int { return len(s.capacities) }

// Capacities returns a copy.
func (s State) Capacities() []int { return append([]int(nil), s.capacities...) }

// Contents returns a copy.
func (s State) Contents() []int { return append([]int(nil), s.contents...) }

// IsGoal reports whether any pitcher holds exactly the goal quantity.
func (s State) IsGoal() bool {
	for _, c := range s.contents {
		if c == s.goal {
			return true
		}
	}
	return false
}

// LegalMoves lists empties, then fills, then pours. Pours are ordered by
// source and then target index.
func (s State) LegalMoves() []Move {
	n := len(s.capacities)
	moves := make([]Move, 0, n*(n+1))
	for i := 0; i < n; i++ {
		if s.contents[i] > 0 {
			moves = append(moves, Move{Kind: Empty, Source: i})
		}
	}
	for i := 0; i < n; i++ {
		if s.contents[i] < s.capacities[i] {
			moves = append(moves, Move{Kind: Fill, Source: i})
		}
	}
	for i := 0; i < n; i++ {
		if s.contents[i] == 0 {
			continue
		}
		for j := 0; j < n; j++ {
			if i != j && s.contents[j] < s.capacities[j] {
				moves = append(moves, Move{Kind: Pour, Source: i, Target: j})
			}
		}
	}
	return moves
}

func (s State) legal(m Move) bool {
	n := len(s.capacities)
	if m.Source < 0 || m.Source >= n {
		return false
	}
	switch m.Kind {
	case Empty:
		return s.contents[m.Source] > 0
	case Fill:
		return s.contents[m.Source] < s.capacities[m.Source]
	case Pour:
		return m.Target >= 0 && m.Target < n && m.Target != m.Source &&
			s.contents[m.Source] > 0 && s.contents[m.Target] < s.capacities[m.Target]
	}
	return false
}

// Apply returns the state after m. Moves not in LegalMoves fail with
// ErrIllegalMove.
func (s State) Apply(m Move) (State, error) {
	if !s.legal(m) {
		return State{}, fmt.Errorf("%w: %s from %s", search.ErrIllegalMove, m, s)
	}

	contents := append([]int(nil), s.contents...)
	switch m.Kind {
	case Empty:
		contents[m.Source] = 0
	case Fill:
		contents[m.Source] = s.capacities[m.Source]
	case Pour:
		amount := min(contents[m.Source], s.capacities[m.Target]-contents[m.Target])
		contents[m.Source] -= amount
		contents[m.Target] += amount
	}
	return State{goal: s.goal, capacities: s.capacities, contents: contents}, nil
}

// Key encodes goal, capacities, and contents as "goal|caps|contents".
func (s State) Key() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(s.goal))
	sb.WriteByte('|')
	writeInts(&sb, s.capacities)
	sb.WriteByte('|')
	writeInts(&sb, s.contents)
	return sb.String()
}

// Equal reports structural equality.
func (s State) Equal(other State) bool {
	return s.Key() == other.Key()
}

// String renders each pitcher as contents/capacity.
func (s State) String() string {
	parts := make([]string, len(s.capacities))
	for i := range s.capacities {
		parts[i] = fmt.Sprintf("%d/%d", s.contents[i], s.capacities[i])
	}
	return fmt.Sprintf("[%s] goal=%d", strings.Join(parts, " "), s.goal)
}

func writeInts(sb *strings.Builder, values []int) {
	for i, v := range values {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(v))
	}
}
