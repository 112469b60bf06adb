package pitchers

import (
	"errors"
	"reflect"
	"testing"

	"github.com/wricardo/puzzle-search/game/search"
)

func solve(t *testing.T, s State) (*search.Result[Move], error) {
	t.Helper()
	return search.BreadthFirst[State, Move](NewProblem(s))
}

func TestBreadthFirst_FourFromFiveAndThree(t *testing.T) {
	start := mustState(t, 4, 5, 3, 0, 0)
	result, err := solve(t, start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"f:0", "p:0:1", "e:1", "p:0:1", "f:0", "p:0:1"}
	if got := FormatMoves(result.Actions); !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}

	final, err := Replay(start, result.Actions)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !reflect.DeepEqual(final.Contents(), []int{4, 3}) {
		t.Errorf("Expected final contents [4 3], got %v", final.Contents())
	}
}

func TestBreadthFirst_AlreadyAtGoal(t *testing.T) {
	result, err := solve(t, mustState(t, 3, 5, 3, 0, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Actions) != 0 {
		t.Errorf("Expected empty plan, got %v", FormatMoves(result.Actions))
	}
}

func TestBreadthFirst_NoSolution(t *testing.T) {
	for _, numbers := range [][]int{{3, 2, 4, 0, 0}, {5, 2, 4, 0, 0}} {
		_, err := solve(t, mustState(t, numbers...))
		if !errors.Is(err, search.ErrNoSolution) {
			t.Errorf("%v: expected ErrNoSolution, got %v", numbers, err)
		}
	}
}

// nearestGoal enumerates every state reachable from start with a plain BFS
// and returns the smallest depth of a goal state, or -1.
func nearestGoal(start State) int {
	depth := map[string]int{start.Key(): 0}
	queue := []State{start}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if s.IsGoal() {
			return depth[s.Key()]
		}
		for _, m := range s.LegalMoves() {
			next, _ := s.Apply(m)
			if _, ok := depth[next.Key()]; ok {
				continue
			}
			depth[next.Key()] = depth[s.Key()] + 1
			queue = append(queue, next)
		}
	}
	return -1
}

func TestBreadthFirst_ShortestAgainstEnumeration(t *testing.T) {
	caps := []int{5, 3}
	for goal := 0; goal <= 6; goal++ {
		start, err := NewState(goal, caps, []int{0, 0})
		if err != nil {
			t.Fatalf("NewState: %v", err)
		}
		want := nearestGoal(start)

		result, err := solve(t, start)
		if want == -1 {
			if !errors.Is(err, search.ErrNoSolution) {
				t.Errorf("goal %d: expected ErrNoSolution, got %v", goal, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("goal %d: unexpected error: %v", goal, err)
		}
		if len(result.Actions) != want {
			t.Errorf("goal %d: expected %d actions, got %d", goal, want, len(result.Actions))
		}
	}
}

func TestBreadthFirst_CatalogReplays(t *testing.T) {
	for _, in := range Catalog {
		t.Run(in.Name, func(t *testing.T) {
			start := mustState(t, in.Numbers...)
			result, err := solve(t, start)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			final, err := Replay(start, result.Actions)
			if err != nil {
				t.Fatalf("Replay: %v", err)
			}
			if !final.IsGoal() {
				t.Errorf("Plan %v ends at %s", FormatMoves(result.Actions), final)
			}
		})
	}
}

func TestBreadthFirst_CycleSafety(t *testing.T) {
	start := mustState(t, 1, 2, 4, 0, 0)
	problem := NewProblem(start)
	_, err := search.BreadthFirst[State, Move](problem, search.WithMaxExpansions(1000))
	if !errors.Is(err, search.ErrNoSolution) {
		t.Fatalf("Expected ErrNoSolution well inside the budget, got %v", err)
	}
}

func TestAStar_MatchesBreadthFirst(t *testing.T) {
	start := mustState(t, 1, 3, 8, 12, 0, 0, 0)
	breadth, err := solve(t, start)
	if err != nil {
		t.Fatalf("BFS: %v", err)
	}
	astar, err := search.AStar[State, Move](NewProblem(start), Heuristic)
	if err != nil {
		t.Fatalf("A*: %v", err)
	}
	if len(astar.Actions) != len(breadth.Actions) {
		t.Errorf("A* found %d actions, BFS found %d", len(astar.Actions), len(breadth.Actions))
	}
}
