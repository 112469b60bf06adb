package search

import "fmt"

// BreadthFirst searches the shallowest nodes first. States are marked visited when
// generated, and the goal test runs on generation, so with unit costs the returned
// path has the fewest actions of any path to a goal.
func BreadthFirst[S State, A any](problem Problem[S, A], opts ...Option) (*Result[A], error) {
	return graphSearch(problem, newQueue[S, A](), buildOptions(opts))
}

// DepthFirst searches the deepest nodes first. It shares the visited policy of
// BreadthFirst and terminates on finite state spaces, but paths are not shortest.
func DepthFirst[S State, A any](problem Problem[S, A], opts ...Option) (*Result[A], error) {
	return graphSearch(problem, newStack[S, A](), buildOptions(opts))
}

// UniformCost expands nodes in order of cumulative step cost.
func UniformCost[S State, A any](problem Problem[S, A], opts ...Option) (*Result[A], error) {
	return bestFirst(problem, ZeroHeuristic[S], buildOptions(opts))
}

// AStar expands nodes in order of cumulative cost plus heuristic estimate. An
// admissible heuristic yields a cost-optimal path.
func AStar[S State, A any](problem Problem[S, A], heuristic Heuristic[S], opts ...Option) (*Result[A], error) {
	if heuristic == nil {
		heuristic = ZeroHeuristic[S]
	}
	return bestFirst(problem, heuristic, buildOptions(opts))
}

// Solve dispatches to the named strategy. The heuristic is only used by A*.
func Solve[S State, A any](problem Problem[S, A], strategy Strategy, heuristic Heuristic[S], opts ...Option) (*Result[A], error) {
	switch strategy {
	case StrategyBFS, "":
		return BreadthFirst(problem, opts...)
	case StrategyDFS:
		return DepthFirst(problem, opts...)
	case StrategyUCS:
		return UniformCost(problem, opts...)
	case StrategyAStar:
		return AStar(problem, heuristic, opts...)
	}
	return nil, unknownStrategy(string(strategy))
}

func graphSearch[S State, A any](problem Problem[S, A], fringe frontier[S, A], o options) (*Result[A], error) {
	start := problem.StartState()
	if problem.IsGoal(start) {
		return &Result[A]{Actions: []A{}}, nil
	}

	fringe.push(&node[S, A]{state: start})
	visited := map[string]struct{}{start.Key(): {}}
	expanded, generated := 0, 0

	for fringe.len() > 0 {
		if err := o.cancelled(expanded); err != nil {
			return nil, err
		}
		if o.exhausted(expanded) {
			return nil, fmt.Errorf("%w: %d nodes expanded", ErrBudgetExceeded, expanded)
		}

		current := fringe.pop()
		expanded++

		for _, succ := range problem.Successors(current.state) {
			key := succ.State.Key()
			if _, seen := visited[key]; seen {
				continue
			}
			visited[key] = struct{}{}
			generated++

			child := current.extend(succ)
			if problem.IsGoal(child.state) {
				actions := child.path()
				return &Result[A]{
					Actions:   actions,
					Cost:      problem.CostOfActions(actions),
					Expanded:  expanded,
					Generated: generated,
				}, nil
			}
			fringe.push(child)
		}

		o.notify(Stats{
			Expanded:     expanded,
			Generated:    generated,
			FrontierSize: fringe.len(),
			Depth:        current.depth,
		})
	}

	return nil, ErrNoSolution
}

// bestFirst runs the goal test on expansion and reopens a state whenever a
// cheaper path to it is generated.
func bestFirst[S State, A any](problem Problem[S, A], heuristic Heuristic[S], o options) (*Result[A], error) {
	start := problem.StartState()
	fringe := &costFrontier[S, A]{}
	fringe.pushWithPriority(&node[S, A]{state: start}, heuristic(start))
	best := map[string]float64{start.Key(): 0}
	expanded, generated := 0, 0

	for fringe.len() > 0 {
		current := fringe.pop()
		if current.cost > best[current.state.Key()] {
			continue
		}

		if problem.IsGoal(current.state) {
			return &Result[A]{
				Actions:   current.path(),
				Cost:      current.cost,
				Expanded:  expanded,
				Generated: generated,
			}, nil
		}

		if err := o.cancelled(expanded); err != nil {
			return nil, err
		}
		if o.exhausted(expanded) {
			return nil, fmt.Errorf("%w: %d nodes expanded", ErrBudgetExceeded, expanded)
		}
		expanded++

		for _, succ := range problem.Successors(current.state) {
			g := current.cost + succ.Cost
			key := succ.State.Key()
			if old, ok := best[key]; ok && g >= old {
				continue
			}
			best[key] = g
			generated++
			fringe.pushWithPriority(current.extend(succ), g+heuristic(succ.State))
		}

		o.notify(Stats{
			Expanded:     expanded,
			Generated:    generated,
			FrontierSize: fringe.len(),
			Depth:        current.depth,
		})
	}

	return nil, ErrNoSolution
}
