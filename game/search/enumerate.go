package search

// Enumerate walks the state space reachable from the problem's start in
// breadth-first order, with the same visited-on-generation policy as
// BreadthFirst but without stopping at goals. visit is called once per
// distinct state, the start included. With a positive limit the walk stops
// admitting new states once limit have been seen.
//
// It returns the number of distinct states seen and whether any were left
// out because of the limit.
func Enumerate[S State, A any](problem Problem[S, A], limit int, visit func(S)) (int, bool) {
	start := problem.StartState()
	fringe := newQueue[S, A]()
	fringe.push(&node[S, A]{state: start})
	visited := map[string]struct{}{start.Key(): {}}
	truncated := false

	for fringe.len() > 0 {
		current := fringe.pop()
		if visit != nil {
			visit(current.state)
		}

		for _, succ := range problem.Successors(current.state) {
			key := succ.State.Key()
			if _, seen := visited[key]; seen {
				continue
			}
			if limit > 0 && len(visited) >= limit {
				truncated = true
				continue
			}
			visited[key] = struct{}{}
			// Only the state is needed, so the child carries no parent link.
			fringe.push(&node[S, A]{state: succ.State})
		}
	}
	return len(visited), truncated
}
