package search

// State is an immutable puzzle configuration. Two states with equal keys are the
// same configuration regardless of identity.
type State interface {
	Key() string
}

// Successor is one outgoing transition of a state.
type Successor[S State, A any] struct {
	State  S
	Action A
	Cost   float64
}

// Problem binds a state universe to search semantics. Implementations must be
// read-only for the duration of a search.
type Problem[S State, A any] interface {
	StartState() S
	IsGoal(state S) bool
	// Successors must enumerate transitions in a deterministic order.
	Successors(state S) []Successor[S, A]
	CostOfActions(actions []A) float64
}

// Heuristic estimates the remaining cost from a state to the nearest goal.
type Heuristic[S State] func(state S) float64

// ZeroHeuristic turns AStar into UniformCost.
func ZeroHeuristic[S State](S) float64 { return 0 }

// Strategy names a search algorithm.
type Strategy string

const (
	StrategyBFS   Strategy = "bfs"
	StrategyDFS   Strategy = "dfs"
	StrategyUCS   Strategy = "ucs"
	StrategyAStar Strategy = "astar"
)

// Strategies lists every supported strategy in a stable order.
var Strategies = []Strategy{StrategyBFS, StrategyDFS, StrategyUCS, StrategyAStar}

// ParseStrategy resolves a strategy name. The empty string selects BFS.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case "":
		return StrategyBFS, nil
	case StrategyBFS, StrategyDFS, StrategyUCS, StrategyAStar:
		return Strategy(name), nil
	}
	return "", unknownStrategy(name)
}

// Result is the outcome of a successful search.
type Result[A any] struct {
	Actions   []A     `json:"actions"`
	Cost      float64 `json:"cost"`
	Expanded  int     `json:"expanded"`
	Generated int     `json:"generated"`
}

// Stats is a snapshot of search progress handed to observers.
type Stats struct {
	Expanded     int
	Generated    int
	FrontierSize int
	Depth        int
}

// node is the engine-internal search node. Paths are rebuilt from parent links
// only when a goal is found.
type node[S State, A any] struct {
	state  S
	parent *node[S, A]
	action A
	depth  int
	cost   float64
}

func (n *node[S, A]) extend(succ Successor[S, A]) *node[S, A] {
	return &node[S, A]{
		state:  succ.State,
		parent: n,
		action: succ.Action,
		depth:  n.depth + 1,
		cost:   n.cost + succ.Cost,
	}
}

// path returns the actions from the root to n. The root yields an empty, non-nil slice.
func (n *node[S, A]) path() []A {
	actions := make([]A, n.depth)
	for cur := n; cur.parent != nil; cur = cur.parent {
		actions[cur.depth-1] = cur.action
	}
	return actions
}
