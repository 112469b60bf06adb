package search

import "container/heap"

// frontier holds generated but not yet expanded nodes.
type frontier[S State, A any] interface {
	push(n *node[S, A])
	pop() *node[S, A]
	len() int
}

// queue is a FIFO frontier.
type queue[S State, A any] struct {
	items []*node[S, A]
	head  int
}

func newQueue[S State, A any]() *queue[S, A] { return &queue[S, A]{} }

func (q *queue[S, A]) push(n *node[S, A]) { q.items = append(q.items, n) }

func (q *queue[S, A]) pop() *node[S, A] {
	n := q.items[q.head]
	q.items[q.head] = nil
	q.head++
	// Reclaim the consumed prefix once it dominates the slice.
	if q.head > 1024 && q.head*2 > len(q.items) {
		q.items = append([]*node[S, A](nil), q.items[q.head:]...)
		q.head = 0
	}
	return n
}

func (q *queue[S, A]) len() int { return len(q.items) - q.head }

// stack is a LIFO frontier.
type stack[S State, A any] struct {
	items []*node[S, A]
}

func newStack[S State, A any]() *stack[S, A] { return &stack[S, A]{} }

func (s *stack[S, A]) push(n *node[S, A]) { s.items = append(s.items, n) }

func (s *stack[S, A]) pop() *node[S, A] {
	last := len(s.items) - 1
	n := s.items[last]
	s.items[last] = nil
	s.items = s.items[:last]
	return n
}

func (s *stack[S, A]) len() int { return len(s.items) }

// prioritized orders nodes by priority, then by insertion sequence.
type prioritized[S State, A any] struct {
	node     *node[S, A]
	priority float64
	seq      int
}

type priorityQueue[S State, A any] []*prioritized[S, A]

func (pq priorityQueue[S, A]) Len() int { return len(pq) }

func (pq priorityQueue[S, A]) Less(i, j int) bool {
	if pq[i].priority != pq[j].priority {
		return pq[i].priority < pq[j].priority
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue[S, A]) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue[S, A]) Push(x any) { *pq = append(*pq, x.(*prioritized[S, A])) }

func (pq *priorityQueue[S, A]) Pop() any {
	old := *pq
	last := len(old) - 1
	item := old[last]
	old[last] = nil
	*pq = old[:last]
	return item
}

// costFrontier wraps priorityQueue with a monotonically increasing sequence.
type costFrontier[S State, A any] struct {
	pq  priorityQueue[S, A]
	seq int
}

func (f *costFrontier[S, A]) pushWithPriority(n *node[S, A], priority float64) {
	heap.Push(&f.pq, &prioritized[S, A]{node: n, priority: priority, seq: f.seq})
	f.seq++
}

func (f *costFrontier[S, A]) pop() *node[S, A] {
	return heap.Pop(&f.pq).(*prioritized[S, A]).node
}

func (f *costFrontier[S, A]) len() int { return f.pq.Len() }
