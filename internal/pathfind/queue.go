package pathfind

import "container/heap"

// searchState is one node on the A* open set: a stop reached with some
// elapsed time and accumulated penalty, plus the path prefix that got
// it there. Nodes are transient and owned solely by one Search call
// (spec.md §3: "no sharing across requests").
type searchState struct {
	stopID string

	elapsed   int     // minutes since the query instant, real clock
	waitAccum int     // cumulative boarding wait absorbed so far
	penalty   float64 // accumulated non-time penalty

	g float64
	f float64

	path []Step

	seq   int // insertion order, for deterministic tie-breaking
	index int // heap.Interface bookkeeping
}

// priorityQueue implements heap.Interface keyed on f, tie-broken on
// insertion order (spec.md §9: "tie-break on insertion order to keep
// determinism").
type priorityQueue []*searchState

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	s := x.(*searchState)
	s.index = len(*pq)
	*pq = append(*pq, s)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	s := old[n-1]
	old[n-1] = nil
	s.index = -1
	*pq = old[:n-1]
	return s
}

var _ heap.Interface = (*priorityQueue)(nil)
