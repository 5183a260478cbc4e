package dag

import (
	"container/heap"
	"fmt"
	"slices"
	"sync"
)

// Graph holds step IDs and the dependencies between them. It is safe for
// concurrent use.
type Graph struct {
	mu    sync.RWMutex
	index map[string]int
	// ids, deps and dependents are indexed by insertion position.
	ids        []string
	deps       [][]int
	dependents [][]int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{index: make(map[string]int)}
}

// AddNode adds id to the graph. Adding an existing ID is a no-op.
func (g *Graph) AddNode(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.index[id]; ok {
		return
	}
	g.index[id] = len(g.ids)
	g.ids = append(g.ids, id)
	g.deps = append(g.deps, nil)
	g.dependents = append(g.dependents, nil)
}

// Has reports whether id was added.
func (g *Graph) Has(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.index[id]
	return ok
}

// AddEdge records that to depends on from. Both nodes must exist. Adding
// the same edge twice has no further effect.
func (g *Graph) AddEdge(from, to string) error {
	if from == to {
		return fmt.Errorf("step %s cannot depend on itself", from)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	f, ok := g.index[from]
	if !ok {
		return fmt.Errorf("unknown dependency %s of step %s", from, to)
	}
	t, ok := g.index[to]
	if !ok {
		return fmt.Errorf("unknown step %s", to)
	}
	if slices.Contains(g.deps[t], f) {
		return nil
	}
	g.deps[t] = append(g.deps[t], f)
	g.dependents[f] = append(g.dependents[f], t)
	return nil
}

// TopologicalOrder lists every ID after all of its dependencies. Ties go
// to the node added first.
func (g *Graph) TopologicalOrder() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	pending := make([]int, len(g.ids))
	ready := &minQueue{}
	for i := range g.ids {
		pending[i] = len(g.deps[i])
		if pending[i] == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]string, 0, len(g.ids))
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		out = append(out, g.ids[i])
		for _, d := range g.dependents[i] {
			if pending[d]--; pending[d] == 0 {
				heap.Push(ready, d)
			}
		}
	}

	if len(out) < len(g.ids) {
		for i, n := range pending {
			if n > 0 {
				return nil, fmt.Errorf("dependency cycle through step %s", g.ids[i])
			}
		}
	}
	return out, nil
}

// Descendants returns the IDs that depend on id directly or through other
// steps, in insertion order.
func (g *Graph) Descendants(id string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	start, ok := g.index[id]
	if !ok {
		return nil, fmt.Errorf("unknown step %s", id)
	}

	reached := make([]bool, len(g.ids))
	stack := slices.Clone(g.dependents[start])
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[i] {
			continue
		}
		reached[i] = true
		stack = append(stack, g.dependents[i]...)
	}

	var out []string
	for i, ok := range reached {
		if ok {
			out = append(out, g.ids[i])
		}
	}
	return out, nil
}

// minQueue is a heap of insertion positions.
type minQueue []int

func (q minQueue) Len() int           { return len(q) }
func (q minQueue) Less(i, j int) bool { return q[i] < q[j] }
func (q minQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *minQueue) Push(x any)        { *q = append(*q, x.(int)) }
func (q *minQueue) Pop() any {
	old := *q
	x := old[len(old)-1]
	*q = old[:len(old)-1]
	return x
}
