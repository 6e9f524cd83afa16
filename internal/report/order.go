package report

import (
	"container/heap"
	"sort"
)

// formulaNode is one calculated row in the formula pass.
type formulaNode struct {
	index int // template index
	rowID int
	deps  []string
}

type nodeHeap []*formulaNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].rowID != h[j].rowID {
		return h[i].rowID < h[j].rowID
	}
	return h[i].index < h[j].index
}
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(*formulaNode)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}

// formulaOrder sorts calculated rows so every row comes after the calculated
// rows it references, lowest row_id first among ready rows. provider maps a
// dependency name to the template index that resolves it, or -1. Rows caught
// in a cycle are appended in row_id order and returned in cyclic.
func formulaOrder(nodes []*formulaNode, provider func(name string) int) (ordered []*formulaNode, cyclic []int) {
	byIndex := make(map[int]*formulaNode, len(nodes))
	for _, n := range nodes {
		byIndex[n.index] = n
	}

	indegree := make(map[*formulaNode]int, len(nodes))
	dependents := make(map[*formulaNode][]*formulaNode, len(nodes))
	for _, n := range nodes {
		seen := map[*formulaNode]bool{}
		for _, name := range n.deps {
			dep, ok := byIndex[provider(name)]
			if !ok || dep == n || seen[dep] {
				continue
			}
			seen[dep] = true
			indegree[n]++
			dependents[dep] = append(dependents[dep], n)
		}
	}

	ready := &nodeHeap{}
	for _, n := range nodes {
		if indegree[n] == 0 {
			heap.Push(ready, n)
		}
	}

	done := make(map[*formulaNode]bool, len(nodes))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(*formulaNode)
		done[n] = true
		ordered = append(ordered, n)
		for _, d := range dependents[n] {
			indegree[d]--
			if indegree[d] == 0 {
				heap.Push(ready, d)
			}
		}
	}

	if len(ordered) == len(nodes) {
		return ordered, nil
	}

	var rest []*formulaNode
	for _, n := range nodes {
		if !done[n] {
			rest = append(rest, n)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].rowID < rest[j].rowID })
	for _, n := range rest {
		ordered = append(ordered, n)
		cyclic = append(cyclic, n.rowID)
	}
	return ordered, cyclic
}
