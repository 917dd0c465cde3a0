package graph

// ReachableFrom returns the set of nodes reachable from start by following
// outgoing edges, start excluded. When skipBackEdges is set, loop-closing
// edges are not followed.
func (g *Graph) ReachableFrom(start NodeID, skipBackEdges bool) map[NodeID]struct{} {
	seen := make(map[NodeID]struct{})
	queue := []NodeID{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range g.out[id] {
			if skipBackEdges && e.BackEdge {
				continue
			}
			if _, ok := seen[e.To]; ok {
				continue
			}
			seen[e.To] = struct{}{}
			queue = append(queue, e.To)
		}
	}
	delete(seen, start)
	return seen
}

// Reaches reports whether `to` is reachable from `from` without crossing a
// back edge. The search is pruned by topological id, which is monotonic
// along forward edges.
func (g *Graph) Reaches(from, to NodeID) bool {
	if from == to {
		return true
	}
	limit := g.nodes[to].TopoID
	seen := map[NodeID]struct{}{from: {}}
	stack := []NodeID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.out[id] {
			if e.BackEdge {
				continue
			}
			if e.To == to {
				return true
			}
			if _, ok := seen[e.To]; ok || g.nodes[e.To].TopoID > limit {
				continue
			}
			seen[e.To] = struct{}{}
			stack = append(stack, e.To)
		}
	}
	return false
}
