package syncplan

import "github.com/specialistvlad/streamgrid/internal/graph"

type branchKey struct {
	group string
	index int64
}

// branchOf returns the branch arm a sync lives in, if both of its endpoints
// belong to the same arm.
func branchOf(g *graph.Graph, s *Sync) (branchKey, bool) {
	from, ok := nodeBranch(g.Node(s.From))
	if !ok {
		return branchKey{}, false
	}
	to, ok := nodeBranch(g.Node(s.To))
	if !ok || to != from {
		return branchKey{}, false
	}
	return from, true
}

func nodeBranch(n *graph.Node) (branchKey, bool) {
	group, ok := n.StringAttr(graph.AttrBranchGroup)
	if !ok || group == "" {
		return branchKey{}, false
	}
	index, ok := n.IntAttr(graph.AttrBranchIndex)
	if !ok {
		return branchKey{}, false
	}
	return branchKey{group: group, index: index}, true
}
