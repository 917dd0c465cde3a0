package stream

import (
	"context"
	"slices"

	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	"github.com/specialistvlad/streamgrid/internal/graph"
)

// labelOf returns the effective stream label of a node: its subgraph's
// label, falling back to the node attribute.
func labelOf(g *graph.Graph, n *graph.Node) string {
	if n.Subgraph != graph.NoSubgraph {
		if l := g.Subgraph(n.Subgraph).StreamLabel; l != "" {
			return l
		}
	}
	return n.StreamLabel()
}

func allReduceParallel(ctx context.Context, g *graph.Graph, sc *Context) (Status, error) {
	logger := ctxlog.FromContext(ctx)
	status := NotChanged
	for _, n := range g.TopoOrder() {
		if n.Type != graph.TypeHcomAllReduce || !n.HasStream() {
			continue
		}
		if fusion, ok := n.IntAttr(graph.AttrFusion); !ok || fusion <= 0 {
			continue
		}
		label := labelOf(g, n)
		if label != "" {
			continue
		}

		var succs []*graph.Node
		for id := range g.ReachableFrom(n.ID, true) {
			s := g.Node(id)
			if s.HasStream() && labelOf(g, s) == label {
				succs = append(succs, s)
			}
		}
		slices.SortFunc(succs, func(a, b *graph.Node) int { return int(a.TopoID - b.TopoID) })

		moved := make(map[int64]int64)
		for _, s := range succs {
			to, ok := moved[s.StreamID]
			if !ok {
				to = sc.newStream()
				moved[s.StreamID] = to
			}
			s.StreamID = to
			status = Changed
		}
		if len(succs) > 0 {
			logger.Debug("All-reduce consumers moved to parallel streams.", "node", n.Name, "moved", len(succs), "streams", len(moved))
		}
	}
	return status, nil
}
