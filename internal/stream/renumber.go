package stream

import (
	"slices"

	"github.com/specialistvlad/streamgrid/internal/graph"
)

// RenumberStreams compacts every live node stream id onto 0..N-1 in
// ascending order and sets sc.NextStream to N. Subgraph streams and
// activation lists follow the same mapping. Running it on an already compact
// assignment changes nothing.
func RenumberStreams(g *graph.Graph, sc *Context) Status {
	live := make(map[int64]struct{})
	for _, n := range g.Nodes() {
		if n.HasStream() {
			live[n.StreamID] = struct{}{}
		}
	}
	ids := make([]int64, 0, len(live))
	for id := range live {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	mapping := make(map[int64]int64, len(ids))
	status := NotChanged
	for i, id := range ids {
		mapping[id] = int64(i)
		if id != int64(i) {
			status = Changed
		}
	}
	sc.NextStream = int64(len(ids))

	if status == Changed {
		for _, n := range g.Nodes() {
			if n.HasStream() {
				n.StreamID = mapping[n.StreamID]
			}
			for i, s := range n.ActiveStreams {
				if to, ok := mapping[int64(s)]; ok {
					n.ActiveStreams[i] = uint32(to)
				}
			}
		}
	}
	// A subgraph whose stream lost every node drops it even when the live
	// ids are already compact.
	for _, sg := range g.Subgraphs() {
		if !sg.HasStream() {
			continue
		}
		to, ok := mapping[sg.StreamID]
		if !ok {
			to = graph.UnassignedStream
		}
		if to != sg.StreamID {
			sg.StreamID = to
			status = Changed
		}
	}
	return status
}

// SetActiveStreamLists records, on every stream-activation node, the
// streams its successors run on other than its own.
func SetActiveStreamLists(g *graph.Graph) Status {
	status := NotChanged
	for _, n := range g.Nodes() {
		if n.Type != graph.TypeStreamActive {
			continue
		}
		streams := make(map[int64]struct{})
		for _, id := range g.Successors(n.ID) {
			s := g.Node(id)
			if s.HasStream() && s.StreamID != n.StreamID {
				streams[s.StreamID] = struct{}{}
			}
		}
		list := make([]uint32, 0, len(streams))
		for s := range streams {
			list = append(list, uint32(s))
		}
		slices.Sort(list)
		if !slices.Equal(list, n.ActiveStreams) {
			n.ActiveStreams = list
			status = Changed
		}
	}
	return status
}
