package stream

import (
	"context"

	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/specialistvlad/streamgrid/internal/graph"
)

func nodeStreamUpdate(g *graph.Graph) (Status, error) {
	status := NotChanged
	for _, sg := range g.Subgraphs() {
		if !sg.HasStream() {
			if sg.Engine.SkipAssignStream {
				continue
			}
			return NotChanged, cerror.ErrStreamUnassigned.GenWithStackByArgs("subgraph", sg.Name)
		}
		for _, id := range sg.Nodes {
			n := g.Node(id)
			if n.StreamID != sg.StreamID {
				n.StreamID = sg.StreamID
				status = Changed
			}
		}
	}
	return status, nil
}

// groupReuseSentinel asks a grouped node to stay on its single producer's
// stream instead of opening one.
const groupReuseSentinel = "-1"

type groupKey struct {
	stream int64
	value  string
}

// updateForGroup gives every distinct value of attr, within one prior
// stream, a stream of its own.
func updateForGroup(ctx context.Context, g *graph.Graph, sc *Context, attr string) (Status, error) {
	logger := ctxlog.FromContext(ctx)
	streams := make(map[groupKey]int64)
	status := NotChanged

	for _, n := range g.TopoOrder() {
		value, ok := n.StringAttr(attr)
		if !ok || value == "" || !n.HasStream() {
			continue
		}
		if value == groupReuseSentinel {
			inputs := g.DataInputs(n.ID)
			if len(inputs) != 1 {
				continue
			}
			if producer := g.Node(inputs[0]); producer.HasStream() && producer.StreamID != n.StreamID {
				logger.Debug("Grouped node follows its producer stream.", "node", n.Name, "stream", producer.StreamID)
				n.StreamID = producer.StreamID
				status = Changed
			}
			continue
		}
		key := groupKey{stream: n.StreamID, value: value}
		id, ok := streams[key]
		if !ok {
			id = sc.newStream()
			streams[key] = id
		}
		logger.Debug("Grouped node moved to group stream.", "node", n.Name, "attr", attr, "group", value, "stream", id)
		n.StreamID = id
		status = Changed
	}
	return status, nil
}

func updateForSkippedEngine(ctx context.Context, g *graph.Graph, sc *Context) (Status, error) {
	logger := ctxlog.FromContext(ctx)
	status := NotChanged
	for _, n := range g.TopoOrder() {
		e := g.Engine(n)
		if e == nil || !e.SkipAssignStream {
			continue
		}
		if allPredecessorsUnassigned(g, n) {
			if n.HasStream() {
				n.StreamID = graph.UnassignedStream
				status = Changed
			}
			logger.Debug("Pass-through node has no assigned predecessor, left without stream.", "node", n.Name)
			continue
		}
		if s, ok := sharedNeighborStream(g, n); ok {
			if n.StreamID != s {
				n.StreamID = s
				status = Changed
			}
			continue
		}
		n.StreamID = sc.newStream()
		status = Changed
		logger.Debug("Pass-through node neighbors disagree, opened a new stream.", "node", n.Name, "stream", n.StreamID)
	}
	return status, nil
}

func allPredecessorsUnassigned(g *graph.Graph, n *graph.Node) bool {
	for _, id := range g.Predecessors(n.ID) {
		if g.Node(id).HasStream() {
			return false
		}
	}
	return true
}

// sharedNeighborStream returns the one stream every assigned neighbor of n
// lives on.
func sharedNeighborStream(g *graph.Graph, n *graph.Node) (int64, bool) {
	found := graph.UnassignedStream
	neighbors := append(g.Predecessors(n.ID), g.Successors(n.ID)...)
	for _, id := range neighbors {
		m := g.Node(id)
		if !m.HasStream() {
			continue
		}
		if found == graph.UnassignedStream {
			found = m.StreamID
		} else if found != m.StreamID {
			return 0, false
		}
	}
	return found, found != graph.UnassignedStream
}
