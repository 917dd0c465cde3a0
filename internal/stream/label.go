package stream

import (
	"context"
	"slices"

	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/specialistvlad/streamgrid/internal/graph"
)

// SubgraphsInOrder returns the subgraphs ordered by their earliest node.
func SubgraphsInOrder(g *graph.Graph) []*graph.Subgraph {
	sgs := slices.Clone(g.Subgraphs())
	first := make(map[graph.SubgraphID]int64, len(sgs))
	for _, sg := range sgs {
		lowest := int64(-1)
		for _, id := range sg.Nodes {
			if t := g.Node(id).TopoID; lowest < 0 || t < lowest {
				lowest = t
			}
		}
		first[sg.ID] = lowest
	}
	slices.SortStableFunc(sgs, func(a, b *graph.Subgraph) int {
		if first[a.ID] != first[b.ID] {
			if first[a.ID] < first[b.ID] {
				return -1
			}
			return 1
		}
		return int(a.ID - b.ID)
	})
	return sgs
}

func assignByLabel(ctx context.Context, g *graph.Graph, sc *Context) (Status, error) {
	logger := ctxlog.FromContext(ctx)
	status := NotChanged
	for _, sg := range SubgraphsInOrder(g) {
		if sg.StreamLabel == "" || sg.HasStream() || sg.Engine.Independent {
			continue
		}
		id, ok := sc.labelStreams[sg.StreamLabel]
		if !ok {
			id = sc.newStream()
			sc.labelStreams[sg.StreamLabel] = id
		}
		sg.StreamID = id
		status = Changed
		logger.Debug("Subgraph placed by stream label.", "subgraph", sg.Name, "label", sg.StreamLabel, "stream", id)
	}
	return status, nil
}

func assignIndependent(ctx context.Context, g *graph.Graph, sc *Context) (Status, error) {
	logger := ctxlog.FromContext(ctx)
	status := NotChanged
	for _, sg := range SubgraphsInOrder(g) {
		if !sg.Engine.Independent || sg.HasStream() {
			continue
		}
		byLabel, ok := sc.independent[sg.Engine.ID]
		if !ok {
			byLabel = make(map[string]int64)
			sc.independent[sg.Engine.ID] = byLabel
		}
		id, ok := byLabel[sg.StreamLabel]
		if !ok {
			id = sc.newStream()
			byLabel[sg.StreamLabel] = id
		}
		sg.StreamID = id
		status = Changed
		logger.Debug("Subgraph placed on independent stream.", "subgraph", sg.Name, "engine", sg.Engine.ID, "stream", id)
	}
	return status, nil
}

func assignSingleStream(ctx context.Context, g *graph.Graph, sc *Context) (Status, error) {
	target := int64(0)
	if sc.nested() {
		target = sc.DefaultStream
	}
	for _, sg := range g.Subgraphs() {
		if sg.StreamLabel != "" {
			return NotChanged, cerror.ErrLabelInSingleStream.GenWithStackByArgs(sg.Name, sg.StreamLabel)
		}
	}
	status := NotChanged
	for _, sg := range g.Subgraphs() {
		if sg.HasStream() || sg.Engine.SkipAssignStream {
			continue
		}
		sg.StreamID = target
		status = Changed
	}
	if !sc.nested() && sc.NextStream <= target {
		sc.NextStream = target + 1
	}
	ctxlog.FromContext(ctx).Debug("Single stream mode, every subgraph placed on one stream.", "stream", target)
	return status, nil
}
