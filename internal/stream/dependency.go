package stream

import (
	"context"
	"slices"
	"strings"

	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	"github.com/specialistvlad/streamgrid/internal/graph"
	"golang.org/x/exp/maps"
)

// slot is an engine-local stream, converted to a global id once every
// engine's stream count is known.
type slot struct {
	engine string
	local  int64
}

func assignByDependency(ctx context.Context, g *graph.Graph, sc *Context) (Status, error) {
	logger := ctxlog.FromContext(ctx)
	slots := make(map[graph.SubgraphID]slot)

	for _, sg := range SubgraphsInOrder(g) {
		if sg.HasStream() || sg.Engine.SkipAssignStream {
			continue
		}
		if pred := reusablePredecessor(g, sc, sg, slots); pred != nil {
			slots[sg.ID] = slots[pred.ID]
			sg.ReusedSubgraph = pred.ID
			logger.Debug("Subgraph reuses predecessor stream.", "subgraph", sg.Name, "predecessor", pred.Name)
			continue
		}
		if len(sg.Inputs) > 0 {
			logger.Warn("No reusable predecessor found, opening a new stream.", "subgraph", sg.Name, "engine", sg.Engine.ID)
		}
		slots[sg.ID] = sc.newEngineStream(sg)
	}
	if len(slots) == 0 {
		return NotChanged, nil
	}

	engines := make(map[string]struct{})
	for _, s := range slots {
		engines[s.engine] = struct{}{}
	}
	order := maps.Keys(engines)
	slices.Sort(order)
	start := make(map[string]int64, len(order))
	for _, e := range order {
		start[e] = sc.NextStream
		sc.NextStream += sc.engineStreamNum[e]
	}
	for id, s := range slots {
		g.Subgraph(id).StreamID = start[s.engine] + s.local
	}
	return Changed, nil
}

// newEngineStream opens the next engine-local stream for sg, wrapping around
// at the subgraph's max parallel instances.
func (sc *Context) newEngineStream(sg *graph.Subgraph) slot {
	limit := int64(max(sg.MaxParallel, 1))
	key := sg.Engine.ID
	next := sc.engineNext[key]
	sc.engineNext[key] = next + 1
	local := next % limit
	if local+1 > sc.engineStreamNum[key] {
		sc.engineStreamNum[key] = local + 1
	}
	return slot{engine: key, local: local}
}

func reusablePredecessor(g *graph.Graph, sc *Context, sg *graph.Subgraph, slots map[graph.SubgraphID]slot) *graph.Subgraph {
	var candidates []*graph.Subgraph
	for _, pred := range g.PredecessorSubgraphs(sg) {
		if couldReuse(g, sc, pred, sg, slots) {
			candidates = append(candidates, pred)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return topPrioritySubgraph(sg, candidates)
}

func couldReuse(g *graph.Graph, sc *Context, pred, sg *graph.Subgraph, slots map[graph.SubgraphID]slot) bool {
	if _, ok := slots[pred.ID]; !ok {
		return false
	}
	if pred.Engine.SchedulerID != sg.Engine.SchedulerID {
		return false
	}
	if pred.Engine.Independent || pred.StreamLabel != "" {
		return false
	}
	if !sc.Options.MemoryPriority && !forcesAttach(g, sg) {
		for _, succ := range g.SuccessorSubgraphs(pred) {
			if succ.ID != sg.ID && succ.Engine.ID == pred.Engine.ID {
				return false
			}
		}
	}
	if sg.Engine.ID == pred.Engine.ID || sg.Engine.Attach {
		return true
	}
	for cur := pred; cur.ReusedSubgraph != graph.NoSubgraph; {
		cur = g.Subgraph(cur.ReusedSubgraph)
		if cur.Engine.ID == sg.Engine.ID {
			return true
		}
	}
	return false
}

func forcesAttach(g *graph.Graph, sg *graph.Subgraph) bool {
	for _, id := range sg.Nodes {
		if g.Node(id).BoolAttr(graph.AttrForceAttach) {
			return true
		}
	}
	return false
}

// topPrioritySubgraph prefers a candidate on sg's own engine, then the
// lexically smallest name.
func topPrioritySubgraph(sg *graph.Subgraph, candidates []*graph.Subgraph) *graph.Subgraph {
	rank := func(c *graph.Subgraph) int {
		if c.Engine.ID == sg.Engine.ID {
			return 0
		}
		return 1
	}
	return slices.MinFunc(candidates, func(a, b *graph.Subgraph) int {
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra - rb
		}
		return strings.Compare(a.Name, b.Name)
	})
}
