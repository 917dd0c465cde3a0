// Package split refines a stream plan after code generation, once the real
// number of tasks per node is known. A logical stream whose task total would
// overflow the hardware limit is cut into several physical streams joined by
// events.
package split

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/streamgrid/internal/capability"
	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/specialistvlad/streamgrid/internal/graph"
)

// traceTasksPerNode is reserved on every node when task tracing is on.
const traceTasksPerNode = 2

// Options configure one split run.
type Options struct {
	// Class is the requested stream class, normal when empty.
	Class      string
	TraceTasks bool
	// Materialize joins the halves of a split stream with explicit Send and
	// Recv nodes, matching a graph whose syncs were already materialized.
	Materialize bool
}

// Result describes what the splitter did.
type Result struct {
	// Class is the stream class whose limits were applied.
	Class        string
	Limits       capability.Limits
	Splits       int
	TotalStreams int64
	EventCount   int
}

// unit is a run of nodes that must stay on one physical stream.
type unit struct {
	nodes  []*graph.Node
	weight int
}

// Split cuts overflowing streams. totalStreams and events are the stream and
// event totals so far; new streams and events are numbered after them.
func Split(ctx context.Context, g *graph.Graph, q capability.Querier, totalStreams int64, events int, opts Options) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("graph", g.Name)

	class, limits, err := query(ctx, q, opts.Class)
	if err != nil {
		return nil, err
	}
	if totalStreams > int64(limits.MaxStreams) {
		return nil, cerror.ErrStreamCapacity.GenWithStackByArgs(totalStreams, limits.MaxStreams)
	}
	res := &Result{Class: class, Limits: limits, TotalStreams: totalStreams, EventCount: events}

	origin := make(map[graph.NodeID]int64, g.NodeCount())
	byStream := make(map[int64][]*graph.Node)
	for _, n := range g.TopoOrder() {
		origin[n.ID] = n.StreamID
		if n.HasStream() && !graph.IsSyncNode(n) {
			byStream[n.StreamID] = append(byStream[n.StreamID], n)
		}
	}
	streams := make([]int64, 0, len(byStream))
	for s := range byStream {
		streams = append(streams, s)
	}
	slices.Sort(streams)

	j := &joiner{g: g, res: res, origin: origin, materialize: opts.Materialize, topo: g.NextTopoID()}
	derived := make(map[int64][]int64, len(streams))
	for _, s := range streams {
		derived[s] = []int64{s}
		current := s
		acc := 0
		var last *graph.Node
		for _, u := range units(byStream[s], opts.TraceTasks) {
			if u.weight > limits.MaxTasks {
				return nil, cerror.ErrTaskCapacity.GenWithStackByArgs(u.nodes[0].Name, u.weight, limits.MaxTasks)
			}
			if acc > 0 && acc+u.weight > limits.MaxTasks {
				current = res.TotalStreams
				res.TotalStreams++
				if res.TotalStreams > int64(limits.MaxStreams) {
					return nil, cerror.ErrStreamCapacity.GenWithStackByArgs(res.TotalStreams, limits.MaxStreams)
				}
				derived[s] = append(derived[s], current)
				if err := j.join(last, u.nodes[0], s, current); err != nil {
					return nil, err
				}
				res.Splits++
				logger.Debug("Stream split.", "stream", s, "new_stream", current, "at", u.nodes[0].Name, "tasks_before", acc)
				acc = 0
			}
			for _, n := range u.nodes {
				move(n, s, current)
			}
			acc += u.weight
			last = u.nodes[len(u.nodes)-1]
		}
	}

	if res.Splits > 0 {
		followAnchors(g, origin)
		rewriteActiveStreams(g, derived)
	}
	logger.Info("Stream split finished.", "class", class, "splits", res.Splits, "total_streams", res.TotalStreams)
	return res, nil
}

// query asks for the limits of class and falls back to the huge class once.
func query(ctx context.Context, q capability.Querier, class string) (string, capability.Limits, error) {
	if class == "" {
		class = capability.ClassNormal
	}
	limits, err := q.MaxStreamAndTask(class)
	if err == nil {
		return class, limits, nil
	}
	if class == capability.ClassHuge {
		return "", capability.Limits{}, err
	}
	ctxlog.FromContext(ctx).Warn("Capability query failed, retrying with the huge stream class.", "class", class, "error", err)
	limits, err = q.MaxStreamAndTask(capability.ClassHuge)
	if err != nil {
		return "", capability.Limits{}, err
	}
	return capability.ClassHuge, limits, nil
}

func weight(n *graph.Node, trace bool) int {
	w := 0
	for _, t := range n.Tasks {
		w += max(t.Multiplicity, 0)
	}
	if trace {
		w += traceTasksPerNode
	}
	return w
}

// units groups consecutive nodes of one task cluster.
func units(nodes []*graph.Node, trace bool) []unit {
	var out []unit
	prevCluster := ""
	for _, n := range nodes {
		cluster, _ := n.StringAttr(graph.AttrTaskCluster)
		w := weight(n, trace)
		if cluster != "" && cluster == prevCluster {
			last := &out[len(out)-1]
			last.nodes = append(last.nodes, n)
			last.weight += w
			continue
		}
		out = append(out, unit{nodes: []*graph.Node{n}, weight: w})
		prevCluster = cluster
	}
	return out
}

func move(n *graph.Node, from, to int64) {
	if from == to {
		return
	}
	n.StreamID = to
	for i := range n.Tasks {
		if n.Tasks[i].StreamID == from {
			n.Tasks[i].StreamID = to
		}
	}
}

// joiner connects the two halves of a split stream with a new event.
type joiner struct {
	g           *graph.Graph
	res         *Result
	origin      map[graph.NodeID]int64
	materialize bool
	topo        int64
}

// join makes next, which opens physical stream to, wait for prev. logical is
// the stream both nodes came from.
func (j *joiner) join(prev, next *graph.Node, logical, to int64) error {
	id := uint32(j.res.EventCount)
	j.res.EventCount++
	if err := j.g.AddEdge(prev.ID, next.ID, graph.ControlEdge); err != nil {
		return err
	}
	if !j.materialize {
		prev.SendEventIDs = append(prev.SendEventIDs, id)
		next.RecvEventIDs = append(next.RecvEventIDs, id)
		return nil
	}

	send, err := j.g.AddSyncNode(fmt.Sprintf("%s_%s_%d_to_%s", prev.Name, graph.TypeSend, id, next.Name), graph.TypeSend, prev.EngineID, prev.StreamID, id, j.topo)
	if err != nil {
		return err
	}
	recv, err := j.g.AddSyncNode(fmt.Sprintf("%s_%s_%d_from_%s", next.Name, graph.TypeRecv, id, prev.Name), graph.TypeRecv, next.EngineID, to, id, j.topo+1)
	if err != nil {
		return err
	}
	j.topo += 2
	j.origin[send.ID] = logical
	j.origin[recv.ID] = logical
	if err := j.g.AddEdge(prev.ID, send.ID, graph.ControlEdge); err != nil {
		return err
	}
	return j.g.AddEdge(recv.ID, next.ID, graph.ControlEdge)
}

// followAnchors moves materialized send nodes with their producer and
// receive nodes with their consumer.
func followAnchors(g *graph.Graph, origin map[graph.NodeID]int64) {
	for _, n := range g.Nodes() {
		if !graph.IsSyncNode(n) {
			continue
		}
		var neighbors []graph.NodeID
		if n.Type == graph.TypeSend || n.Type == graph.TypeSendNotify {
			neighbors = g.Predecessors(n.ID)
		} else {
			neighbors = g.Successors(n.ID)
		}
		for _, id := range neighbors {
			anchor := g.Node(id)
			if !graph.IsSyncNode(anchor) && origin[id] == origin[n.ID] {
				n.StreamID = anchor.StreamID
				break
			}
		}
	}
}

// rewriteActiveStreams expands every activation list entry to all physical
// streams derived from it.
func rewriteActiveStreams(g *graph.Graph, derived map[int64][]int64) {
	for _, n := range g.Nodes() {
		if len(n.ActiveStreams) == 0 {
			continue
		}
		var list []uint32
		for _, s := range n.ActiveStreams {
			phys, ok := derived[int64(s)]
			if !ok {
				list = append(list, s)
				continue
			}
			for _, p := range phys {
				list = append(list, uint32(p))
			}
		}
		slices.Sort(list)
		n.ActiveStreams = slices.Compact(list)
	}
}
