package dynstream

import (
	"context"
	"slices"

	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/specialistvlad/streamgrid/internal/graph"
	"github.com/specialistvlad/streamgrid/internal/stream"
)

// MainStream is the stream the loading protocol expects graph inputs,
// constants and outputs on.
const MainStream int64 = 0

// DefaultCPUBlockingOps are host CPU operators whose output shape depends on
// their input values and so stall everything queued behind them.
var DefaultCPUBlockingOps = []string{"Where", "Unique", "UniqueWithCounts", "NonZero"}

// Options configure one dynamic allocation.
type Options struct {
	// ACParallel is "1" to overlap host CPU work with compute, "" or "0" to
	// isolate blocking CPU operators.
	ACParallel     string
	CPUBlockingOps []string
}

type allocator struct {
	g        *graph.Graph
	sc       *stream.Context
	opts     Options
	blocking map[string]struct{}
	engines  map[string]int64
	cpuShare int64
}

// Allocate places every node of g on a stream and returns the run state,
// whose MainStreams and NextStream describe the result.
func Allocate(ctx context.Context, g *graph.Graph, opts Options) (*stream.Context, error) {
	switch opts.ACParallel {
	case "", "0", "1":
	default:
		return nil, cerror.ErrInvalidOption.GenWithStackByArgs(opts.ACParallel, "ac_parallel", `"", "0", "1"`)
	}
	logger := ctxlog.FromContext(ctx).With("graph", g.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	ops := opts.CPUBlockingOps
	if len(ops) == 0 {
		ops = DefaultCPUBlockingOps
	}
	a := &allocator{
		g:        g,
		sc:       stream.NewContext(stream.Options{}),
		opts:     opts,
		blocking: make(map[string]struct{}, len(ops)),
		engines:  make(map[string]int64),
		cpuShare: graph.UnassignedStream,
	}
	for _, op := range ops {
		a.blocking[op] = struct{}{}
	}
	a.sc.NextStream = MainStream + 1

	order := stream.SubgraphsInOrder(g)
	a.assignOwningEngines(ctx, order)
	a.assignHostCPU(ctx, order)
	a.assignByNeighbors(ctx, order)
	if err := a.updateNodes(); err != nil {
		return nil, err
	}
	a.coalesceLabels(ctx)
	a.forceMainStream(ctx)

	stream.RenumberStreams(g, a.sc)
	a.sc.MainStreams = a.sc.NextStream
	stream.SetActiveStreamLists(g)
	if _, err := stream.AssignAttached(ctx, g, a.sc); err != nil {
		return nil, err
	}
	logger.Info("Dynamic streams allocated.", "main_streams", a.sc.MainStreams, "total_streams", a.sc.NextStream)
	return a.sc, nil
}

func (a *allocator) engineStream(e *graph.EngineConfig) int64 {
	if id, ok := a.engines[e.ID]; ok {
		return id
	}
	id := a.sc.NextStream
	if e.Class == graph.ClassVector {
		id = MainStream
	} else {
		a.sc.NextStream++
	}
	a.engines[e.ID] = id
	return id
}

func (a *allocator) assignOwningEngines(ctx context.Context, order []*graph.Subgraph) {
	logger := ctxlog.FromContext(ctx)
	for _, sg := range order {
		if !sg.Engine.OwnsStream() {
			continue
		}
		sg.StreamID = a.engineStream(sg.Engine)
		logger.Debug("Subgraph placed on its engine stream.", "subgraph", sg.Name, "engine", sg.Engine.ID, "stream", sg.StreamID)
	}
}

func (a *allocator) assignHostCPU(ctx context.Context, order []*graph.Subgraph) {
	logger := ctxlog.FromContext(ctx)
	for _, sg := range order {
		if sg.Engine.Class != graph.ClassHostCPU || sg.HasStream() {
			continue
		}
		if a.opts.ACParallel == "1" {
			if !a.predecessorsAssigned(sg) {
				continue
			}
			if a.cpuShare == graph.UnassignedStream {
				a.cpuShare = a.sc.NextStream
				a.sc.NextStream++
			}
			sg.StreamID = a.cpuShare
			logger.Debug("Host CPU subgraph overlaps with compute.", "subgraph", sg.Name, "stream", sg.StreamID)
			continue
		}
		if a.isBlocking(sg) {
			sg.StreamID = a.sc.NextStream
			a.sc.NextStream++
			logger.Debug("Blocking host CPU subgraph isolated.", "subgraph", sg.Name, "stream", sg.StreamID)
		}
	}
}

func (a *allocator) predecessorsAssigned(sg *graph.Subgraph) bool {
	for _, pred := range a.g.PredecessorSubgraphs(sg) {
		if !pred.HasStream() {
			return false
		}
	}
	return true
}

func (a *allocator) isBlocking(sg *graph.Subgraph) bool {
	for _, id := range sg.Nodes {
		if _, ok := a.blocking[a.g.Node(id).Type]; ok {
			return true
		}
	}
	return false
}

// assignByNeighbors gives every remaining subgraph the stream of a
// same-engine predecessor, then of a same-engine successor, then, for
// attach and pass-through engines, of any placed neighbor. The fallback is
// the engine's own stream.
func (a *allocator) assignByNeighbors(ctx context.Context, order []*graph.Subgraph) {
	logger := ctxlog.FromContext(ctx)
	for _, sg := range order {
		if sg.HasStream() {
			continue
		}
		preds := a.g.PredecessorSubgraphs(sg)
		succs := a.g.SuccessorSubgraphs(sg)
		sameEngine := func(n *graph.Subgraph) bool { return n.HasStream() && n.Engine.ID == sg.Engine.ID }
		placed := func(n *graph.Subgraph) bool { return n.HasStream() }

		from, ok := first(preds, sameEngine)
		if !ok {
			from, ok = first(succs, sameEngine)
		}
		if !ok && (sg.Engine.Attach || sg.Engine.SkipAssignStream) {
			from, ok = first(preds, placed)
			if !ok {
				from, ok = first(succs, placed)
			}
		}
		if ok {
			sg.StreamID = from.StreamID
			sg.ReusedSubgraph = from.ID
			logger.Debug("Subgraph reuses neighbor stream.", "subgraph", sg.Name, "neighbor", from.Name, "stream", sg.StreamID)
			continue
		}
		if sg.Engine.SkipAssignStream {
			sg.StreamID = MainStream
			continue
		}
		sg.StreamID = a.engineStream(sg.Engine)
		logger.Debug("No reusable neighbor found, subgraph placed on its engine stream.", "subgraph", sg.Name, "stream", sg.StreamID)
	}
}

func first(sgs []*graph.Subgraph, pred func(*graph.Subgraph) bool) (*graph.Subgraph, bool) {
	i := slices.IndexFunc(sgs, pred)
	if i < 0 {
		return nil, false
	}
	return sgs[i], true
}

func (a *allocator) updateNodes() error {
	for _, sg := range a.g.Subgraphs() {
		if !sg.HasStream() {
			return cerror.ErrStreamUnassigned.GenWithStackByArgs("subgraph", sg.Name)
		}
		for _, id := range sg.Nodes {
			a.g.Node(id).StreamID = sg.StreamID
		}
	}
	return nil
}

// coalesceLabels moves every labeled node onto one fresh stream per label.
func (a *allocator) coalesceLabels(ctx context.Context) {
	labels := make(map[string]int64)
	for _, n := range a.g.TopoOrder() {
		label := n.StreamLabel()
		if label == "" && n.Subgraph != graph.NoSubgraph {
			label = a.g.Subgraph(n.Subgraph).StreamLabel
		}
		if label == "" {
			continue
		}
		id, ok := labels[label]
		if !ok {
			id = a.sc.NextStream
			a.sc.NextStream++
			labels[label] = id
		}
		n.StreamID = id
	}
	if len(labels) > 0 {
		ctxlog.FromContext(ctx).Debug("Labeled nodes coalesced.", "labels", len(labels))
	}
}

// forceMainStream pins the nodes the loading protocol expects on stream 0.
func (a *allocator) forceMainStream(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for _, n := range a.g.Nodes() {
		if !mustRunOnMain(n) || n.StreamID == MainStream {
			continue
		}
		logger.Debug("Node forced onto the main stream.", "node", n.Name, "from", n.StreamID)
		n.StreamID = MainStream
	}
}

func mustRunOnMain(n *graph.Node) bool {
	switch n.Type {
	case graph.TypeData, graph.TypeConst, graph.TypeConstant, graph.TypeNetOutput:
		return true
	}
	return n.BoolAttr(graph.AttrSubgraphBound) || n.BoolAttr(graph.AttrOwnsSubgraph)
}
