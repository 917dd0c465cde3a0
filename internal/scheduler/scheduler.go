package scheduler

import (
	"context"
	"time"

	"github.com/specialistvlad/streamgrid/internal/capability"
	"github.com/specialistvlad/streamgrid/internal/config"
	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	"github.com/specialistvlad/streamgrid/internal/dynstream"
	"github.com/specialistvlad/streamgrid/internal/graph"
	"github.com/specialistvlad/streamgrid/internal/split"
	"github.com/specialistvlad/streamgrid/internal/stream"
	"github.com/specialistvlad/streamgrid/internal/syncplan"
)

// DefaultScheduler is the reference implementation of the Scheduler interface.
type DefaultScheduler struct {
	querier capability.Querier
	split   bool
}

var _ Scheduler = (*DefaultScheduler)(nil)

// New creates a scheduler that reads hardware limits from q. With split set,
// streams are split against the per-stream task limit after synchronization.
func New(q capability.Querier, split bool) *DefaultScheduler {
	return &DefaultScheduler{querier: q, split: split}
}

// Schedule implements the Scheduler interface.
func (s *DefaultScheduler) Schedule(ctx context.Context, g *graph.Graph, opts config.Options) (res *Result, err error) {
	kind := graphKind(g)
	logger := ctxlog.FromContext(ctx).With("graph", g.Name, "kind", kind)
	ctx = ctxlog.WithLogger(ctx, logger)
	start := time.Now()
	defer func() {
		observeGraph(kind, res, err, time.Since(start))
	}()

	mode, err := syncplan.ParseMode(opts.SyncMode)
	if err != nil {
		return nil, err
	}

	sc, err := s.allocate(ctx, g, opts)
	if err != nil {
		return nil, err
	}

	stageStart := time.Now()
	plan, err := syncplan.Run(ctx, g, syncplan.Options{
		Mode:        mode,
		Optimize:    !g.Dynamic,
		Materialize: !g.Dynamic,
		MaxNotifies: s.querier.MaxNotifies(),
	})
	if err != nil {
		return nil, err
	}
	observeStage(kind, "sync", time.Since(stageStart))

	res = &Result{
		Graph:            g.Name,
		Dynamic:          g.Dynamic,
		TotalStreamCount: sc.NextStream,
		MainStreamCount:  sc.MainStreams,
		EventCount:       plan.EventCount,
		NotifyCount:      plan.NotifyCount,
		NotifyTypes:      plan.NotifyTypes,
	}
	if res.NotifyTypes == nil {
		res.NotifyTypes = []uint32{}
	}

	bindTasks(g)
	if s.split {
		stageStart = time.Now()
		sr, err := split.Split(ctx, g, s.querier, res.TotalStreamCount, res.EventCount, split.Options{
			Class:       opts.StreamClass,
			TraceTasks:  opts.TraceTasks,
			Materialize: !g.Dynamic,
		})
		if err != nil {
			return nil, err
		}
		observeStage(kind, "split", time.Since(stageStart))
		res.TotalStreamCount = sr.TotalStreams
		res.EventCount = sr.EventCount
		res.Splits = sr.Splits
		res.StreamClass = sr.Class
	}

	logger.Info("Graph scheduled.",
		"total_streams", res.TotalStreamCount,
		"main_streams", res.MainStreamCount,
		"events", res.EventCount,
		"notifies", res.NotifyCount,
		"splits", res.Splits,
	)
	return res, nil
}

func (s *DefaultScheduler) allocate(ctx context.Context, g *graph.Graph, opts config.Options) (*stream.Context, error) {
	kind := graphKind(g)
	start := time.Now()
	if g.Dynamic {
		sc, err := dynstream.Allocate(ctx, g, dynstream.Options{
			ACParallel:     opts.ACParallel,
			CPUBlockingOps: opts.CPUBlockingOps,
		})
		if err != nil {
			return nil, err
		}
		observeStage(kind, "allocate", time.Since(start))
		return sc, nil
	}

	sc := stream.NewContext(stream.Options{
		SingleStream:   opts.SingleStream,
		HcomParallel:   opts.HcomParallel,
		MemoryPriority: opts.MemoryPriority,
	})
	sc.OnPass = func(p stream.Pass, st stream.Status, elapsed time.Duration) {
		observePass(p, st, elapsed)
	}
	if err := stream.Allocate(ctx, g, sc); err != nil {
		return nil, err
	}
	observeStage(kind, "allocate", time.Since(start))
	return sc, nil
}

// bindTasks places tasks that follow their node onto the node's final
// stream, as code generation would.
func bindTasks(g *graph.Graph) {
	for _, n := range g.Nodes() {
		for i := range n.Tasks {
			if n.Tasks[i].StreamID == config.OwnStream {
				n.Tasks[i].StreamID = n.StreamID
			}
		}
	}
}

func graphKind(g *graph.Graph) string {
	if g.Dynamic {
		return "dynamic"
	}
	return "static"
}
