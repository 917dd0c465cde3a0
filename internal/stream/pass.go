package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	"github.com/specialistvlad/streamgrid/internal/graph"
)

// Status is the outcome of a pass that did not fail.
type Status int

const (
	NotChanged Status = iota
	Changed
)

func (s Status) String() string {
	if s == Changed {
		return "changed"
	}
	return "not_changed"
}

// Pass is one step of the allocation pipeline.
type Pass int

const (
	AssignByLabel Pass = iota
	IndependentStream
	AssignByDependency
	SingleStream
	NodeStreamUpdate
	UpdateForParallelGroup
	UpdateForEngineStreamTag
	AllReduceParallel
	UpdateForSkippedEngine
	Renumber
	SetActiveStreams
	AssignAttachedStream
)

var passNames = [...]string{
	AssignByLabel:            "assign_by_label",
	IndependentStream:        "independent_stream",
	AssignByDependency:       "assign_by_dependency",
	SingleStream:             "single_stream",
	NodeStreamUpdate:         "node_stream_update",
	UpdateForParallelGroup:   "update_for_parallel_group",
	UpdateForEngineStreamTag: "update_for_engine_stream_tag",
	AllReduceParallel:        "all_reduce_parallel",
	UpdateForSkippedEngine:   "update_for_skipped_engine",
	Renumber:                 "renumber",
	SetActiveStreams:         "set_active_streams",
	AssignAttachedStream:     "assign_attached_stream",
}

func (p Pass) String() string {
	if int(p) < len(passNames) {
		return passNames[p]
	}
	return fmt.Sprintf("pass(%d)", int(p))
}

// Pipeline returns the passes to run for the given options.
func Pipeline(opts Options) []Pass {
	if opts.SingleStream {
		return []Pass{SingleStream, NodeStreamUpdate, UpdateForSkippedEngine, Renumber, SetActiveStreams, AssignAttachedStream}
	}
	passes := []Pass{
		AssignByLabel,
		IndependentStream,
		AssignByDependency,
		NodeStreamUpdate,
		UpdateForParallelGroup,
		UpdateForEngineStreamTag,
	}
	if opts.HcomParallel {
		passes = append(passes, AllReduceParallel)
	}
	return append(passes, UpdateForSkippedEngine, Renumber, SetActiveStreams, AssignAttachedStream)
}

// RunPass executes a single pass.
func RunPass(ctx context.Context, g *graph.Graph, sc *Context, p Pass) (Status, error) {
	switch p {
	case AssignByLabel:
		return assignByLabel(ctx, g, sc)
	case IndependentStream:
		return assignIndependent(ctx, g, sc)
	case AssignByDependency:
		return assignByDependency(ctx, g, sc)
	case SingleStream:
		return assignSingleStream(ctx, g, sc)
	case NodeStreamUpdate:
		return nodeStreamUpdate(g)
	case UpdateForParallelGroup:
		return updateForGroup(ctx, g, sc, graph.AttrParallelGroup)
	case UpdateForEngineStreamTag:
		return updateForGroup(ctx, g, sc, graph.AttrEngineStreamTag)
	case AllReduceParallel:
		return allReduceParallel(ctx, g, sc)
	case UpdateForSkippedEngine:
		return updateForSkippedEngine(ctx, g, sc)
	case Renumber:
		status := NotChanged
		if !sc.nested() {
			status = RenumberStreams(g, sc)
		}
		sc.MainStreams = sc.NextStream
		return status, nil
	case SetActiveStreams:
		return SetActiveStreamLists(g), nil
	case AssignAttachedStream:
		return AssignAttached(ctx, g, sc)
	}
	return NotChanged, fmt.Errorf("unknown stream pass %d", int(p))
}

// Allocate runs the whole pipeline for g.
func Allocate(ctx context.Context, g *graph.Graph, sc *Context) error {
	logger := ctxlog.FromContext(ctx).With("graph", g.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	for _, p := range Pipeline(sc.Options) {
		start := time.Now()
		status, err := RunPass(ctx, g, sc, p)
		if err != nil {
			logger.Debug("Stream pass failed.", "pass", p.String(), "error", err)
			return err
		}
		if sc.OnPass != nil {
			sc.OnPass(p, status, time.Since(start))
		}
		logger.Debug("Stream pass finished.", "pass", p.String(), "status", status.String())
	}
	if !sc.nested() {
		logger.Info("Logical streams allocated.", "main_streams", sc.MainStreams, "total_streams", sc.NextStream)
	}
	return nil
}
