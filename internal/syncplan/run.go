package syncplan

import (
	"context"

	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/specialistvlad/streamgrid/internal/graph"
)

// Options configure one synchronization run.
type Options struct {
	Mode Mode
	// Optimize enables subsumption. Activation pruning always runs.
	Optimize bool
	// Materialize inserts explicit send/receive nodes.
	Materialize bool
	// MaxNotifies caps the notify count; negative means unlimited.
	MaxNotifies int
}

// Result is the synchronization summary of one graph.
type Result struct {
	Plan        *Plan
	EventCount  int
	NotifyCount int
	NotifyTypes []uint32
}

// Run inserts, optimizes, numbers and optionally materializes the
// synchronization of g, then grants attached events and notifies.
func Run(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	plan := Insert(ctx, g, opts.Mode)
	if opts.Optimize {
		plan.DropSubsumed(ctx, g)
	}
	plan.PruneByActivation(ctx, g, graph.NewStreamIndex(g))
	plan.Finalize(g)
	if err := plan.Verify(g); err != nil {
		return nil, err
	}

	res := &Result{Plan: plan}
	if opts.Mode == Notifies {
		if opts.MaxNotifies >= 0 && plan.Count > opts.MaxNotifies {
			return nil, cerror.ErrNotifyCapacity.GenWithStackByArgs(plan.Count, opts.MaxNotifies)
		}
		res.NotifyTypes = plan.NotifyTypes
	} else {
		res.EventCount = plan.Count
	}

	if opts.Materialize {
		if err := plan.Materialize(ctx, g); err != nil {
			return nil, err
		}
	}

	events, err := AssignAttachedEvents(ctx, g, res.EventCount)
	if err != nil {
		return nil, err
	}
	res.EventCount = events

	types, err := AssignAttachedNotifies(ctx, g, res.NotifyTypes, opts.MaxNotifies)
	if err != nil {
		return nil, err
	}
	res.NotifyTypes = types
	res.NotifyCount = len(types)

	logger.Info("Synchronization planned.",
		"mode", opts.Mode.String(),
		"inserted", plan.Inserted,
		"kept", len(plan.Live()),
		"events", res.EventCount,
		"notifies", res.NotifyCount,
	)
	return res, nil
}
