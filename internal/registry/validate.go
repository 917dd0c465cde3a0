package registry

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/specialistvlad/streamgrid/internal/graph"
	"go.uber.org/multierr"
	"golang.org/x/exp/maps"
)

// Validate performs a consistency check over all registered engines and
// returns every violation found.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs error

	names := maps.Keys(r.engines)
	slices.Sort(names)
	for _, name := range names {
		e := r.engines[name]
		if _, err := r.Resolve(name); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if e.CompositeOf != "" {
			continue
		}
		if e.Independent && e.SkipAssignStream {
			errs = multierr.Append(errs, cerror.ErrInvalidConfig.GenWithStackByArgs(
				fmt.Sprintf("engine %s cannot be both independent and skip_assign_stream", name)))
		}
		if e.Independent && e.Attach {
			errs = multierr.Append(errs, cerror.ErrInvalidConfig.GenWithStackByArgs(
				fmt.Sprintf("engine %s cannot be both independent and attach", name)))
		}
		switch e.Class {
		case graph.ClassVector, graph.ClassCube, graph.ClassCollective, graph.ClassDSA, graph.ClassHostCPU, graph.ClassOther:
		default:
			errs = multierr.Append(errs, cerror.ErrInvalidConfig.GenWithStackByArgs(
				fmt.Sprintf("engine %s has unknown class %q", name, e.Class)))
		}
		if e.SchedulerID == "" {
			logger.Warn("Engine has no scheduler id, it can only reuse streams of other engines without one.", "engine", name)
		}
	}
	return errs
}
