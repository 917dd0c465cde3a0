package graph

import (
	"fmt"

	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"go.uber.org/multierr"
)

// Validate checks the structural preconditions of scheduling and returns all
// violations at once.
func (g *Graph) Validate() error {
	var errs error
	if err := g.DetectCycles(); err != nil {
		errs = multierr.Append(errs, err)
	}
	for _, sg := range g.subgraphs {
		if sg.Engine == nil {
			errs = multierr.Append(errs, cerror.ErrMalformedSubgraph.GenWithStackByArgs(sg.Name, "no engine"))
		}
		if len(sg.Nodes) == 0 {
			errs = multierr.Append(errs, cerror.ErrMalformedSubgraph.GenWithStackByArgs(sg.Name, "no nodes"))
		}
		if sg.MaxParallel < 0 {
			errs = multierr.Append(errs, cerror.ErrMalformedSubgraph.GenWithStackByArgs(sg.Name, fmt.Sprintf("negative max_parallel %d", sg.MaxParallel)))
		}
	}
	for _, n := range g.nodes {
		if n.Subgraph == NoSubgraph {
			errs = multierr.Append(errs, cerror.ErrNodeUnpartitioned.GenWithStackByArgs(n.Name))
		}
		if g.Engine(n) == nil {
			errs = multierr.Append(errs, cerror.ErrUnknownEngine.GenWithStackByArgs(n.EngineID, "node "+n.Name))
		}
	}
	return errs
}
