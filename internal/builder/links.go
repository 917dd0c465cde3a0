package builder

import (
	"context"

	"github.com/specialistvlad/streamgrid/internal/config"
	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/specialistvlad/streamgrid/internal/graph"
)

// linkNodes performs the second pass, establishing dependency edges between
// nodes.
func linkNodes(ctx context.Context, cg *config.Graph, g *graph.Graph) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting node linking pass.")

	for _, cn := range cg.Nodes {
		n, _ := g.NodeByName(cn.Name)
		nodeLogger := logger.With("node", cn.Name)

		link := func(deps []string, add func(from graph.NodeID) error) error {
			for _, dep := range deps {
				from, ok := g.NodeByName(dep)
				if !ok {
					return cerror.ErrNodeNotFound.GenWithStackByArgs(dep, cn.Name)
				}
				if err := add(from.ID); err != nil {
					return cerror.ErrInvalidConfig.GenWithStackByArgs(err.Error())
				}
			}
			return nil
		}

		if err := link(cn.Inputs, func(from graph.NodeID) error {
			return g.AddEdge(from, n.ID, graph.DataEdge)
		}); err != nil {
			return err
		}
		if err := link(cn.ControlInputs, func(from graph.NodeID) error {
			return g.AddEdge(from, n.ID, graph.ControlEdge)
		}); err != nil {
			return err
		}
		if err := link(cn.BackInputs, func(from graph.NodeID) error {
			return g.AddBackEdge(from, n.ID)
		}); err != nil {
			return err
		}
		nodeLogger.Debug("Linked dependencies.", "data", len(cn.Inputs), "control", len(cn.ControlInputs), "back", len(cn.BackInputs))
	}
	logger.Debug("Finished node linking pass.")
	return nil
}
