package builder

import (
	"context"

	"github.com/pingcap/errors"
	"github.com/specialistvlad/streamgrid/internal/config"
	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	"github.com/specialistvlad/streamgrid/internal/graph"
)

// Build constructs a complete, validated graph from its configuration.
// engines must map every engine name to its resolved configuration.
func Build(ctx context.Context, cg *config.Graph, engines map[string]*graph.EngineConfig) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx).With("graph", cg.Name)
	logger.Debug("Build: Starting graph construction.")

	g := graph.New(cg.Name)
	g.Dynamic = cg.Dynamic
	g.SetEngines(engines)

	if err := createNodes(ctx, cg, g); err != nil {
		return nil, err
	}
	logger.Debug("Build: Node creation complete.", "node_count", g.NodeCount())

	if err := linkNodes(ctx, cg, g); err != nil {
		return nil, err
	}
	logger.Debug("Build: Node linking complete.")

	if err := createSubgraphs(ctx, cg, g); err != nil {
		return nil, err
	}

	if err := g.AssignTopoIDs(); err != nil {
		return nil, err
	}
	if err := g.Link(); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, errors.Annotatef(err, "error validating graph %s", cg.Name)
	}
	logger.Debug("Build: Validation passed.", "subgraph_count", len(g.Subgraphs()))

	logger.Info("Build: Graph construction successful.")
	return g, nil
}
