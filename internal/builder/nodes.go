package builder

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/streamgrid/internal/config"
	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/specialistvlad/streamgrid/internal/graph"
)

// createNodes performs the first pass of graph creation, populating the graph
// with all nodes defined in the configuration.
func createNodes(ctx context.Context, cg *config.Graph, g *graph.Graph) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting node creation pass.")

	for _, cn := range cg.Nodes {
		n, err := g.AddNode(cn.Name, cn.Type, cn.Engine)
		if err != nil {
			return cerror.ErrInvalidConfig.GenWithStackByArgs(fmt.Sprintf("graph %s: %s", cg.Name, err))
		}
		for k, v := range cn.Attrs {
			n.SetAttr(k, v)
		}
		for _, t := range cn.Tasks {
			n.Tasks = append(n.Tasks, graph.TaskDef{StreamID: t.Stream, Multiplicity: t.Count, Kind: t.Kind})
		}
		logger.Debug("Created node.", "node", n.Name, "type", n.Type, "engine", n.EngineID, "tasks", len(n.Tasks))
	}
	logger.Debug("Finished node creation pass.")
	return nil
}

// createSubgraphs groups nodes into the declared subgraphs. A subgraph without
// an engine runs on the engine of its first node.
func createSubgraphs(ctx context.Context, cg *config.Graph, g *graph.Graph) error {
	logger := ctxlog.FromContext(ctx)

	members := make(map[string][]string, len(cg.Subgraphs))
	for _, cs := range cg.Subgraphs {
		members[cs.Name] = append(members[cs.Name], cs.Nodes...)
	}
	for _, cn := range cg.Nodes {
		if cn.Subgraph == "" {
			continue
		}
		if _, ok := members[cn.Subgraph]; !ok {
			logger.Error("Node references an undeclared subgraph.", "node", cn.Name, "subgraph", cn.Subgraph)
			return cerror.ErrSubgraphNotFound.GenWithStackByArgs(cn.Subgraph)
		}
		if !slices.Contains(members[cn.Subgraph], cn.Name) {
			members[cn.Subgraph] = append(members[cn.Subgraph], cn.Name)
		}
	}

	for _, cs := range cg.Subgraphs {
		names := members[cs.Name]
		if len(names) == 0 {
			return cerror.ErrInvalidConfig.GenWithStackByArgs(fmt.Sprintf("subgraph %s has no nodes", cs.Name))
		}
		ids := make([]graph.NodeID, 0, len(names))
		for _, name := range names {
			n, ok := g.NodeByName(name)
			if !ok {
				return cerror.ErrNodeNotFound.GenWithStackByArgs(name, "subgraph "+cs.Name)
			}
			ids = append(ids, n.ID)
		}

		engineName := cs.Engine
		if engineName == "" {
			engineName = g.Node(ids[0]).EngineID
		}
		engine, ok := g.EngineByID(engineName)
		if !ok {
			return cerror.ErrUnknownEngine.GenWithStackByArgs(engineName, "subgraph "+cs.Name)
		}

		sg, err := g.AddSubgraph(cs.Name, engine, ids...)
		if err != nil {
			return cerror.ErrInvalidConfig.GenWithStackByArgs(fmt.Sprintf("graph %s: %s", cg.Name, err))
		}
		sg.StreamLabel = cs.StreamLabel
		sg.MaxParallel = cs.MaxParallel
		logger.Debug("Created subgraph.", "subgraph", sg.Name, "engine", engine.ID, "nodes", len(ids), "label", sg.StreamLabel)
	}
	return nil
}
