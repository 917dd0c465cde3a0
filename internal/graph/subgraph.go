package graph

import (
	"fmt"

	cerror "github.com/specialistvlad/streamgrid/internal/errors"
)

// AddSubgraph creates a subgraph owning the given nodes. A node may belong to
// at most one subgraph.
func (g *Graph) AddSubgraph(name string, engine *EngineConfig, nodes ...NodeID) (*Subgraph, error) {
	if _, ok := g.subgraphByName[name]; ok {
		return nil, fmt.Errorf("duplicate subgraph name: %s", name)
	}
	sg := &Subgraph{
		ID:             SubgraphID(len(g.subgraphs)),
		Name:           name,
		Engine:         engine,
		StreamID:       UnassignedStream,
		ReusedSubgraph: NoSubgraph,
	}
	for _, id := range nodes {
		if !g.valid(id) {
			return nil, fmt.Errorf("subgraph %s references unknown node %d", name, id)
		}
		n := g.nodes[id]
		if n.Subgraph != NoSubgraph {
			return nil, fmt.Errorf("node %s already belongs to subgraph %s", n.Name, g.subgraphs[n.Subgraph].Name)
		}
		n.Subgraph = sg.ID
		if engine != nil && n.EngineID == "" {
			n.EngineID = engine.ID
		}
		sg.Nodes = append(sg.Nodes, id)
	}
	g.subgraphs = append(g.subgraphs, sg)
	g.subgraphByName[name] = sg.ID
	return sg, nil
}

// Subgraph returns the subgraph with the given id.
func (g *Graph) Subgraph(id SubgraphID) *Subgraph {
	return g.subgraphs[id]
}

// SubgraphByName looks up a subgraph by name.
func (g *Graph) SubgraphByName(name string) (*Subgraph, bool) {
	id, ok := g.subgraphByName[name]
	if !ok {
		return nil, false
	}
	return g.subgraphs[id], true
}

// Subgraphs returns all subgraphs in creation order.
func (g *Graph) Subgraphs() []*Subgraph {
	return g.subgraphs
}

// Link finishes partitioning bookkeeping. Nodes without a subgraph get a
// singleton subgraph on their own engine, then every edge crossing subgraph
// membership becomes a placeholder/end boundary on both sides.
func (g *Graph) Link() error {
	for _, n := range g.nodes {
		if n.Subgraph != NoSubgraph {
			continue
		}
		engine, ok := g.engines[n.EngineID]
		if !ok {
			return cerror.ErrUnknownEngine.GenWithStackByArgs(n.EngineID, n.Name)
		}
		if _, err := g.AddSubgraph(n.Name, engine, n.ID); err != nil {
			return err
		}
	}

	for _, sg := range g.subgraphs {
		sg.Inputs = sg.Inputs[:0]
		sg.Outputs = sg.Outputs[:0]
	}
	for _, n := range g.TopoOrder() {
		for _, e := range g.out[n.ID] {
			if e.BackEdge {
				continue
			}
			producer := g.nodes[e.From].Subgraph
			consumer := g.nodes[e.To].Subgraph
			if producer == consumer {
				continue
			}
			b := Boundary{End: e.From, Placeholder: e.To, Producer: producer, Consumer: consumer}
			g.subgraphs[producer].Outputs = append(g.subgraphs[producer].Outputs, b)
			g.subgraphs[consumer].Inputs = append(g.subgraphs[consumer].Inputs, b)
		}
	}
	return nil
}

// PredecessorSubgraphs returns the distinct subgraphs feeding sg through its
// placeholders, in boundary order.
func (g *Graph) PredecessorSubgraphs(sg *Subgraph) []*Subgraph {
	var preds []*Subgraph
	seen := make(map[SubgraphID]struct{})
	for _, b := range sg.Inputs {
		if _, ok := seen[b.Producer]; ok {
			continue
		}
		seen[b.Producer] = struct{}{}
		preds = append(preds, g.subgraphs[b.Producer])
	}
	return preds
}

// SuccessorSubgraphs returns the distinct subgraphs consuming sg's ends, in
// boundary order.
func (g *Graph) SuccessorSubgraphs(sg *Subgraph) []*Subgraph {
	var succs []*Subgraph
	seen := make(map[SubgraphID]struct{})
	for _, b := range sg.Outputs {
		if _, ok := seen[b.Consumer]; ok {
			continue
		}
		seen[b.Consumer] = struct{}{}
		succs = append(succs, g.subgraphs[b.Consumer])
	}
	return succs
}
