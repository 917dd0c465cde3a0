package graph

import (
	"fmt"
	"slices"

	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/zclconf/go-cty/cty"
)

// New creates and returns an initialized, empty Graph.
func New(name string) *Graph {
	return &Graph{
		Name:           name,
		nodeByName:     make(map[string]NodeID),
		subgraphByName: make(map[string]SubgraphID),
		engines:        make(map[string]*EngineConfig),
	}
}

// SetEngines registers the engine configurations nodes may refer to.
func (g *Graph) SetEngines(engines map[string]*EngineConfig) {
	for id, e := range engines {
		g.engines[id] = e
	}
}

// EngineByID returns the registered engine with the given id.
func (g *Graph) EngineByID(id string) (*EngineConfig, bool) {
	e, ok := g.engines[id]
	return e, ok
}

// Engine returns the engine a node runs on: the engine of its subgraph when
// it has one, otherwise the engine registered under its EngineID.
func (g *Graph) Engine(n *Node) *EngineConfig {
	if n.Subgraph != NoSubgraph {
		if e := g.subgraphs[n.Subgraph].Engine; e != nil {
			return e
		}
	}
	return g.engines[n.EngineID]
}

// AddNode adds a new node with the given name. Names must be unique.
func (g *Graph) AddNode(name, typ, engineID string) (*Node, error) {
	if _, ok := g.nodeByName[name]; ok {
		return nil, fmt.Errorf("duplicate node name: %s", name)
	}
	n := &Node{
		ID:       NodeID(len(g.nodes)),
		Name:     name,
		Type:     typ,
		TopoID:   int64(len(g.nodes)),
		EngineID: engineID,
		Subgraph: NoSubgraph,
		StreamID: UnassignedStream,
		Attrs:    make(map[string]cty.Value),
	}
	g.nodes = append(g.nodes, n)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.nodeByName[name] = n.ID
	return n, nil
}

// AddEdge creates a directed edge meaning `to` depends on `from`. Repeated
// edges of the same kind between the same endpoints are ignored.
func (g *Graph) AddEdge(from, to NodeID, kind EdgeKind) error {
	return g.addEdge(Edge{From: from, To: to, Kind: kind})
}

// AddBackEdge creates a loop-closing control edge. Back edges are excluded
// from cycle detection and from activation-based reachability.
func (g *Graph) AddBackEdge(from, to NodeID) error {
	return g.addEdge(Edge{From: from, To: to, Kind: ControlEdge, BackEdge: true})
}

func (g *Graph) addEdge(e Edge) error {
	if e.From == e.To {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", g.name(e.From), g.name(e.From))
	}
	if !g.valid(e.From) {
		return fmt.Errorf("source node not found: %d", e.From)
	}
	if !g.valid(e.To) {
		return fmt.Errorf("destination node not found: %d", e.To)
	}
	for _, existing := range g.out[e.From] {
		if existing == e {
			return nil
		}
	}
	g.out[e.From] = append(g.out[e.From], e)
	g.in[e.To] = append(g.in[e.To], e)
	return nil
}

func (g *Graph) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

func (g *Graph) name(id NodeID) string {
	if !g.valid(id) {
		return fmt.Sprintf("#%d", id)
	}
	return g.nodes[id].Name
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) *Node {
	return g.nodes[id]
}

// NodeByName looks up a node by name.
func (g *Graph) NodeByName(name string) (*Node, bool) {
	id, ok := g.nodeByName[name]
	if !ok {
		return nil, false
	}
	return g.nodes[id], true
}

// Nodes returns all nodes in insertion order. The slice is shared with the
// graph and must not be modified.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// TopoOrder returns all nodes sorted by topological id.
func (g *Graph) TopoOrder() []*Node {
	ordered := slices.Clone(g.nodes)
	slices.SortStableFunc(ordered, func(a, b *Node) int {
		switch {
		case a.TopoID < b.TopoID:
			return -1
		case a.TopoID > b.TopoID:
			return 1
		}
		return 0
	})
	return ordered
}

// NextTopoID returns a topological id larger than every id in use.
func (g *Graph) NextTopoID() int64 {
	next := int64(0)
	for _, n := range g.nodes {
		if n.TopoID >= next {
			next = n.TopoID + 1
		}
	}
	return next
}

// OutEdges returns the outgoing edges of a node.
func (g *Graph) OutEdges(id NodeID) []Edge {
	return g.out[id]
}

// InEdges returns the incoming edges of a node.
func (g *Graph) InEdges(id NodeID) []Edge {
	return g.in[id]
}

// DataInputs returns the producers of a node's data inputs, in edge order.
func (g *Graph) DataInputs(id NodeID) []NodeID {
	var ids []NodeID
	for _, e := range g.in[id] {
		if e.Kind == DataEdge {
			ids = append(ids, e.From)
		}
	}
	return ids
}

// Predecessors returns the distinct data and control predecessors of a node.
func (g *Graph) Predecessors(id NodeID) []NodeID {
	return distinct(g.in[id], func(e Edge) NodeID { return e.From })
}

// Successors returns the distinct data and control successors of a node.
func (g *Graph) Successors(id NodeID) []NodeID {
	return distinct(g.out[id], func(e Edge) NodeID { return e.To })
}

func distinct(edges []Edge, end func(Edge) NodeID) []NodeID {
	seen := make(map[NodeID]struct{}, len(edges))
	ids := make([]NodeID, 0, len(edges))
	for _, e := range edges {
		id := end(e)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// DetectCycles checks the graph for cycles that are not closed by a back
// edge. It returns a non-nil error naming a node on the first cycle found.
func (g *Graph) DetectCycles() error {
	// permanent: fully visited nodes, temporary: the current DFS stack.
	permanent := make([]bool, len(g.nodes))
	temporary := make([]bool, len(g.nodes))

	var visit func(id NodeID) error
	visit = func(id NodeID) error {
		if permanent[id] {
			return nil
		}
		if temporary[id] {
			return cerror.ErrGraphCycle.GenWithStackByArgs(g.nodes[id].Name)
		}
		temporary[id] = true
		for _, e := range g.out[id] {
			if e.BackEdge {
				continue
			}
			if err := visit(e.To); err != nil {
				return err
			}
		}
		temporary[id] = false
		permanent[id] = true
		return nil
	}

	for _, n := range g.nodes {
		if err := visit(n.ID); err != nil {
			return err
		}
	}
	return nil
}

// AssignTopoIDs renumbers TopoID with a stable Kahn traversal: among ready
// nodes the one added first goes first. Back edges are ignored.
func (g *Graph) AssignTopoIDs() error {
	pending := make([]int, len(g.nodes))
	for id := range g.nodes {
		for _, e := range g.in[id] {
			if !e.BackEdge {
				pending[id]++
			}
		}
	}
	ready := make([]NodeID, 0, len(g.nodes))
	for id, count := range pending {
		if count == 0 {
			ready = append(ready, NodeID(id))
		}
	}

	next := int64(0)
	for len(ready) > 0 {
		slices.Sort(ready)
		id := ready[0]
		ready = ready[1:]
		g.nodes[id].TopoID = next
		next++
		for _, e := range g.out[id] {
			if e.BackEdge {
				continue
			}
			pending[e.To]--
			if pending[e.To] == 0 {
				ready = append(ready, e.To)
			}
		}
	}
	if int(next) != len(g.nodes) {
		return g.DetectCycles()
	}
	return nil
}
