package testutil

import (
	"testing"

	"github.com/specialistvlad/streamgrid/internal/graph"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// GraphBuilder assembles small graphs for tests, failing the test on any
// construction error.
type GraphBuilder struct {
	t testing.TB
	g *graph.Graph
}

// NewGraph starts a graph that knows every engine from Engines.
func NewGraph(t testing.TB, name string) *GraphBuilder {
	t.Helper()
	g := graph.New(name)
	g.SetEngines(Engines())
	return &GraphBuilder{t: t, g: g}
}

// Graph returns the graph under construction.
func (b *GraphBuilder) Graph() *graph.Graph {
	return b.g
}

// Node adds a node with data inputs from the named nodes.
func (b *GraphBuilder) Node(name, typ, engine string, inputs ...string) *graph.Node {
	b.t.Helper()
	n, err := b.g.AddNode(name, typ, engine)
	require.NoError(b.t, err)
	for _, in := range inputs {
		require.NoError(b.t, b.g.AddEdge(b.mustNode(in).ID, n.ID, graph.DataEdge))
	}
	return n
}

// Control adds a control edge.
func (b *GraphBuilder) Control(from, to string) *GraphBuilder {
	b.t.Helper()
	require.NoError(b.t, b.g.AddEdge(b.mustNode(from).ID, b.mustNode(to).ID, graph.ControlEdge))
	return b
}

// Back adds a loop-closing back edge.
func (b *GraphBuilder) Back(from, to string) *GraphBuilder {
	b.t.Helper()
	require.NoError(b.t, b.g.AddBackEdge(b.mustNode(from).ID, b.mustNode(to).ID))
	return b
}

// Attr sets a node attribute.
func (b *GraphBuilder) Attr(node, key string, v cty.Value) *GraphBuilder {
	b.t.Helper()
	b.mustNode(node).SetAttr(key, v)
	return b
}

// Subgraph groups the named nodes into a subgraph on engine.
func (b *GraphBuilder) Subgraph(name, engine string, nodes ...string) *graph.Subgraph {
	b.t.Helper()
	e, ok := b.g.EngineByID(engine)
	require.True(b.t, ok, "unknown engine %s", engine)
	ids := make([]graph.NodeID, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, b.mustNode(n).ID)
	}
	sg, err := b.g.AddSubgraph(name, e, ids...)
	require.NoError(b.t, err)
	return sg
}

// Build assigns topological ids, links subgraph boundaries and validates the
// graph.
func (b *GraphBuilder) Build() *graph.Graph {
	b.t.Helper()
	require.NoError(b.t, b.g.AssignTopoIDs())
	require.NoError(b.t, b.g.Link())
	require.NoError(b.t, b.g.Validate())
	return b.g
}

func (b *GraphBuilder) mustNode(name string) *graph.Node {
	b.t.Helper()
	n, ok := b.g.NodeByName(name)
	require.True(b.t, ok, "unknown node %s", name)
	return n
}

// StreamOf returns the stream id of the named node.
func StreamOf(t testing.TB, g *graph.Graph, name string) int64 {
	t.Helper()
	n, ok := g.NodeByName(name)
	require.True(t, ok, "unknown node %s", name)
	return n.StreamID
}

// AttachedDecl builds a legacy attached-resource declaration value.
func AttachedDecl(group, key string, required bool) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"group_name": cty.StringVal(group),
		"reuse_key":  cty.StringVal(key),
		"required":   cty.BoolVal(required),
	})
}
