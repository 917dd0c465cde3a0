package builder

import (
	"context"
	"testing"

	"github.com/specialistvlad/streamgrid/internal/config"
	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/specialistvlad/streamgrid/internal/graph"
	"github.com/specialistvlad/streamgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func loopGraph() *config.Graph {
	return &config.Graph{
		Name: "loop",
		Subgraphs: []*config.Subgraph{
			{Name: "body", Engine: testutil.AICore, StreamLabel: "left", MaxParallel: 2, Nodes: []string{"a"}},
		},
		Nodes: []*config.Node{
			{Name: "in", Type: graph.TypeData, Engine: testutil.GeLocal},
			{Name: "a", Type: "Relu", Engine: testutil.AICore, Inputs: []string{"in"}, BackInputs: []string{"b"}},
			{
				Name: "b", Type: "Add", Engine: testutil.AICore, Subgraph: "body",
				Inputs: []string{"a"}, ControlInputs: []string{"in"},
				Attrs: map[string]cty.Value{graph.AttrFusion: cty.NumberIntVal(2)},
				Tasks: []*config.Task{{Stream: config.OwnStream, Count: 3, Kind: "kernel"}},
			},
		},
	}
}

func TestBuild(t *testing.T) {
	g, err := Build(context.Background(), loopGraph(), testutil.Engines())
	require.NoError(t, err)
	assert.Equal(t, 3, g.NodeCount())

	in, _ := g.NodeByName("in")
	a, _ := g.NodeByName("a")
	b, _ := g.NodeByName("b")
	assert.Less(t, in.TopoID, a.TopoID)
	assert.Less(t, a.TopoID, b.TopoID)

	body, ok := g.SubgraphByName("body")
	require.True(t, ok)
	assert.Equal(t, "left", body.StreamLabel)
	assert.Equal(t, 2, body.MaxParallel)
	assert.ElementsMatch(t, []graph.NodeID{a.ID, b.ID}, body.Nodes)
	assert.Equal(t, body.ID, b.Subgraph)

	single, ok := g.SubgraphByName("in")
	require.True(t, ok, "unclaimed nodes get a singleton subgraph")
	assert.Equal(t, testutil.GeLocal, single.Engine.ID)

	var control, back int
	for _, e := range g.InEdges(b.ID) {
		if e.Kind == graph.ControlEdge {
			control++
		}
	}
	for _, e := range g.InEdges(a.ID) {
		if e.BackEdge {
			back++
		}
	}
	assert.Equal(t, 1, control)
	assert.Equal(t, 1, back)

	fusion, ok := b.IntAttr(graph.AttrFusion)
	require.True(t, ok)
	assert.Equal(t, int64(2), fusion)
	assert.Equal(t, []graph.TaskDef{{StreamID: config.OwnStream, Multiplicity: 3, Kind: "kernel"}}, b.Tasks)
}

func TestBuild_SubgraphEngineDefaultsToFirstNode(t *testing.T) {
	cg := &config.Graph{
		Name:      "default_engine",
		Subgraphs: []*config.Subgraph{{Name: "cpu", Nodes: []string{"x"}}},
		Nodes:     []*config.Node{{Name: "x", Type: "Where", Engine: testutil.AICPU}},
	}
	g, err := Build(context.Background(), cg, testutil.Engines())
	require.NoError(t, err)
	sg, _ := g.SubgraphByName("cpu")
	assert.Equal(t, testutil.AICPU, sg.Engine.ID)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cg *config.Graph)
		is     func(error) bool
	}{
		{
			name:   "unknown input",
			mutate: func(cg *config.Graph) { cg.Nodes[1].Inputs = []string{"ghost"} },
			is:     cerror.ErrNodeNotFound.Equal,
		},
		{
			name:   "unknown subgraph member",
			mutate: func(cg *config.Graph) { cg.Subgraphs[0].Nodes = []string{"ghost"} },
			is:     cerror.ErrNodeNotFound.Equal,
		},
		{
			name:   "unknown subgraph reference",
			mutate: func(cg *config.Graph) { cg.Nodes[2].Subgraph = "elsewhere" },
			is:     cerror.ErrSubgraphNotFound.Equal,
		},
		{
			name:   "unknown node engine",
			mutate: func(cg *config.Graph) { cg.Nodes[0].Engine = "warp_drive" },
			is:     cerror.ErrUnknownEngine.Equal,
		},
		{
			name:   "unknown subgraph engine",
			mutate: func(cg *config.Graph) { cg.Subgraphs[0].Engine = "warp_drive" },
			is:     cerror.ErrUnknownEngine.Equal,
		},
		{
			name: "forward cycle",
			mutate: func(cg *config.Graph) {
				cg.Nodes[1].BackInputs = nil
				cg.Nodes[1].ControlInputs = []string{"b"}
			},
			is: cerror.ErrGraphCycle.Equal,
		},
		{
			name: "duplicate node",
			mutate: func(cg *config.Graph) {
				cg.Nodes = append(cg.Nodes, &config.Node{Name: "a", Type: "Relu", Engine: testutil.AICore})
			},
			is: cerror.ErrInvalidConfig.Equal,
		},
		{
			name: "empty subgraph",
			mutate: func(cg *config.Graph) {
				cg.Subgraphs = append(cg.Subgraphs, &config.Subgraph{Name: "empty", Engine: testutil.AICore})
			},
			is: cerror.ErrInvalidConfig.Equal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cg := loopGraph()
			tt.mutate(cg)
			_, err := Build(context.Background(), cg, testutil.Engines())
			require.Error(t, err)
			assert.True(t, tt.is(err), "unexpected error class: %v", err)
			assert.True(t, cerror.IsConfigError(err) || cerror.IsStructuralError(err))
		})
	}
}
