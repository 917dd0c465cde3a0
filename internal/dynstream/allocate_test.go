package dynstream

import (
	"context"
	"testing"

	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/specialistvlad/streamgrid/internal/graph"
	"github.com/specialistvlad/streamgrid/internal/syncplan"
	"github.com/specialistvlad/streamgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func streamOf(t *testing.T, g *graph.Graph, name string) int64 {
	return testutil.StreamOf(t, g, name)
}

func aicpuChain(t *testing.T) *graph.Graph {
	b := testutil.NewGraph(t, "aicpu")
	b.Node("data", graph.TypeData, testutil.GeLocal)
	b.Node("relu", "Relu", testutil.AICore, "data")
	b.Node("where", "Where", testutil.AICPU, "relu")
	b.Node("ident", "Identity", testutil.GeLocal, "where")
	b.Node("output", graph.TypeNetOutput, testutil.GeLocal, "ident")
	return b.Build()
}

func TestAllocate_CPUIslandWithoutParallel(t *testing.T) {
	g := aicpuChain(t)
	ctx := context.Background()

	sc, err := Allocate(ctx, g, Options{ACParallel: "0"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), sc.MainStreams)
	assert.Equal(t, MainStream, streamOf(t, g, "data"))
	assert.Equal(t, MainStream, streamOf(t, g, "relu"))
	assert.Equal(t, MainStream, streamOf(t, g, "output"))
	assert.NotEqual(t, MainStream, streamOf(t, g, "where"))
	assert.Equal(t, streamOf(t, g, "where"), streamOf(t, g, "ident"))

	res, err := syncplan.Run(ctx, g, syncplan.Options{Mode: syncplan.Events, MaxNotifies: -1})
	require.NoError(t, err)
	assert.Equal(t, 2, res.EventCount, "one event into the CPU island and one out of it")
}

func TestAllocate_HostCPUPolicy(t *testing.T) {
	build := func(t *testing.T) *graph.Graph {
		b := testutil.NewGraph(t, "cpu")
		b.Node("relu", "Relu", testutil.AICore)
		b.Node("w1", "Where", testutil.AICPU, "relu")
		b.Node("w2", "Unique", testutil.AICPU, "relu")
		b.Node("add", "Add", testutil.AICore, "w1", "w2")
		return b.Build()
	}

	t.Run("blocking operators are isolated", func(t *testing.T) {
		g := build(t)
		sc, err := Allocate(context.Background(), g, Options{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), sc.MainStreams)
		assert.NotEqual(t, streamOf(t, g, "w1"), streamOf(t, g, "w2"))
	})

	t.Run("overlap shares one CPU stream", func(t *testing.T) {
		g := build(t)
		sc, err := Allocate(context.Background(), g, Options{ACParallel: "1"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), sc.MainStreams)
		assert.Equal(t, streamOf(t, g, "w1"), streamOf(t, g, "w2"))
		assert.NotEqual(t, streamOf(t, g, "relu"), streamOf(t, g, "w1"))
	})

	t.Run("custom blocking list", func(t *testing.T) {
		g := build(t)
		sc, err := Allocate(context.Background(), g, Options{CPUBlockingOps: []string{"Where"}})
		require.NoError(t, err)
		assert.Equal(t, int64(3), sc.MainStreams)
		assert.NotEqual(t, streamOf(t, g, "w1"), streamOf(t, g, "w2"), "Unique falls back to the engine stream")
	})
}

func TestAllocate_OwningEngines(t *testing.T) {
	b := testutil.NewGraph(t, "owners")
	b.Node("a", "Relu", testutil.AICore)
	b.Node("h1", "HcomAllReduce", testutil.HCCL, "a")
	b.Node("d", "DSARandomNormal", testutil.DSA, "a")
	b.Node("h2", "HcomAllReduce", testutil.HCCL, "h1", "d")
	b.Node("z", "Add", testutil.AICore, "h2")
	g := b.Build()

	sc, err := Allocate(context.Background(), g, Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), sc.MainStreams)
	assert.Equal(t, MainStream, streamOf(t, g, "a"))
	assert.Equal(t, MainStream, streamOf(t, g, "z"))
	assert.Equal(t, streamOf(t, g, "h1"), streamOf(t, g, "h2"))
	assert.NotEqual(t, streamOf(t, g, "h1"), streamOf(t, g, "d"))
	assert.NotEqual(t, MainStream, streamOf(t, g, "d"))
}

func TestAllocate_LabelsCoalesceAndEmptyStreamsArePruned(t *testing.T) {
	b := testutil.NewGraph(t, "labels")
	b.Node("a", "Relu", testutil.AICore)
	b.Node("h", "HcomBroadcast", testutil.HCCL, "a")
	b.Node("w", "Cast", testutil.AICPU, "a")
	b.Attr("h", graph.AttrStreamLabel, cty.StringVal("L"))
	b.Attr("w", graph.AttrStreamLabel, cty.StringVal("L"))
	g := b.Build()

	sc, err := Allocate(context.Background(), g, Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), sc.MainStreams)
	assert.Equal(t, streamOf(t, g, "h"), streamOf(t, g, "w"))
	assert.Equal(t, int64(1), streamOf(t, g, "h"))
}

func TestAllocate_ForcedMainStream(t *testing.T) {
	b := testutil.NewGraph(t, "forced")
	b.Node("relu", "Relu", testutil.AICore)
	b.Node("if", "If", testutil.AICPU, "relu")
	b.Node("bound", "Cast", testutil.AICPU, "if")
	b.Attr("if", graph.AttrOwnsSubgraph, cty.True)
	b.Attr("bound", graph.AttrSubgraphBound, cty.True)
	g := b.Build()

	sc, err := Allocate(context.Background(), g, Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), sc.MainStreams)
	for _, n := range g.Nodes() {
		assert.Equal(t, MainStream, n.StreamID, n.Name)
	}
}

func TestAllocate_InvalidACParallel(t *testing.T) {
	g := aicpuChain(t)
	_, err := Allocate(context.Background(), g, Options{ACParallel: "2"})
	require.Error(t, err)
	assert.True(t, cerror.ErrInvalidOption.Equal(err))
	assert.True(t, cerror.IsConfigError(err))
}
