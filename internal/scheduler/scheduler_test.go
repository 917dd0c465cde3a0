package scheduler

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/streamgrid/internal/capability"
	"github.com/specialistvlad/streamgrid/internal/config"
	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/specialistvlad/streamgrid/internal/graph"
	"github.com/specialistvlad/streamgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// engineChain crosses from the vector engine to the host CPU and back.
func engineChain(t *testing.T, dynamic bool) *graph.Graph {
	b := testutil.NewGraph(t, "engines")
	b.Graph().Dynamic = dynamic
	b.Node("relu", "Relu", testutil.AICore)
	b.Node("where", "Where", testutil.AICPU, "relu")
	b.Node("ident", "Identity", testutil.GeLocal, "where")
	b.Node("out", "Add", testutil.AICore, "ident")
	return b.Build()
}

func countType(g *graph.Graph, typ string) int {
	n := 0
	for _, node := range g.Nodes() {
		if node.Type == typ {
			n++
		}
	}
	return n
}

// eventHolders counts, per event id, the nodes that send and receive it.
func eventHolders(g *graph.Graph) (senders, receivers map[uint32]int) {
	senders, receivers = make(map[uint32]int), make(map[uint32]int)
	for _, n := range g.Nodes() {
		for _, id := range n.SendEventIDs {
			senders[id]++
		}
		for _, id := range n.RecvEventIDs {
			receivers[id]++
		}
	}
	return senders, receivers
}

func TestSchedule(t *testing.T) {
	tests := []struct {
		name    string
		dynamic bool
		opts    config.Options
		want    Result
		sends   int
	}{
		{
			name:  "static events",
			opts:  config.Options{SyncMode: "event"},
			want:  Result{Graph: "engines", TotalStreamCount: 2, MainStreamCount: 2, EventCount: 2, NotifyTypes: []uint32{}},
			sends: 2,
		},
		{
			name:  "static notifies",
			opts:  config.Options{SyncMode: "notify"},
			want:  Result{Graph: "engines", TotalStreamCount: 2, MainStreamCount: 2, NotifyCount: 2, NotifyTypes: []uint32{0, 0}},
			sends: 0,
		},
		{
			name:    "dynamic events are not materialized",
			dynamic: true,
			opts:    config.Options{ACParallel: "0"},
			want:    Result{Graph: "engines", Dynamic: true, TotalStreamCount: 2, MainStreamCount: 2, EventCount: 2, NotifyTypes: []uint32{}},
			sends:   0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := engineChain(t, tt.dynamic)
			res, err := New(capability.NewTable(nil), false).Schedule(context.Background(), g, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *res)
			assert.Equal(t, tt.sends, countType(g, graph.TypeSend))
			assert.Equal(t, tt.want.NotifyCount, countType(g, graph.TypeSendNotify))

			senders, receivers := eventHolders(g)
			assert.Len(t, senders, tt.want.EventCount)
			for id, n := range senders {
				assert.Equal(t, 1, n, "senders of event %d", id)
				assert.Equal(t, 1, receivers[id], "receivers of event %d", id)
			}
		})
	}
}

func TestSchedule_Split(t *testing.T) {
	b := testutil.NewGraph(t, "heavy")
	for i, name := range []string{"a", "b", "c"} {
		var n *graph.Node
		if i == 0 {
			n = b.Node(name, "MatMul", testutil.AICore)
		} else {
			n = b.Node(name, "MatMul", testutil.AICore, []string{"a", "b"}[i-1])
		}
		n.Tasks = []graph.TaskDef{{StreamID: config.OwnStream, Multiplicity: 600, Kind: "kernel"}}
	}
	g := b.Build()

	res, err := New(capability.NewTable(nil), true).Schedule(context.Background(), g, config.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Splits)
	assert.Equal(t, int64(3), res.TotalStreamCount)
	assert.Equal(t, int64(1), res.MainStreamCount)
	assert.Equal(t, 2, res.EventCount)
	assert.Equal(t, capability.ClassNormal, res.StreamClass)
	assert.Equal(t, 2, countType(g, graph.TypeSend), "static splits are joined by explicit sync nodes")
	assert.Equal(t, 2, countType(g, graph.TypeRecv))
	for _, n := range g.Nodes() {
		if graph.IsSyncNode(n) {
			assert.Empty(t, n.Tasks)
			continue
		}
		assert.Equal(t, n.StreamID, n.Tasks[0].StreamID, "tasks follow %s", n.Name)
		assert.Empty(t, n.SendEventIDs, "%s keeps no event ids once materialized", n.Name)
		assert.Empty(t, n.RecvEventIDs, "%s keeps no event ids once materialized", n.Name)
	}
}

func TestSchedule_Errors(t *testing.T) {
	t.Run("invalid sync mode", func(t *testing.T) {
		_, err := New(capability.NewTable(nil), false).Schedule(context.Background(), engineChain(t, false), config.Options{SyncMode: "semaphore"})
		assert.True(t, cerror.ErrInvalidOption.Equal(err))
	})
	t.Run("invalid ac_parallel", func(t *testing.T) {
		_, err := New(capability.NewTable(nil), false).Schedule(context.Background(), engineChain(t, true), config.Options{ACParallel: "2"})
		assert.True(t, cerror.ErrInvalidOption.Equal(err))
	})
	t.Run("notify capacity", func(t *testing.T) {
		q := capability.NewTable(&config.Hardware{MaxNotifies: 1})
		_, err := New(q, false).Schedule(context.Background(), engineChain(t, false), config.Options{SyncMode: "notify"})
		assert.True(t, cerror.ErrNotifyCapacity.Equal(err))
	})
}

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	InitMetrics(registry)

	ok := graphsCounter.WithLabelValues("static", "ok")
	failed := graphsCounter.WithLabelValues("static", "config")
	okBefore, failedBefore := promtest.ToFloat64(ok), promtest.ToFloat64(failed)

	s := New(capability.NewTable(nil), false)
	_, err := s.Schedule(context.Background(), engineChain(t, false), config.Options{})
	require.NoError(t, err)
	_, err = s.Schedule(context.Background(), engineChain(t, false), config.Options{SyncMode: "semaphore"})
	require.Error(t, err)

	assert.Equal(t, okBefore+1, promtest.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, promtest.ToFloat64(failed))

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["streamgrid_scheduler_pass_duration_seconds"])
	assert.True(t, names["streamgrid_scheduler_graphs_total"])
}
