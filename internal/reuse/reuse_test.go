package reuse

import (
	"testing"

	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/specialistvlad/streamgrid/internal/graph"
	"github.com/specialistvlad/streamgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func twoChains(t *testing.T, key0, key1 string) *graph.Graph {
	b := testutil.NewGraph(t, "chains")
	b.Node("data", graph.TypeData, testutil.AICore)
	b.Node("relu1", "Relu", testutil.AICore, "data")
	b.Node("relu2", "Relu", testutil.AICore, "data")
	b.Attr("relu1", LegacyAttr(Event), testutil.AttachedDecl("grp", key0, true))
	b.Attr("relu2", LegacyAttr(Event), testutil.AttachedDecl("grp", key1, true))
	return b.Build()
}

func eventSetter(m Member, ids []int64) {
	for _, id := range ids {
		m.Node.AttachedEventIDs = append(m.Node.AttachedEventIDs, uint32(id))
	}
}

func TestAssignAll_Events(t *testing.T) {
	testCases := []struct {
		name      string
		key0      string
		key1      string
		wantCount int64
		wantSame  bool
	}{
		{name: "same reuse key shares one event", key0: "res_key", key1: "res_key", wantCount: 1, wantSame: true},
		{name: "distinct keys get distinct events", key0: "res_key0", key1: "res_key1", wantCount: 2, wantSame: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := twoChains(t, tc.key0, tc.key1)
			counter := &Counter{Kind: Event, Next: 3, Limit: -1}

			_, err := AssignAll(g, Declarations(Event), counter, eventSetter)
			require.NoError(t, err)

			r1, _ := g.NodeByName("relu1")
			r2, _ := g.NodeByName("relu2")
			require.Len(t, r1.AttachedEventIDs, 1)
			require.Len(t, r2.AttachedEventIDs, 1)
			assert.Equal(t, tc.wantSame, r1.AttachedEventIDs[0] == r2.AttachedEventIDs[0])
			assert.Equal(t, uint32(3), r1.AttachedEventIDs[0])
			assert.Equal(t, 3+tc.wantCount, counter.Next)
		})
	}
}

func TestAssignShared_OptionalNotifyOverLimit(t *testing.T) {
	b := testutil.NewGraph(t, "notify")
	b.Node("n", "Relu", testutil.AICore)
	b.Attr("n", LegacyAttr(Notify), testutil.AttachedDecl("grp", "k", false))
	g := b.Build()

	counter := &Counter{Kind: Notify, Next: 0, Limit: 0}
	_, err := AssignAll(g, Declarations(Notify), counter, func(m Member, ids []int64) {
		for _, id := range ids {
			if id == Invalid {
				m.Node.AttachedNotifyIDs = append(m.Node.AttachedNotifyIDs, graph.InvalidSyncID)
				continue
			}
			m.Node.AttachedNotifyIDs = append(m.Node.AttachedNotifyIDs, uint32(id))
		}
	})
	require.NoError(t, err)

	n, _ := g.NodeByName("n")
	assert.Equal(t, []uint32{graph.InvalidSyncID}, n.AttachedNotifyIDs)
	assert.Equal(t, int64(0), counter.Next)
}

func TestAssignShared_RequiredNotifyOverLimit(t *testing.T) {
	b := testutil.NewGraph(t, "notify")
	b.Node("a", "Relu", testutil.AICore)
	b.Node("b", "Relu", testutil.AICore, "a")
	b.Attr("a", LegacyAttr(Notify), testutil.AttachedDecl("grp", "k", false))
	b.Attr("b", LegacyAttr(Notify), testutil.AttachedDecl("grp", "k", true))
	g := b.Build()

	counter := &Counter{Kind: Notify, Limit: 0}
	_, err := AssignAll(g, Declarations(Notify), counter, func(Member, []int64) {})
	require.Error(t, err)
	assert.True(t, cerror.ErrNotifyCapacity.Equal(err))
}

func TestDeclarations(t *testing.T) {
	listDecl := func(entries ...cty.Value) cty.Value { return cty.TupleVal(entries) }
	entry := func(attrs map[string]cty.Value) cty.Value { return cty.ObjectVal(attrs) }

	testCases := []struct {
		name    string
		attrs   map[string]cty.Value
		want    []Request
		wantErr func(error) bool
	}{
		{
			name: "no declaration",
		},
		{
			name:  "legacy form defaults to required with one id",
			attrs: map[string]cty.Value{LegacyAttr(Stream): testutil.AttachedDecl("g", "k", true)},
			want:  []Request{{Scope: Scope{"g", "k"}, Kind: Stream, Required: true, Count: 1}},
		},
		{
			name: "list form carries count and notify type",
			attrs: map[string]cty.Value{ListAttr(Stream): listDecl(
				entry(map[string]cty.Value{"group_name": cty.StringVal("g"), "reuse_key": cty.StringVal("a"), "count": cty.NumberIntVal(2)}),
				entry(map[string]cty.Value{"group_name": cty.StringVal("g"), "reuse_key": cty.StringVal("b"), "required": cty.False, "notify_type": cty.NumberIntVal(3)}),
			)},
			want: []Request{
				{Scope: Scope{"g", "a"}, Kind: Stream, Required: true, Count: 2},
				{Scope: Scope{"g", "b"}, Kind: Stream, Required: false, Count: 1, NotifyType: 3},
			},
		},
		{
			name: "both forms merge, list wins on the same scope",
			attrs: map[string]cty.Value{
				LegacyAttr(Stream): testutil.AttachedDecl("g", "a", false),
				ListAttr(Stream): listDecl(
					entry(map[string]cty.Value{"group_name": cty.StringVal("g"), "reuse_key": cty.StringVal("a"), "count": cty.NumberIntVal(2)}),
				),
			},
			want: []Request{{Scope: Scope{"g", "a"}, Kind: Stream, Required: true, Count: 2}},
		},
		{
			name: "legacy entry with its own scope is kept next to the list",
			attrs: map[string]cty.Value{
				LegacyAttr(Stream): testutil.AttachedDecl("g", "z", true),
				ListAttr(Stream): listDecl(
					entry(map[string]cty.Value{"group_name": cty.StringVal("g"), "reuse_key": cty.StringVal("a")}),
				),
			},
			want: []Request{
				{Scope: Scope{"g", "a"}, Kind: Stream, Required: true, Count: 1},
				{Scope: Scope{"g", "z"}, Kind: Stream, Required: true, Count: 1},
			},
		},
		{
			name: "missing reuse key is a config error",
			attrs: map[string]cty.Value{LegacyAttr(Stream): cty.ObjectVal(map[string]cty.Value{
				"group_name": cty.StringVal("g"),
			})},
			wantErr: cerror.ErrAttachedScopeMissing.Equal,
		},
		{
			name: "missing group is a config error",
			attrs: map[string]cty.Value{LegacyAttr(Stream): cty.ObjectVal(map[string]cty.Value{
				"reuse_key": cty.StringVal("k"),
			})},
			wantErr: cerror.IsConfigError,
		},
		{
			name:    "list attribute of the wrong shape",
			attrs:   map[string]cty.Value{ListAttr(Stream): cty.StringVal("nope")},
			wantErr: cerror.IsConfigError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n := &graph.Node{Name: "n", Attrs: tc.attrs}
			got, err := Declarations(Stream)(n)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tc.wantErr(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassifyByGroup_FirstSeenOrder(t *testing.T) {
	b := testutil.NewGraph(t, "order")
	b.Node("a", "Relu", testutil.AICore)
	b.Node("b", "Relu", testutil.AICore, "a")
	b.Node("c", "Relu", testutil.AICore, "b")
	b.Attr("a", LegacyAttr(Stream), testutil.AttachedDecl("g", "second", true))
	b.Attr("b", LegacyAttr(Stream), testutil.AttachedDecl("g", "first", true))
	b.Attr("c", LegacyAttr(Stream), testutil.AttachedDecl("g", "second", true))
	g := b.Build()

	groups, err := ClassifyByGroup(g, Declarations(Stream))
	require.NoError(t, err)
	assert.Equal(t, []Scope{{"g", "second"}, {"g", "first"}}, groups.Scopes())
	assert.Len(t, groups.Members(Scope{"g", "second"}), 2)
	assert.Equal(t, 2, groups.Len())
}
