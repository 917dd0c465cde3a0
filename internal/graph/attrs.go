package graph

import (
	"math/big"

	"github.com/zclconf/go-cty/cty"
)

// Well-known node attribute names shared by the scheduling passes.
const (
	AttrStreamLabel     = "stream_label"
	AttrParallelGroup   = "parallel_group"
	AttrEngineStreamTag = "engine_stream_tag"
	AttrForceAttach     = "force_attach_stream"
	AttrFusion          = "fusion"
	AttrLoopActive      = "is_loop_active"
	AttrBranchGroup     = "branch_group"
	AttrBranchIndex     = "branch_index"
	AttrSubgraphBound   = "is_subgraph_boundary"
	AttrOwnsSubgraph    = "owns_subgraph"
	AttrTaskCluster     = "task_cluster"
	AttrEventID         = "event_id"
	AttrNotifyID        = "notify_id"
	AttrNotifyType      = "notify_type"
)

// Well-known node types.
const (
	TypeData          = "Data"
	TypeConst         = "Const"
	TypeConstant      = "Constant"
	TypeNetOutput     = "NetOutput"
	TypeStreamActive  = "StreamActive"
	TypeHcomAllReduce = "HcomAllReduce"
	TypeSend          = "Send"
	TypeRecv          = "Recv"
	TypeSendNotify    = "SendNotify"
	TypeRecvNotify    = "RecvNotify"
)

// Attr returns a known, non-null attribute value.
func (n *Node) Attr(name string) (cty.Value, bool) {
	v, ok := n.Attrs[name]
	if !ok || v.IsNull() || !v.IsKnown() {
		return cty.NilVal, false
	}
	return v, true
}

// SetAttr stores an attribute value, allocating the map if needed.
func (n *Node) SetAttr(name string, v cty.Value) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]cty.Value)
	}
	n.Attrs[name] = v
}

// StringAttr returns a string attribute. Numbers are formatted so that
// integer tags written without quotes still compare as strings.
func (n *Node) StringAttr(name string) (string, bool) {
	v, ok := n.Attr(name)
	if !ok {
		return "", false
	}
	switch v.Type() {
	case cty.String:
		return v.AsString(), true
	case cty.Number:
		return v.AsBigFloat().Text('f', -1), true
	}
	return "", false
}

// BoolAttr returns a boolean attribute, false when absent or mistyped.
func (n *Node) BoolAttr(name string) bool {
	v, ok := n.Attr(name)
	if !ok || v.Type() != cty.Bool {
		return false
	}
	return v.True()
}

// IntAttr returns an integral number attribute.
func (n *Node) IntAttr(name string) (int64, bool) {
	v, ok := n.Attr(name)
	if !ok || v.Type() != cty.Number {
		return 0, false
	}
	i, acc := v.AsBigFloat().Int64()
	if acc != big.Exact {
		return 0, false
	}
	return i, true
}

// StreamLabel returns the node's stream label, "" when unlabeled.
func (n *Node) StreamLabel() string {
	label, _ := n.StringAttr(AttrStreamLabel)
	return label
}
