package graph

import (
	"slices"

	"github.com/google/btree"
	"golang.org/x/exp/maps"
)

const indexDegree = 16

// StreamIndex keeps, per stream, the nodes placed on it ordered by
// topological id. Sync optimization and stream splitting walk streams in
// execution order and need "next node on my stream" lookups, which a btree
// answers without re-sorting after every move.
type StreamIndex struct {
	trees map[int64]*btree.BTreeG[*Node]
}

func byTopo(a, b *Node) bool {
	if a.TopoID != b.TopoID {
		return a.TopoID < b.TopoID
	}
	return a.ID < b.ID
}

// NewStreamIndex indexes every node of g that has a stream.
func NewStreamIndex(g *Graph) *StreamIndex {
	x := &StreamIndex{trees: make(map[int64]*btree.BTreeG[*Node])}
	for _, n := range g.nodes {
		if n.HasStream() {
			x.insert(n)
		}
	}
	return x
}

func (x *StreamIndex) insert(n *Node) {
	tree, ok := x.trees[n.StreamID]
	if !ok {
		tree = btree.NewG[*Node](indexDegree, byTopo)
		x.trees[n.StreamID] = tree
	}
	tree.ReplaceOrInsert(n)
}

// Streams returns the indexed stream ids in ascending order.
func (x *StreamIndex) Streams() []int64 {
	ids := maps.Keys(x.trees)
	slices.Sort(ids)
	return ids
}

// Len returns the number of nodes on a stream.
func (x *StreamIndex) Len(stream int64) int {
	tree, ok := x.trees[stream]
	if !ok {
		return 0
	}
	return tree.Len()
}

// Nodes returns the nodes of a stream in execution order.
func (x *StreamIndex) Nodes(stream int64) []*Node {
	tree, ok := x.trees[stream]
	if !ok {
		return nil
	}
	nodes := make([]*Node, 0, tree.Len())
	tree.Ascend(func(n *Node) bool {
		nodes = append(nodes, n)
		return true
	})
	return nodes
}

// After calls fn for each node on n's stream ordered after n, stopping when
// fn returns false.
func (x *StreamIndex) After(n *Node, fn func(*Node) bool) {
	tree, ok := x.trees[n.StreamID]
	if !ok {
		return
	}
	tree.AscendGreaterOrEqual(n, func(item *Node) bool {
		if item == n {
			return true
		}
		return fn(item)
	})
}

// Next returns the node directly after n on its stream.
func (x *StreamIndex) Next(n *Node) (*Node, bool) {
	var next *Node
	x.After(n, func(item *Node) bool {
		next = item
		return false
	})
	return next, next != nil
}

// Prev returns the node directly before n on its stream.
func (x *StreamIndex) Prev(n *Node) (*Node, bool) {
	tree, ok := x.trees[n.StreamID]
	if !ok {
		return nil, false
	}
	var prev *Node
	tree.DescendLessOrEqual(n, func(item *Node) bool {
		if item == n {
			return true
		}
		prev = item
		return false
	})
	return prev, prev != nil
}

// Move re-homes n onto another stream and updates its StreamID.
func (x *StreamIndex) Move(n *Node, stream int64) {
	if tree, ok := x.trees[n.StreamID]; ok {
		tree.Delete(n)
		if tree.Len() == 0 {
			delete(x.trees, n.StreamID)
		}
	}
	n.StreamID = stream
	if stream != UnassignedStream {
		x.insert(n)
	}
}

// Add indexes a node that was created after the index was built.
func (x *StreamIndex) Add(n *Node) {
	if n.HasStream() {
		x.insert(n)
	}
}
