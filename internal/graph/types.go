package graph

import (
	"math"

	"github.com/zclconf/go-cty/cty"
)

// NodeID is the dense index of a node inside its Graph.
type NodeID int

// SubgraphID is the dense index of a subgraph inside its Graph.
type SubgraphID int

const (
	// NoSubgraph marks a missing subgraph reference.
	NoSubgraph SubgraphID = -1
	// UnassignedStream is the stream id of a node or subgraph that has not
	// been placed on any stream.
	UnassignedStream int64 = -1
	// InvalidSyncID is recorded when an optional synchronization resource
	// could not be granted.
	InvalidSyncID uint32 = math.MaxUint32
)

// EdgeKind distinguishes data dependencies from pure ordering constraints.
type EdgeKind int

const (
	// DataEdge carries a tensor from producer to consumer.
	DataEdge EdgeKind = iota
	// ControlEdge only orders its endpoints.
	ControlEdge
)

func (k EdgeKind) String() string {
	if k == ControlEdge {
		return "control"
	}
	return "data"
}

// Edge is a directed dependency between two nodes. Back edges close loops
// (e.g. NextIteration to Merge) and are ignored by cycle detection and by
// reachability queries that must not cross loop iterations.
type Edge struct {
	From     NodeID
	To       NodeID
	Kind     EdgeKind
	BackEdge bool
}

// EngineClass groups engines by the kind of compute unit they drive.
type EngineClass string

const (
	ClassVector     EngineClass = "vector"
	ClassCube       EngineClass = "cube"
	ClassCollective EngineClass = "collective"
	ClassDSA        EngineClass = "dsa"
	ClassHostCPU    EngineClass = "host_cpu"
	ClassOther      EngineClass = "other"
)

// EngineConfig describes the placement rules of one engine.
type EngineConfig struct {
	ID          string
	SchedulerID string
	Class       EngineClass
	// Independent engines require a dedicated stream.
	Independent bool
	// Attach engines reuse whichever stream is convenient.
	Attach bool
	// SkipAssignStream engines never own a stream and inherit a neighbor's.
	SkipAssignStream bool
	// CompositeOf names the engine this one is an alias of, if any.
	CompositeOf string
}

// OwnsStream reports whether the engine unconditionally gets a stream of its
// own in dynamic-shape scheduling.
func (e *EngineConfig) OwnsStream() bool {
	if e == nil {
		return false
	}
	switch e.Class {
	case ClassCollective, ClassVector, ClassCube, ClassDSA:
		return true
	}
	return false
}

// TaskDef is one generated task of a node, as reported by code generation.
type TaskDef struct {
	StreamID     int64
	Multiplicity int
	Kind         string
}

// Node is a single vertex of the compute graph.
type Node struct {
	ID     NodeID
	Name   string
	Type   string
	TopoID int64
	// EngineID is the placement result of the partitioner.
	EngineID string
	Subgraph SubgraphID

	StreamID          int64
	AttachedStreamIDs []int64

	SendEventIDs  []uint32
	RecvEventIDs  []uint32
	SendNotifyIDs []uint32
	RecvNotifyIDs []uint32

	AttachedEventIDs  []uint32
	AttachedNotifyIDs []uint32

	// ActiveStreams lists the streams a stream-activation node starts.
	ActiveStreams []uint32

	Attrs map[string]cty.Value
	Tasks []TaskDef
}

// HasStream reports whether the node has been placed on a stream.
func (n *Node) HasStream() bool {
	return n.StreamID != UnassignedStream
}

// Boundary is a placeholder/end pair bridging two subgraphs: End is the
// producing node inside Producer, Placeholder the consuming node inside
// Consumer.
type Boundary struct {
	End         NodeID
	Placeholder NodeID
	Producer    SubgraphID
	Consumer    SubgraphID
}

// Subgraph is the atomic scheduling unit created by the partitioner.
type Subgraph struct {
	ID          SubgraphID
	Name        string
	Engine      *EngineConfig
	StreamLabel string
	// MaxParallel caps the number of streams the engine may spread this
	// subgraph's instances over; zero means one.
	MaxParallel int

	Nodes []NodeID
	// Inputs are the boundaries on which this subgraph is the consumer.
	Inputs []Boundary
	// Outputs are the boundaries on which this subgraph is the producer.
	Outputs []Boundary

	StreamID       int64
	ReusedSubgraph SubgraphID
}

// HasStream reports whether the subgraph has been placed on a stream.
func (s *Subgraph) HasStream() bool {
	return s.StreamID != UnassignedStream
}

// Graph is an arena of nodes and subgraphs plus their adjacency lists.
type Graph struct {
	Name    string
	Dynamic bool

	nodes     []*Node
	subgraphs []*Subgraph
	out       [][]Edge
	in        [][]Edge

	nodeByName     map[string]NodeID
	subgraphByName map[string]SubgraphID
	engines        map[string]*EngineConfig
}
