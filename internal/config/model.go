package config

import (
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of everything the
// scheduler is fed: hardware limits, engine placement rules and the
// partitioned graphs to schedule.
type Model struct {
	Hardware *Hardware
	Engines  map[string]*Engine
	Graphs   []*Graph
}

// Hardware holds the limits answered by the capability query.
type Hardware struct {
	MaxNotifies   int
	StreamClasses map[string]*StreamClass
}

// StreamClass is one class of hardware stream and its limits.
type StreamClass struct {
	Name       string
	MaxStreams int
	MaxTasks   int
}

// Engine is the format-agnostic representation of an `engine` block.
type Engine struct {
	Name             string
	Scheduler        string
	Class            string
	Independent      bool
	Attach           bool
	SkipAssignStream bool
	CompositeOf      string
}

// Graph is one partitioned compute graph to schedule.
type Graph struct {
	Name      string
	Dynamic   bool
	Options   Options
	Subgraphs []*Subgraph
	Nodes     []*Node
}

// Options are the per-graph scheduling switches.
type Options struct {
	SingleStream   bool
	HcomParallel   bool
	MemoryPriority bool
	TraceTasks     bool
	// ACParallel is the raw AI-CPU/AI-core parallel switch: "", "0" or "1".
	ACParallel     string
	SyncMode       string
	StreamClass    string
	CPUBlockingOps []string
}

// Subgraph is the format-agnostic representation of a `subgraph` block.
type Subgraph struct {
	Name        string
	Engine      string
	StreamLabel string
	MaxParallel int
	Nodes       []string
}

// Node is the format-agnostic representation of a `node` block.
type Node struct {
	Name   string
	Type   string
	Engine string
	// Subgraph names the subgraph the node joins, in addition to the
	// subgraph block's own node list.
	Subgraph      string
	Inputs        []string
	ControlInputs []string
	// BackInputs are loop-closing control inputs.
	BackInputs []string
	Attrs      map[string]cty.Value
	Tasks      []*Task
}

// OwnStream marks a task issued on its node's own stream.
const OwnStream int64 = -1

// Task is one task definition produced by code generation.
type Task struct {
	Stream int64
	Count  int
	Kind   string
}

// NewModel returns an empty model ready to be merged into.
func NewModel() *Model {
	return &Model{
		Engines: make(map[string]*Engine),
	}
}
