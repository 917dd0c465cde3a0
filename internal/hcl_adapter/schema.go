package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Hardware []*Hardware `hcl:"hardware,block"`
	Engines  []*Engine   `hcl:"engine,block"`
	Graphs   []*Graph    `hcl:"graph,block"`
	Remain   hcl.Body    `hcl:",remain"`
}

// Hardware represents a `hardware` block.
type Hardware struct {
	MaxNotifies   *int           `hcl:"max_notifies,optional"`
	StreamClasses []*StreamClass `hcl:"stream_class,block"`
}

// StreamClass represents a `stream_class "name"` block inside `hardware`.
type StreamClass struct {
	Name       string `hcl:"name,label"`
	MaxStreams int    `hcl:"max_streams"`
	MaxTasks   int    `hcl:"max_tasks"`
}

// Engine represents an `engine "name"` block.
type Engine struct {
	Name             string `hcl:"name,label"`
	Scheduler        string `hcl:"scheduler,optional"`
	Class            string `hcl:"class,optional"`
	Independent      bool   `hcl:"independent,optional"`
	Attach           bool   `hcl:"attach,optional"`
	SkipAssignStream bool   `hcl:"skip_assign_stream,optional"`
	CompositeOf      string `hcl:"composite_of,optional"`
}

// Graph represents a `graph "name"` block.
type Graph struct {
	Name      string      `hcl:"name,label"`
	Dynamic   bool        `hcl:"dynamic,optional"`
	Options   *Options    `hcl:"options,block"`
	Subgraphs []*Subgraph `hcl:"subgraph,block"`
	Nodes     []*Node     `hcl:"node,block"`
}

// Options represents the `options` block of a graph.
type Options struct {
	SingleStream   bool     `hcl:"single_stream,optional"`
	HcomParallel   bool     `hcl:"hcom_parallel,optional"`
	MemoryPriority bool     `hcl:"memory_priority,optional"`
	TraceTasks     bool     `hcl:"trace_tasks,optional"`
	ACParallel     string   `hcl:"ac_parallel,optional"`
	SyncMode       string   `hcl:"sync_mode,optional"`
	StreamClass    string   `hcl:"stream_class,optional"`
	CPUBlockingOps []string `hcl:"cpu_blocking_ops,optional"`
}

// Subgraph represents a `subgraph "name"` block.
type Subgraph struct {
	Name        string   `hcl:"name,label"`
	Engine      string   `hcl:"engine,optional"`
	StreamLabel string   `hcl:"stream_label,optional"`
	MaxParallel int      `hcl:"max_parallel,optional"`
	Nodes       []string `hcl:"nodes"`
}

// Node represents a `node "name"` block. Attrs and Tasks stay expressions
// until translation so that arbitrary object shapes can be decoded.
type Node struct {
	Name          string         `hcl:"name,label"`
	Type          string         `hcl:"type"`
	Engine        string         `hcl:"engine,optional"`
	Subgraph      string         `hcl:"subgraph,optional"`
	Inputs        []string       `hcl:"inputs,optional"`
	ControlInputs []string       `hcl:"control_inputs,optional"`
	BackInputs    []string       `hcl:"back_inputs,optional"`
	Attrs         hcl.Expression `hcl:"attrs,optional"`
	Tasks         hcl.Expression `hcl:"tasks,optional"`
}
