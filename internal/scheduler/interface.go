package scheduler

import (
	"context"

	"github.com/specialistvlad/streamgrid/internal/config"
	"github.com/specialistvlad/streamgrid/internal/graph"
)

// Scheduler assigns streams and synchronization to a graph.
//
// A Scheduler holds no per-graph state: every call builds a fresh allocation
// context, so independent graphs may be scheduled from separate goroutines.
// The graph itself is mutated in place and must not be shared between
// concurrent calls.
type Scheduler interface {
	// Schedule runs every stage on g. On error nothing about g should be
	// handed to code generation.
	Schedule(ctx context.Context, g *graph.Graph, opts config.Options) (*Result, error)
}

// Result is the summary of one scheduled graph.
type Result struct {
	Graph            string   `json:"graph"`
	Dynamic          bool     `json:"dynamic"`
	TotalStreamCount int64    `json:"total_stream_count"`
	MainStreamCount  int64    `json:"main_stream_count"`
	EventCount       int      `json:"event_count"`
	NotifyCount      int      `json:"notify_count"`
	NotifyTypes      []uint32 `json:"notify_type_list"`
	// Splits and StreamClass are set when the splitter ran.
	Splits      int    `json:"splits,omitempty"`
	StreamClass string `json:"stream_class,omitempty"`
}
