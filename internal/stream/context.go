package stream

import (
	"time"

	"github.com/specialistvlad/streamgrid/internal/graph"
)

// Options are the global switches of one allocation run.
type Options struct {
	SingleStream   bool
	HcomParallel   bool
	MemoryPriority bool
}

// Context is the mutable state of one allocation run. It is created per graph
// and never shared between graphs.
type Context struct {
	// NextStream is the next unused stream id.
	NextStream int64
	// DefaultStream is the stream inherited from a parent graph, or
	// graph.UnassignedStream at the root.
	DefaultStream int64
	Options       Options
	// MainStreams is the number of primary streams after renumbering.
	MainStreams int64
	// OnPass, when set, is called after every pass.
	OnPass func(p Pass, s Status, elapsed time.Duration)

	engineNext      map[string]int64
	engineStreamNum map[string]int64
	labelStreams    map[string]int64
	independent     map[string]map[string]int64
}

// NewContext creates the state for one root graph.
func NewContext(opts Options) *Context {
	return &Context{
		DefaultStream:   graph.UnassignedStream,
		Options:         opts,
		engineNext:      make(map[string]int64),
		engineStreamNum: make(map[string]int64),
		labelStreams:    make(map[string]int64),
		independent:     make(map[string]map[string]int64),
	}
}

// NewChildContext creates the state for a graph nested in a parent whose
// nodes run on defaultStream.
func NewChildContext(opts Options, defaultStream int64) *Context {
	sc := NewContext(opts)
	sc.DefaultStream = defaultStream
	sc.NextStream = defaultStream + 1
	return sc
}

func (sc *Context) nested() bool {
	return sc.DefaultStream != graph.UnassignedStream
}

func (sc *Context) newStream() int64 {
	id := sc.NextStream
	sc.NextStream++
	return id
}
