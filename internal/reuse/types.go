package reuse

import "github.com/specialistvlad/streamgrid/internal/graph"

// Kind is the type of attached resource.
type Kind int

const (
	Stream Kind = iota
	Event
	Notify
)

func (k Kind) String() string {
	switch k {
	case Stream:
		return "stream"
	case Event:
		return "event"
	case Notify:
		return "notify"
	}
	return "unknown"
}

// Scope identifies one shared resource: every request with the same scope
// receives the same ids.
type Scope struct {
	Group    string
	ReuseKey string
}

// Request is the canonical form of one attached-resource declaration.
type Request struct {
	Scope      Scope
	Kind       Kind
	Required   bool
	Count      int
	NotifyType uint32
}

// Member is a node together with the request that placed it in a group.
type Member struct {
	Node    *graph.Node
	Request Request
}

// Invalid is the id recorded when an optional request could not be granted.
const Invalid int64 = -1
