package syncplan

import (
	"context"
	"slices"

	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/specialistvlad/streamgrid/internal/graph"
)

// Mode selects the synchronization primitive.
type Mode int

const (
	Events Mode = iota
	Notifies
)

func (m Mode) String() string {
	if m == Notifies {
		return "notify"
	}
	return "event"
}

// ParseMode converts the configured sync mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "event":
		return Events, nil
	case "notify":
		return Notifies, nil
	}
	return Events, cerror.ErrInvalidOption.GenWithStackByArgs(s, "sync_mode", `"event", "notify"`)
}

// Sync is one producer/consumer synchronization.
type Sync struct {
	ID   uint32
	From graph.NodeID
	To   graph.NodeID
	// Back marks a sync across a loop-closing edge.
	Back     bool
	removed  bool
	branched bool
	branch   branchKey
}

// Plan is the synchronization overlay of one graph.
type Plan struct {
	Mode  Mode
	syncs []*Sync
	// Count is the number of distinct ids after Finalize.
	Count int
	// Inserted is the number of syncs before any optimization.
	Inserted int
	// NotifyTypes holds one type per notify id when Mode is Notifies.
	NotifyTypes []uint32
}

// Live returns the syncs that survived optimization, in insertion order.
func (p *Plan) Live() []*Sync {
	out := make([]*Sync, 0, len(p.syncs))
	for _, s := range p.syncs {
		if !s.removed {
			out = append(out, s)
		}
	}
	return out
}

// Insert walks every data and control edge in topological order and adds a
// sync for each pair of assigned nodes on different streams. Back edges are
// included since the loop body still needs to wait on them.
func Insert(ctx context.Context, g *graph.Graph, mode Mode) *Plan {
	p := &Plan{Mode: mode}
	seen := make(map[[2]graph.NodeID]struct{})
	for _, n := range g.TopoOrder() {
		if !n.HasStream() {
			continue
		}
		for _, e := range g.OutEdges(n.ID) {
			c := g.Node(e.To)
			if !c.HasStream() || c.StreamID == n.StreamID {
				continue
			}
			key := [2]graph.NodeID{e.From, e.To}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			p.syncs = append(p.syncs, &Sync{ID: uint32(len(p.syncs)), From: e.From, To: e.To, Back: e.BackEdge})
		}
	}
	p.Inserted = len(p.syncs)
	ctxlog.FromContext(ctx).Debug("Synchronization inserted.", "mode", mode.String(), "count", p.Inserted)
	return p
}

// Finalize numbers the live syncs and records the ids on their endpoints.
func (p *Plan) Finalize(g *graph.Graph) {
	live := p.Live()
	var global []*Sync
	arms := make(map[string]map[int64][]*Sync)
	for _, s := range live {
		key, ok := branchOf(g, s)
		if !ok {
			global = append(global, s)
			continue
		}
		s.branched = true
		s.branch = key
		if arms[key.group] == nil {
			arms[key.group] = make(map[int64][]*Sync)
		}
		arms[key.group][key.index] = append(arms[key.group][key.index], s)
	}

	next := uint32(0)
	for _, s := range global {
		s.ID = next
		next++
	}
	groups := make([]string, 0, len(arms))
	for group := range arms {
		groups = append(groups, group)
	}
	slices.Sort(groups)
	for _, group := range groups {
		width := 0
		for _, syncs := range arms[group] {
			for i, s := range syncs {
				s.ID = next + uint32(i)
			}
			width = max(width, len(syncs))
		}
		next += uint32(width)
	}
	p.Count = int(next)

	for _, n := range g.Nodes() {
		if p.Mode == Notifies {
			n.SendNotifyIDs, n.RecvNotifyIDs = nil, nil
		} else {
			n.SendEventIDs, n.RecvEventIDs = nil, nil
		}
	}
	for _, s := range live {
		from, to := g.Node(s.From), g.Node(s.To)
		if p.Mode == Notifies {
			from.SendNotifyIDs = append(from.SendNotifyIDs, s.ID)
			to.RecvNotifyIDs = append(to.RecvNotifyIDs, s.ID)
		} else {
			from.SendEventIDs = append(from.SendEventIDs, s.ID)
			to.RecvEventIDs = append(to.RecvEventIDs, s.ID)
		}
	}
	if p.Mode == Notifies {
		p.NotifyTypes = make([]uint32, p.Count)
	}
}

// Verify checks that every id has exactly one sender and one receiver per
// branch arm and that no sync joins two nodes on the same stream.
func (p *Plan) Verify(g *graph.Graph) error {
	type slot struct {
		id     uint32
		branch branchKey
	}
	senders := make(map[slot]int)
	receivers := make(map[slot]int)
	for _, s := range p.Live() {
		from, to := g.Node(s.From), g.Node(s.To)
		if from.StreamID == to.StreamID {
			return cerror.ErrSyncSameStream.GenWithStackByArgs(p.Mode.String(), s.ID, from.Name, to.Name, from.StreamID)
		}
		k := slot{id: s.ID, branch: s.branch}
		senders[k]++
		receivers[k]++
	}
	for k, n := range senders {
		if n != 1 || receivers[k] != 1 {
			return cerror.ErrSyncUnpaired.GenWithStackByArgs(p.Mode.String(), k.id, n, receivers[k])
		}
	}
	return nil
}
