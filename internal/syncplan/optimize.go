package syncplan

import (
	"context"
	"slices"

	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	"github.com/specialistvlad/streamgrid/internal/graph"
)

// subsumeKey groups syncs that may stand in for each other: same two
// streams, and endpoints in the same branch arms, so that both syncs run in
// every invocation where either does. A zero branchKey means no arm.
type subsumeKey struct {
	from, to             int64
	fromBranch, toBranch branchKey
}

// DropSubsumed removes every forward sync made redundant by another sync
// between the same two streams. Stream order is topological order.
func (p *Plan) DropSubsumed(ctx context.Context, g *graph.Graph) int {
	pairs := make(map[subsumeKey][]*Sync)
	var order []subsumeKey
	for _, s := range p.Live() {
		if s.Back {
			continue
		}
		producer, consumer := g.Node(s.From), g.Node(s.To)
		fromBranch, _ := nodeBranch(producer)
		toBranch, _ := nodeBranch(consumer)
		k := subsumeKey{from: producer.StreamID, to: consumer.StreamID, fromBranch: fromBranch, toBranch: toBranch}
		if _, ok := pairs[k]; !ok {
			order = append(order, k)
		}
		pairs[k] = append(pairs[k], s)
	}

	dropped := 0
	for _, k := range order {
		syncs := pairs[k]
		// Latest producer first; for one producer, earliest consumer first.
		slices.SortStableFunc(syncs, func(a, b *Sync) int {
			pa, pb := g.Node(a.From).TopoID, g.Node(b.From).TopoID
			if pa != pb {
				return cmpInt64(pb, pa)
			}
			return cmpInt64(g.Node(a.To).TopoID, g.Node(b.To).TopoID)
		})
		earliest := int64(-1)
		for _, s := range syncs {
			c := g.Node(s.To).TopoID
			if earliest >= 0 && c >= earliest {
				s.removed = true
				dropped++
				continue
			}
			earliest = c
		}
	}
	if dropped > 0 {
		ctxlog.FromContext(ctx).Debug("Subsumed synchronization dropped.", "mode", p.Mode.String(), "dropped", dropped)
	}
	return dropped
}

// PruneByActivation removes syncs whose ordering is already guaranteed by a
// stream-activation node placed after the producer on the producer's stream.
// The activation node must run whenever the consumer does, so it sits in no
// branch arm or in the consumer's own arm.
func (p *Plan) PruneByActivation(ctx context.Context, g *graph.Graph, idx *graph.StreamIndex) int {
	pruned := 0
	for _, s := range p.Live() {
		if s.Back {
			continue
		}
		producer, consumer := g.Node(s.From), g.Node(s.To)
		consumerBranch, consumerInArm := nodeBranch(consumer)
		idx.After(producer, func(n *graph.Node) bool {
			if n.Type != graph.TypeStreamActive || n.BoolAttr(graph.AttrLoopActive) {
				return true
			}
			if b, inArm := nodeBranch(n); inArm && (!consumerInArm || b != consumerBranch) {
				return true
			}
			if slices.Contains(n.ActiveStreams, uint32(consumer.StreamID)) || g.Reaches(n.ID, consumer.ID) {
				s.removed = true
				pruned++
				return false
			}
			return true
		})
	}
	if pruned > 0 {
		ctxlog.FromContext(ctx).Debug("Synchronization covered by stream activation pruned.", "mode", p.Mode.String(), "pruned", pruned)
	}
	return pruned
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
