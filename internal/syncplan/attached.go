package syncplan

import (
	"context"

	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	"github.com/specialistvlad/streamgrid/internal/graph"
	"github.com/specialistvlad/streamgrid/internal/reuse"
)

// AssignAttachedEvents grants attached events numbered after the first
// `next` ids and returns the new event total.
func AssignAttachedEvents(ctx context.Context, g *graph.Graph, next int) (int, error) {
	counter := &reuse.Counter{Kind: reuse.Event, Next: int64(next), Limit: -1}
	groups, err := reuse.AssignAll(g, reuse.Declarations(reuse.Event), counter, func(m reuse.Member, ids []int64) {
		m.Node.AttachedEventIDs = append(m.Node.AttachedEventIDs, toSyncIDs(ids)...)
	})
	if err != nil {
		return next, err
	}
	if groups.Len() > 0 {
		ctxlog.FromContext(ctx).Debug("Attached events assigned.", "groups", groups.Len(), "events", counter.Next)
	}
	return int(counter.Next), nil
}

// AssignAttachedNotifies grants attached notifies numbered after the first
// len(types) ids, never going past limit (negative for no limit). It returns
// the type of every notify id.
func AssignAttachedNotifies(ctx context.Context, g *graph.Graph, types []uint32, limit int) ([]uint32, error) {
	counter := &reuse.Counter{Kind: reuse.Notify, Next: int64(len(types)), Limit: int64(limit)}
	groups, err := reuse.AssignAll(g, reuse.Declarations(reuse.Notify), counter, func(m reuse.Member, ids []int64) {
		m.Node.AttachedNotifyIDs = append(m.Node.AttachedNotifyIDs, toSyncIDs(ids)...)
		for _, id := range ids {
			if id == reuse.Invalid {
				continue
			}
			for int64(len(types)) <= id {
				types = append(types, 0)
			}
			types[id] = m.Request.NotifyType
		}
	})
	if err != nil {
		return types, err
	}
	if groups.Len() > 0 {
		ctxlog.FromContext(ctx).Debug("Attached notifies assigned.", "groups", groups.Len(), "notifies", counter.Next)
	}
	return types, nil
}

func toSyncIDs(ids []int64) []uint32 {
	out := make([]uint32, 0, len(ids))
	for _, id := range ids {
		if id == reuse.Invalid {
			out = append(out, graph.InvalidSyncID)
			continue
		}
		out = append(out, uint32(id))
	}
	return out
}
