package stream

import (
	"context"

	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	"github.com/specialistvlad/streamgrid/internal/graph"
	"github.com/specialistvlad/streamgrid/internal/reuse"
)

// AssignAttached grants attached streams to every node that declares them.
// It runs after every primary stream is final, so attached ids start at
// sc.NextStream and never collide with a primary stream.
func AssignAttached(ctx context.Context, g *graph.Graph, sc *Context) (Status, error) {
	counter := &reuse.Counter{Kind: reuse.Stream, Next: sc.NextStream, Limit: -1}
	groups, err := reuse.AssignAll(g, reuse.Declarations(reuse.Stream), counter, func(m reuse.Member, ids []int64) {
		m.Node.AttachedStreamIDs = append(m.Node.AttachedStreamIDs, ids...)
	})
	if err != nil {
		return NotChanged, err
	}
	if groups.Len() == 0 {
		return NotChanged, nil
	}
	ctxlog.FromContext(ctx).Debug("Attached streams assigned.", "groups", groups.Len(), "first", sc.NextStream, "next", counter.Next)
	sc.NextStream = counter.Next
	return Changed, nil
}
