package syncplan

import (
	"context"
	"fmt"

	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	"github.com/specialistvlad/streamgrid/internal/graph"
	"github.com/zclconf/go-cty/cty"
)

// Materialize turns every live sync into a send node right after the
// producer and a receive node right before the consumer on their streams.
// The ids move from the endpoints onto the new nodes, so each id ends up with
// exactly one sender and one receiver. The new nodes get topological ids
// after every existing node, and control edges pin them into stream order.
// Must run after Finalize.
func (p *Plan) Materialize(ctx context.Context, g *graph.Graph) error {
	sendType, recvType := graph.TypeSend, graph.TypeRecv
	if p.Mode == Notifies {
		sendType, recvType = graph.TypeSendNotify, graph.TypeRecvNotify
	}

	for _, n := range g.Nodes() {
		if p.Mode == Notifies {
			n.SendNotifyIDs, n.RecvNotifyIDs = nil, nil
		} else {
			n.SendEventIDs, n.RecvEventIDs = nil, nil
		}
	}

	idx := graph.NewStreamIndex(g)
	topo := g.NextTopoID()
	created := 0
	for _, s := range p.Live() {
		producer, consumer := g.Node(s.From), g.Node(s.To)
		next, hasNext := idx.Next(producer)
		prev, hasPrev := idx.Prev(consumer)

		send, err := p.addSyncNode(g, fmt.Sprintf("%s_%s_%d_to_%s", producer.Name, sendType, s.ID, consumer.Name), sendType, s, producer, topo)
		if err != nil {
			return err
		}
		recv, err := p.addSyncNode(g, fmt.Sprintf("%s_%s_%d_from_%s", consumer.Name, recvType, s.ID, producer.Name), recvType, s, consumer, topo+1)
		if err != nil {
			return err
		}
		topo += 2

		edges := [][2]graph.NodeID{{producer.ID, send.ID}, {recv.ID, consumer.ID}}
		if hasNext {
			edges = append(edges, [2]graph.NodeID{send.ID, next.ID})
		}
		if hasPrev {
			edges = append(edges, [2]graph.NodeID{prev.ID, recv.ID})
		}
		for _, e := range edges {
			if err := g.AddEdge(e[0], e[1], graph.ControlEdge); err != nil {
				return err
			}
		}
		created += 2
	}
	ctxlog.FromContext(ctx).Debug("Synchronization nodes materialized.", "mode", p.Mode.String(), "nodes", created)
	return nil
}

func (p *Plan) addSyncNode(g *graph.Graph, name, typ string, s *Sync, owner *graph.Node, topo int64) (*graph.Node, error) {
	n, err := g.AddSyncNode(name, typ, owner.EngineID, owner.StreamID, s.ID, topo)
	if err != nil {
		return nil, err
	}
	if s.branched {
		n.SetAttr(graph.AttrBranchGroup, cty.StringVal(s.branch.group))
		n.SetAttr(graph.AttrBranchIndex, cty.NumberIntVal(s.branch.index))
	}
	return n, nil
}
