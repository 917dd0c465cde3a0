package graph

import "github.com/zclconf/go-cty/cty"

// IsSyncNode reports whether n is a materialized send or receive node.
func IsSyncNode(n *Node) bool {
	switch n.Type {
	case TypeSend, TypeRecv, TypeSendNotify, TypeRecvNotify:
		return true
	}
	return false
}

// AddSyncNode adds a materialized send or receive node of type typ on
// stream. The id is stored both as an attribute and in the matching id list.
// The caller picks topo, normally from one NextTopoID call per batch.
func (g *Graph) AddSyncNode(name, typ, engineID string, stream int64, id uint32, topo int64) (*Node, error) {
	n, err := g.AddNode(name, typ, engineID)
	if err != nil {
		return nil, err
	}
	n.TopoID = topo
	n.StreamID = stream
	switch typ {
	case TypeSend:
		n.SetAttr(AttrEventID, cty.NumberUIntVal(uint64(id)))
		n.SendEventIDs = append(n.SendEventIDs, id)
	case TypeRecv:
		n.SetAttr(AttrEventID, cty.NumberUIntVal(uint64(id)))
		n.RecvEventIDs = append(n.RecvEventIDs, id)
	case TypeSendNotify:
		n.SetAttr(AttrNotifyID, cty.NumberUIntVal(uint64(id)))
		n.SendNotifyIDs = append(n.SendNotifyIDs, id)
	case TypeRecvNotify:
		n.SetAttr(AttrNotifyID, cty.NumberUIntVal(uint64(id)))
		n.RecvNotifyIDs = append(n.RecvNotifyIDs, id)
	}
	return n, nil
}
