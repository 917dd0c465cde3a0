package app

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/specialistvlad/streamgrid/internal/graph"
	"github.com/specialistvlad/streamgrid/internal/scheduler"
)

// Report is the outcome of one batch run.
type Report struct {
	Graphs []*GraphReport `json:"graphs"`
}

// GraphReport is the scheduling outcome of one graph.
type GraphReport struct {
	*scheduler.Result
	Nodes []NodeReport `json:"nodes"`
}

// NodeReport lists the stream and synchronization attributes of one node.
type NodeReport struct {
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	Engine           string   `json:"engine"`
	Stream           int64    `json:"stream"`
	AttachedStreams  []int64  `json:"attached_streams,omitempty"`
	SendEvents       []uint32 `json:"send_events,omitempty"`
	RecvEvents       []uint32 `json:"recv_events,omitempty"`
	SendNotifies     []uint32 `json:"send_notifies,omitempty"`
	RecvNotifies     []uint32 `json:"recv_notifies,omitempty"`
	AttachedEvents   []uint32 `json:"attached_events,omitempty"`
	AttachedNotifies []uint32 `json:"attached_notifies,omitempty"`
	ActiveStreams    []uint32 `json:"active_streams,omitempty"`
}

func newGraphReport(g *graph.Graph, res *scheduler.Result) *GraphReport {
	r := &GraphReport{Result: res}
	for _, n := range g.TopoOrder() {
		r.Nodes = append(r.Nodes, NodeReport{
			Name:             n.Name,
			Type:             n.Type,
			Engine:           n.EngineID,
			Stream:           n.StreamID,
			AttachedStreams:  n.AttachedStreamIDs,
			SendEvents:       n.SendEventIDs,
			RecvEvents:       n.RecvEventIDs,
			SendNotifies:     n.SendNotifyIDs,
			RecvNotifies:     n.RecvNotifyIDs,
			AttachedEvents:   n.AttachedEventIDs,
			AttachedNotifies: n.AttachedNotifyIDs,
			ActiveStreams:    n.ActiveStreams,
		})
	}
	return r
}

func (a *App) writeReport(r *Report) error {
	if r.Graphs == nil {
		r.Graphs = []*GraphReport{}
	}
	if a.config.ReportFormat == ReportText {
		return writeText(a.outW, r)
	}
	enc := json.NewEncoder(a.outW)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func writeText(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, gr := range r.Graphs {
		fmt.Fprintf(tw, "graph %s\tstreams=%d\tmain=%d\tevents=%d\tnotifies=%d\tsplits=%d\n",
			gr.Graph, gr.TotalStreamCount, gr.MainStreamCount, gr.EventCount, gr.NotifyCount, gr.Splits)
		for _, n := range gr.Nodes {
			fmt.Fprintf(tw, "  %s\t%s\t%s\tstream=%d\t%s\n", n.Name, n.Type, n.Engine, n.Stream, syncSummary(n))
		}
	}
	return tw.Flush()
}

func syncSummary(n NodeReport) string {
	var parts []string
	add := func(label string, ids []uint32) {
		if len(ids) > 0 {
			parts = append(parts, fmt.Sprintf("%s=%v", label, ids))
		}
	}
	add("send", n.SendEvents)
	add("recv", n.RecvEvents)
	add("send_notify", n.SendNotifies)
	add("recv_notify", n.RecvNotifies)
	add("attached_events", n.AttachedEvents)
	add("attached_notifies", n.AttachedNotifies)
	add("active", n.ActiveStreams)
	if len(n.AttachedStreams) > 0 {
		parts = append(parts, fmt.Sprintf("attached_streams=%v", n.AttachedStreams))
	}
	return strings.Join(parts, " ")
}
