// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"strings"

	"github.com/specialistvlad/streamgrid/internal/config"
	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	cerror "github.com/specialistvlad/streamgrid/internal/errors"
)

const defaultMaxNotifies = 1024

var (
	syncModes   = []string{"", "event", "notify"}
	acParallels = []string{"", "0", "1"}
	streamClass = []string{"", "normal", "huge"}
)

// translateHardware merges a hardware block over what earlier files declared.
func translateHardware(hw *Hardware, prev *config.Hardware) *config.Hardware {
	out := prev
	if out == nil {
		out = &config.Hardware{
			MaxNotifies:   defaultMaxNotifies,
			StreamClasses: make(map[string]*config.StreamClass),
		}
	}
	if hw.MaxNotifies != nil {
		out.MaxNotifies = *hw.MaxNotifies
	}
	for _, sc := range hw.StreamClasses {
		out.StreamClasses[sc.Name] = &config.StreamClass{
			Name:       sc.Name,
			MaxStreams: sc.MaxStreams,
			MaxTasks:   sc.MaxTasks,
		}
	}
	return out
}

// translateEngine converts the HCL-specific engine schema into the agnostic model.
func translateEngine(e *Engine) *config.Engine {
	return &config.Engine{
		Name:             e.Name,
		Scheduler:        e.Scheduler,
		Class:            e.Class,
		Independent:      e.Independent,
		Attach:           e.Attach,
		SkipAssignStream: e.SkipAssignStream,
		CompositeOf:      e.CompositeOf,
	}
}

// translateGraph converts one graph block, including its options, subgraphs
// and nodes.
func (l *Loader) translateGraph(ctx context.Context, g *Graph) (*config.Graph, error) {
	logger := ctxlog.FromContext(ctx).With("graph", g.Name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL graph to internal config model.", "subgraphs", len(g.Subgraphs), "nodes", len(g.Nodes))

	opts, err := translateOptions(g.Options)
	if err != nil {
		return nil, err
	}
	out := &config.Graph{
		Name:    g.Name,
		Dynamic: g.Dynamic,
		Options: opts,
	}
	for _, sg := range g.Subgraphs {
		out.Subgraphs = append(out.Subgraphs, &config.Subgraph{
			Name:        sg.Name,
			Engine:      sg.Engine,
			StreamLabel: sg.StreamLabel,
			MaxParallel: sg.MaxParallel,
			Nodes:       sg.Nodes,
		})
	}
	for _, n := range g.Nodes {
		node, err := translateNode(ctx, n)
		if err != nil {
			return nil, err
		}
		out.Nodes = append(out.Nodes, node)
	}
	return out, nil
}

func translateOptions(o *Options) (config.Options, error) {
	if o == nil {
		return config.Options{SyncMode: "event"}, nil
	}
	if err := oneOf(o.SyncMode, "sync_mode", syncModes); err != nil {
		return config.Options{}, err
	}
	if err := oneOf(o.ACParallel, "ac_parallel", acParallels); err != nil {
		return config.Options{}, err
	}
	if err := oneOf(o.StreamClass, "stream_class", streamClass); err != nil {
		return config.Options{}, err
	}
	mode := o.SyncMode
	if mode == "" {
		mode = "event"
	}
	return config.Options{
		SingleStream:   o.SingleStream,
		HcomParallel:   o.HcomParallel,
		MemoryPriority: o.MemoryPriority,
		TraceTasks:     o.TraceTasks,
		ACParallel:     o.ACParallel,
		SyncMode:       mode,
		StreamClass:    o.StreamClass,
		CPUBlockingOps: o.CPUBlockingOps,
	}, nil
}

func translateNode(ctx context.Context, n *Node) (*config.Node, error) {
	attrs, err := decodeAttrs(ctx, n.Name, n.Attrs)
	if err != nil {
		return nil, err
	}
	tasks, err := decodeTasks(ctx, n.Name, n.Tasks)
	if err != nil {
		return nil, err
	}
	return &config.Node{
		Name:          n.Name,
		Type:          n.Type,
		Engine:        n.Engine,
		Subgraph:      n.Subgraph,
		Inputs:        n.Inputs,
		ControlInputs: n.ControlInputs,
		BackInputs:    n.BackInputs,
		Attrs:         attrs,
		Tasks:         tasks,
	}, nil
}

func oneOf(value, option string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	quoted := make([]string, 0, len(allowed))
	for _, a := range allowed {
		quoted = append(quoted, `"`+a+`"`)
	}
	return cerror.ErrInvalidOption.GenWithStackByArgs(value, option, strings.Join(quoted, ", "))
}
