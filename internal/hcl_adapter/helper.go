package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/streamgrid/internal/config"
	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional fields with non-nil,
// zero-width expression objects, so a nil check alone is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		logger.Debug("Expression is nil, considering it undefined.", "attribute", attrName)
		return false
	}

	// A real attribute occupies bytes in the file, while a placeholder for an
	// omitted optional attribute has a zero-width range.
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	logger.Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// decodeAttrs evaluates the `attrs` object of a node into a flat map of cty
// values keyed by attribute name.
func decodeAttrs(ctx context.Context, node string, expr hcl.Expression) (map[string]cty.Value, error) {
	attrs := make(map[string]cty.Value)
	if !isExprDefined(ctx, expr, "attrs") {
		return attrs, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, cerror.ErrInvalidConfig.GenWithStackByArgs(fmt.Sprintf("node %s attrs: %s", node, diags.Error()))
	}
	if val.IsNull() {
		return attrs, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, cerror.ErrInvalidConfig.GenWithStackByArgs(fmt.Sprintf("node %s attrs must be an object, got %s", node, val.Type().FriendlyName()))
	}
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		attrs[k.AsString()] = v
	}
	return attrs, nil
}

// taskSpec mirrors one element of a node's `tasks` list.
type taskSpec struct {
	Stream *int64  `cty:"stream"`
	Count  *int    `cty:"count"`
	Kind   *string `cty:"kind"`
}

var taskListType = cty.List(cty.ObjectWithOptionalAttrs(map[string]cty.Type{
	"stream": cty.Number,
	"count":  cty.Number,
	"kind":   cty.String,
}, []string{"stream", "count", "kind"}))

// decodeTasks converts a node's `tasks` list. Count defaults to one and a
// missing stream means the node's own stream.
func decodeTasks(ctx context.Context, node string, expr hcl.Expression) ([]*config.Task, error) {
	if !isExprDefined(ctx, expr, "tasks") {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, cerror.ErrInvalidConfig.GenWithStackByArgs(fmt.Sprintf("node %s tasks: %s", node, diags.Error()))
	}
	if val.IsNull() {
		return nil, nil
	}
	converted, err := convert.Convert(val, taskListType)
	if err != nil {
		return nil, cerror.ErrInvalidConfig.GenWithStackByArgs(fmt.Sprintf("node %s tasks: %s", node, err))
	}
	var specs []taskSpec
	if err := gocty.FromCtyValue(converted, &specs); err != nil {
		return nil, cerror.ErrInvalidConfig.GenWithStackByArgs(fmt.Sprintf("node %s tasks: %s", node, err))
	}

	tasks := make([]*config.Task, 0, len(specs))
	for _, s := range specs {
		t := &config.Task{Stream: config.OwnStream, Count: 1}
		if s.Stream != nil {
			t.Stream = *s.Stream
		}
		if s.Count != nil {
			t.Count = *s.Count
		}
		if s.Kind != nil {
			t.Kind = *s.Kind
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
