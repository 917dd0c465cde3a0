package reuse

import (
	"fmt"

	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/specialistvlad/streamgrid/internal/graph"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// declaration mirrors one attached-resource object in either layout.
type declaration struct {
	Group      *string `cty:"group_name"`
	ReuseKey   *string `cty:"reuse_key"`
	Required   *bool   `cty:"required"`
	Count      *int    `cty:"count"`
	NotifyType *int    `cty:"notify_type"`
}

var declType = cty.ObjectWithOptionalAttrs(map[string]cty.Type{
	"group_name":  cty.String,
	"reuse_key":   cty.String,
	"required":    cty.Bool,
	"count":       cty.Number,
	"notify_type": cty.Number,
}, []string{"group_name", "reuse_key", "required", "count", "notify_type"})

// LegacyAttr is the single-object attribute name for kind.
func LegacyAttr(kind Kind) string {
	return fmt.Sprintf("_attached_%s_info", kind)
}

// ListAttr is the list attribute name for kind.
func ListAttr(kind Kind) string {
	return fmt.Sprintf("_attached_%s_info_list", kind)
}

// Extractor reads the requests of one node. A node without declarations
// yields no requests.
type Extractor func(n *graph.Node) ([]Request, error)

// Declarations returns the extractor for kind that understands both
// attribute layouts. When both are present, list entries win over a legacy
// entry with the same scope.
func Declarations(kind Kind) Extractor {
	return func(n *graph.Node) ([]Request, error) {
		var out []Request
		seen := make(map[Scope]struct{})

		if v, ok := n.Attr(ListAttr(kind)); ok {
			if !v.Type().IsListType() && !v.Type().IsTupleType() && !v.Type().IsSetType() {
				return nil, cerror.ErrInvalidConfig.GenWithStackByArgs(
					fmt.Sprintf("node %s: %s must be a list", n.Name, ListAttr(kind)))
			}
			for it := v.ElementIterator(); it.Next(); {
				_, elem := it.Element()
				req, err := decode(n, kind, elem)
				if err != nil {
					return nil, err
				}
				if _, dup := seen[req.Scope]; dup {
					continue
				}
				seen[req.Scope] = struct{}{}
				out = append(out, req)
			}
		}
		if v, ok := n.Attr(LegacyAttr(kind)); ok {
			req, err := decode(n, kind, v)
			if err != nil {
				return nil, err
			}
			if _, dup := seen[req.Scope]; !dup {
				out = append(out, req)
			}
		}
		return out, nil
	}
}

func decode(n *graph.Node, kind Kind, v cty.Value) (Request, error) {
	converted, err := convert.Convert(v, declType)
	if err != nil {
		return Request{}, cerror.ErrInvalidConfig.GenWithStackByArgs(
			fmt.Sprintf("node %s: attached %s declaration: %s", n.Name, kind, err))
	}
	var d declaration
	if err := gocty.FromCtyValue(converted, &d); err != nil {
		return Request{}, cerror.ErrInvalidConfig.GenWithStackByArgs(
			fmt.Sprintf("node %s: attached %s declaration: %s", n.Name, kind, err))
	}
	if d.Group == nil || *d.Group == "" {
		return Request{}, cerror.ErrAttachedScopeMissing.GenWithStackByArgs(n.Name, kind.String(), "group_name")
	}
	if d.ReuseKey == nil || *d.ReuseKey == "" {
		return Request{}, cerror.ErrAttachedScopeMissing.GenWithStackByArgs(n.Name, kind.String(), "reuse_key")
	}

	req := Request{
		Scope:    Scope{Group: *d.Group, ReuseKey: *d.ReuseKey},
		Kind:     kind,
		Required: true,
		Count:    1,
	}
	if d.Required != nil {
		req.Required = *d.Required
	}
	if d.Count != nil {
		if *d.Count < 1 {
			return Request{}, cerror.ErrInvalidConfig.GenWithStackByArgs(
				fmt.Sprintf("node %s: attached %s count must be positive, got %d", n.Name, kind, *d.Count))
		}
		req.Count = *d.Count
	}
	if d.NotifyType != nil {
		req.NotifyType = uint32(*d.NotifyType)
	}
	return req, nil
}
