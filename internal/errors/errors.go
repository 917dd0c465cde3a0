// Package errors defines the normalized error taxonomy of the stream
// scheduler. Every error carries an RFC code so that callers and reports can
// classify a failure without string matching.
package errors

import (
	"github.com/pingcap/errors"
	"go.uber.org/multierr"
)

// ConfigError: malformed or missing metadata and invalid option values.
var (
	ErrInvalidConfig = errors.Normalize(
		"invalid configuration: %s",
		errors.RFCCodeText("STREAMGRID:ErrInvalidConfig"),
	)
	ErrInvalidOption = errors.Normalize(
		"invalid value %q for option %s, expected one of %s",
		errors.RFCCodeText("STREAMGRID:ErrInvalidOption"),
	)
	ErrAttachedScopeMissing = errors.Normalize(
		"node %s declares attached %s resource without %s",
		errors.RFCCodeText("STREAMGRID:ErrAttachedScopeMissing"),
	)
	ErrLabelInSingleStream = errors.Normalize(
		"subgraph %s has stream label %q, labels are not allowed in single stream mode",
		errors.RFCCodeText("STREAMGRID:ErrLabelInSingleStream"),
	)
	ErrUnknownEngine = errors.Normalize(
		"engine %s is not registered (referenced by %s)",
		errors.RFCCodeText("STREAMGRID:ErrUnknownEngine"),
	)
)

// StructuralError: the graph or the assignment is inconsistent.
var (
	ErrStreamUnassigned = errors.Normalize(
		"%s %s has not been assigned a stream",
		errors.RFCCodeText("STREAMGRID:ErrStreamUnassigned"),
	)
	ErrEngineResolveDepth = errors.Normalize(
		"resolving composite engine %s exceeded depth %d",
		errors.RFCCodeText("STREAMGRID:ErrEngineResolveDepth"),
	)
	ErrSubgraphNotFound = errors.Normalize(
		"subgraph %s not found",
		errors.RFCCodeText("STREAMGRID:ErrSubgraphNotFound"),
	)
	ErrNodeNotFound = errors.Normalize(
		"node %s not found (referenced by %s)",
		errors.RFCCodeText("STREAMGRID:ErrNodeNotFound"),
	)
	ErrGraphCycle = errors.Normalize(
		"cycle detected involving node %s",
		errors.RFCCodeText("STREAMGRID:ErrGraphCycle"),
	)
	ErrSyncUnpaired = errors.Normalize(
		"%s id %d has %d senders and %d receivers",
		errors.RFCCodeText("STREAMGRID:ErrSyncUnpaired"),
	)
	ErrSyncSameStream = errors.Normalize(
		"%s %d joins %s and %s on the same stream %d",
		errors.RFCCodeText("STREAMGRID:ErrSyncSameStream"),
	)
	ErrMalformedSubgraph = errors.Normalize(
		"subgraph %s is malformed: %s",
		errors.RFCCodeText("STREAMGRID:ErrMalformedSubgraph"),
	)
	ErrNodeUnpartitioned = errors.Normalize(
		"node %s does not belong to any subgraph",
		errors.RFCCodeText("STREAMGRID:ErrNodeUnpartitioned"),
	)
)

// CapabilityError: the hardware capability query failed.
var (
	ErrCapabilityQuery = errors.Normalize(
		"query capability for stream class %s failed: %s",
		errors.RFCCodeText("STREAMGRID:ErrCapabilityQuery"),
	)
)

// CapacityExceeded: a hard hardware ceiling would be crossed.
var (
	ErrNotifyCapacity = errors.Normalize(
		"notify count %d exceeds hardware limit %d",
		errors.RFCCodeText("STREAMGRID:ErrNotifyCapacity"),
	)
	ErrStreamCapacity = errors.Normalize(
		"stream count %d exceeds hardware limit %d",
		errors.RFCCodeText("STREAMGRID:ErrStreamCapacity"),
	)
	ErrTaskCapacity = errors.Normalize(
		"node %s needs %d tasks, stream limit is %d",
		errors.RFCCodeText("STREAMGRID:ErrTaskCapacity"),
	)
)

var (
	configErrors     = []*errors.Error{ErrInvalidConfig, ErrInvalidOption, ErrAttachedScopeMissing, ErrLabelInSingleStream, ErrUnknownEngine}
	structuralErrors = []*errors.Error{ErrStreamUnassigned, ErrEngineResolveDepth, ErrSubgraphNotFound, ErrNodeNotFound, ErrGraphCycle, ErrSyncUnpaired, ErrSyncSameStream, ErrMalformedSubgraph, ErrNodeUnpartitioned}
	capacityErrors   = []*errors.Error{ErrNotifyCapacity, ErrStreamCapacity, ErrTaskCapacity}
)

// matchAny also looks inside errors aggregated with multierr.
func matchAny(err error, candidates []*errors.Error) bool {
	if err == nil {
		return false
	}
	for _, e := range multierr.Errors(errors.Cause(err)) {
		for _, c := range candidates {
			if c.Equal(e) {
				return true
			}
		}
	}
	return false
}

// IsConfigError reports whether err belongs to the ConfigError class.
func IsConfigError(err error) bool { return matchAny(err, configErrors) }

// IsStructuralError reports whether err belongs to the StructuralError class.
func IsStructuralError(err error) bool { return matchAny(err, structuralErrors) }

// IsCapabilityError reports whether err is a failed capability query.
func IsCapabilityError(err error) bool { return ErrCapabilityQuery.Equal(err) }

// IsCapacityExceeded reports whether err belongs to the CapacityExceeded class.
func IsCapacityExceeded(err error) bool { return matchAny(err, capacityErrors) }

// Class names the taxonomy class of err, or "internal" when it is not one of
// the normalized scheduler errors.
func Class(err error) string {
	switch {
	case err == nil:
		return ""
	case IsConfigError(err):
		return "config"
	case IsStructuralError(err):
		return "structural"
	case IsCapabilityError(err):
		return "capability"
	case IsCapacityExceeded(err):
		return "capacity"
	default:
		return "internal"
	}
}
