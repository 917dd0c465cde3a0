// Package capability answers hardware limit queries: how many streams a
// device offers and how many tasks fit on one stream, per stream class.
package capability

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/streamgrid/internal/config"
	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"golang.org/x/exp/maps"
)

// Stream classes.
const (
	ClassNormal = "normal"
	ClassHuge   = "huge"
)

// Defaults used when the configuration carries no hardware block.
const (
	DefaultMaxNotifies      = 1024
	defaultNormalMaxStreams = 1024
	defaultNormalMaxTasks   = 1024
	defaultHugeMaxStreams   = 1024
	defaultHugeMaxTasks     = 32768
)

// Limits are the ceilings of one stream class.
type Limits struct {
	MaxStreams int
	MaxTasks   int
}

// Querier is the capability-query collaborator.
type Querier interface {
	// MaxStreamAndTask returns the limits of a stream class.
	MaxStreamAndTask(class string) (Limits, error)
	// MaxNotifies returns the notify ceiling of the device.
	MaxNotifies() int
}

// Table is a Querier backed by a fixed table.
type Table struct {
	classes     map[string]Limits
	maxNotifies int
}

var _ Querier = (*Table)(nil)

// NewTable builds a table from the hardware configuration; nil yields the
// defaults.
func NewTable(hw *config.Hardware) *Table {
	t := &Table{
		classes: map[string]Limits{
			ClassNormal: {MaxStreams: defaultNormalMaxStreams, MaxTasks: defaultNormalMaxTasks},
			ClassHuge:   {MaxStreams: defaultHugeMaxStreams, MaxTasks: defaultHugeMaxTasks},
		},
		maxNotifies: DefaultMaxNotifies,
	}
	if hw == nil {
		return t
	}
	t.maxNotifies = hw.MaxNotifies
	if len(hw.StreamClasses) > 0 {
		t.classes = make(map[string]Limits, len(hw.StreamClasses))
		for name, sc := range hw.StreamClasses {
			t.classes[name] = Limits{MaxStreams: sc.MaxStreams, MaxTasks: sc.MaxTasks}
		}
	}
	return t
}

// MaxStreamAndTask implements Querier.
func (t *Table) MaxStreamAndTask(class string) (Limits, error) {
	if class == "" {
		class = ClassNormal
	}
	l, ok := t.classes[class]
	if !ok {
		known := maps.Keys(t.classes)
		slices.Sort(known)
		return Limits{}, cerror.ErrCapabilityQuery.GenWithStackByArgs(class, fmt.Sprintf("unknown class, known classes are %v", known))
	}
	if l.MaxStreams <= 0 || l.MaxTasks <= 0 {
		return Limits{}, cerror.ErrCapabilityQuery.GenWithStackByArgs(class, fmt.Sprintf("non-positive limits %d streams, %d tasks", l.MaxStreams, l.MaxTasks))
	}
	return l, nil
}

// MaxNotifies implements Querier.
func (t *Table) MaxNotifies() int {
	return t.maxNotifies
}
