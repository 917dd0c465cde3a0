package errors

import (
	"fmt"
	"testing"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestClass(t *testing.T) {
	testCases := []struct {
		name  string
		err   error
		class string
	}{
		{name: "nil", err: nil, class: ""},
		{name: "config", err: ErrInvalidOption.GenWithStackByArgs("2", "ac_parallel", `"", "0", "1"`), class: "config"},
		{name: "structural", err: ErrStreamUnassigned.GenWithStackByArgs("subgraph", "sg0"), class: "structural"},
		{name: "capability", err: ErrCapabilityQuery.GenWithStackByArgs("huge", "unsupported"), class: "capability"},
		{name: "capacity", err: ErrNotifyCapacity.GenWithStackByArgs(9, 8), class: "capacity"},
		{name: "annotated keeps class", err: errors.Annotate(ErrSubgraphNotFound.GenWithStackByArgs("sg9"), "assign"), class: "structural"},
		{name: "aggregated", err: multierr.Combine(fmt.Errorf("boom"), ErrGraphCycle.GenWithStackByArgs("a")), class: "structural"},
		{name: "same stream sync", err: ErrSyncSameStream.GenWithStackByArgs("event", 0, "a", "b", 1), class: "structural"},
		{name: "aggregated validation", err: multierr.Combine(ErrMalformedSubgraph.GenWithStackByArgs("sg", "no nodes"), ErrNodeUnpartitioned.GenWithStackByArgs("x")), class: "structural"},
		{name: "foreign error", err: fmt.Errorf("boom"), class: "internal"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.class, Class(tc.err))
		})
	}
}

func TestMessageCarriesOffendingName(t *testing.T) {
	err := ErrStreamUnassigned.GenWithStackByArgs("subgraph", "sg_matmul")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sg_matmul")
	assert.True(t, IsStructuralError(err))
	assert.False(t, IsConfigError(err))
}
