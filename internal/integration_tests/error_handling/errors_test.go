package integration_tests

import (
	"testing"

	"github.com/specialistvlad/streamgrid/internal/app"
	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const enginesHCL = `
hardware {
  max_notifies = 0

  stream_class "normal" {
    max_streams = 4
    max_tasks   = 10
  }
}

engine "AIcoreEngine" {
  scheduler = "default"
  class     = "vector"
}
`

// Every failure aborts the batch with a classified error naming the
// offending node or subgraph, and nothing is reported.
func TestErrorsAreClassified(t *testing.T) {
	tests := []struct {
		name    string
		graph   string
		cfg     *app.Config
		is      func(error) bool
		class   string
		mention string
	}{
		{
			name: "invalid ac_parallel",
			graph: `
graph "g" {
  dynamic = true
  options {
    ac_parallel = "2"
  }
  node "a" {
    type   = "Relu"
    engine = "AIcoreEngine"
  }
}`,
			is:      cerror.ErrInvalidOption.Equal,
			class:   "config",
			mention: "ac_parallel",
		},
		{
			name: "label in single stream mode",
			graph: `
graph "g" {
  options {
    single_stream = true
  }
  subgraph "labeled" {
    stream_label = "x"
    nodes        = ["a"]
  }
  node "a" {
    type   = "Relu"
    engine = "AIcoreEngine"
  }
}`,
			is:      cerror.ErrLabelInSingleStream.Equal,
			class:   "config",
			mention: "labeled",
		},
		{
			name: "attached scope without group",
			graph: `
graph "g" {
  node "needs_event" {
    type   = "Relu"
    engine = "AIcoreEngine"
    attrs = {
      "_attached_event_info" = { reuse_key = "k" }
    }
  }
}`,
			is:      cerror.ErrAttachedScopeMissing.Equal,
			class:   "config",
			mention: "needs_event",
		},
		{
			name: "unknown engine",
			graph: `
graph "g" {
  node "lost" {
    type   = "Relu"
    engine = "TPU"
  }
}`,
			is:      cerror.ErrUnknownEngine.Equal,
			class:   "config",
			mention: "lost",
		},
		{
			name: "cycle",
			graph: `
graph "g" {
  node "a" {
    type           = "Relu"
    engine         = "AIcoreEngine"
    control_inputs = ["b"]
  }
  node "b" {
    type   = "Relu"
    engine = "AIcoreEngine"
    inputs = ["a"]
  }
}`,
			is:    cerror.ErrGraphCycle.Equal,
			class: "structural",
		},
		{
			name: "required notify beyond hardware",
			graph: `
graph "g" {
  options {
    sync_mode = "notify"
  }
  node "needs_notify" {
    type   = "Relu"
    engine = "AIcoreEngine"
    attrs = {
      "_attached_notify_info" = { group_name = "g", reuse_key = "k", required = true }
    }
  }
}`,
			is:    cerror.ErrNotifyCapacity.Equal,
			class: "capacity",
		},
		{
			name: "node heavier than a stream",
			graph: `
graph "g" {
  node "fat" {
    type   = "MatMul"
    engine = "AIcoreEngine"
    tasks  = [{ count = 11 }]
  }
}`,
			cfg:     &app.Config{Split: true},
			is:      cerror.ErrTaskCapacity.Equal,
			class:   "capacity",
			mention: "fat",
		},
		{
			name: "splitting runs out of streams",
			graph: `
graph "g" {
  node "a" {
    type   = "MatMul"
    engine = "AIcoreEngine"
    tasks  = [{ count = 10 }]
  }
  node "b" {
    type   = "MatMul"
    engine = "AIcoreEngine"
    inputs = ["a"]
    tasks  = [{ count = 10 }]
  }
  node "c" {
    type   = "MatMul"
    engine = "AIcoreEngine"
    inputs = ["b"]
    tasks  = [{ count = 10 }]
  }
  node "d" {
    type   = "MatMul"
    engine = "AIcoreEngine"
    inputs = ["c"]
    tasks  = [{ count = 10 }]
  }
  node "e" {
    type   = "MatMul"
    engine = "AIcoreEngine"
    inputs = ["d"]
    tasks  = [{ count = 10 }]
  }
}`,
			cfg:   &app.Config{Split: true},
			is:    cerror.ErrStreamCapacity.Equal,
			class: "capacity",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// --- Arrange ---
			files := map[string]string{
				"engines.hcl": enginesHCL,
				"main.hcl":    tt.graph,
			}

			// --- Act ---
			result := app.RunIntegrationTest(t, files, tt.cfg)

			// --- Assert ---
			require.Error(t, result.Err)
			assert.True(t, tt.is(result.Err), "unexpected error: %v", result.Err)
			assert.Equal(t, tt.class, cerror.Class(result.Err))
			if tt.mention != "" {
				assert.Contains(t, result.Err.Error(), tt.mention)
			}
			assert.Empty(t, result.Output)
		})
	}
}
