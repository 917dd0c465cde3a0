package integration_tests

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/specialistvlad/streamgrid/internal/app"
	"github.com/stretchr/testify/require"
)

const enginesHCL = `
hardware {
  max_notifies = 16

  stream_class "normal" {
    max_streams = 32
    max_tasks   = 64
  }
  stream_class "huge" {
    max_streams = 32
    max_tasks   = 4096
  }
}

engine "AIcoreEngine" {
  scheduler = "default"
  class     = "vector"
}

engine "AIcpuEngine" {
  scheduler = "default"
  class     = "host_cpu"
}

engine "DNN_VM_GE_LOCAL" {
  scheduler = "default"
  class     = "other"
  attach    = true
}

engine "hccl" {
  scheduler   = "default"
  class       = "collective"
  independent = true
}
`

// run schedules a single graph file next to the shared engine definitions
// and returns its report.
func run(t *testing.T, graphHCL string, cfg *app.Config) *app.GraphReport {
	t.Helper()
	files := map[string]string{
		"engines.hcl":     enginesHCL,
		"graphs/main.hcl": graphHCL,
	}
	result := app.RunIntegrationTest(t, files, cfg)
	require.NoError(t, result.Err, result.LogOutput)

	var report app.Report
	require.NoError(t, json.Unmarshal([]byte(result.Output), &report))
	require.Len(t, report.Graphs, 1)
	return report.Graphs[0]
}

func node(t *testing.T, gr *app.GraphReport, name string) app.NodeReport {
	t.Helper()
	for _, n := range gr.Nodes {
		if n.Name == name {
			return n
		}
	}
	require.FailNow(t, "node not in report", name)
	return app.NodeReport{}
}
