package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/streamgrid/internal/hcl_adapter"
	"github.com/specialistvlad/streamgrid/internal/testutil"
	"github.com/stretchr/testify/require"
)

// IntegrationResult holds everything a test needs to inspect one app run.
type IntegrationResult struct {
	App       *App
	Err       error
	Output    string
	LogOutput string
}

// RunIntegrationTest writes files into a temporary directory, builds an App
// over it and runs it once. cfg may be nil; its GraphPath is always replaced
// by the temporary directory.
func RunIntegrationTest(t *testing.T, files map[string]string, cfg *Config) *IntegrationResult {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	if cfg == nil {
		cfg = &Config{}
	}
	c := *cfg
	c.GraphPath = dir
	c.LogLevel = "debug"
	appConfig, err := NewConfig(c)
	require.NoError(t, err)

	out, logs := &testutil.SafeBuffer{}, &testutil.SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("STREAMGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	res := &IntegrationResult{}
	res.App, res.Err = NewApp(out, logs, appConfig, hcl_adapter.NewLoader())
	if res.Err == nil {
		res.Err = res.App.Run(context.Background())
	}
	res.Output = out.String()
	res.LogOutput = logs.String()
	return res
}
