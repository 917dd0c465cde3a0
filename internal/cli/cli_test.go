package cli

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/streamgrid/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want app.Config
	}{
		{
			name: "positional path with defaults",
			args: []string{"graphs/"},
			want: app.Config{GraphPath: "graphs/", LogFormat: "text", LogLevel: "info", WorkerCount: 4, ReportFormat: app.ReportJSON},
		},
		{
			name: "flags win over positional",
			args: []string{"-g", "a.hcl", "b.hcl", "--split", "--workers", "8", "--report", "TEXT", "--log-format", "json", "--log-level", "debug", "--healthcheck-port", "9100"},
			want: app.Config{GraphPath: "a.hcl", LogFormat: "json", LogLevel: "debug", WorkerCount: 8, Split: true, ReportFormat: app.ReportText, HealthcheckPort: 9100},
		},
		{
			name: "long graph flag",
			args: []string{"--graph=x.hcl", "-w", "2"},
			want: app.Config{GraphPath: "x.hcl", LogFormat: "text", LogLevel: "info", WorkerCount: 2, ReportFormat: app.ReportJSON},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, exit, err := Parse(tt.args, &bytes.Buffer{})
			require.NoError(t, err)
			assert.False(t, exit)
			assert.Equal(t, tt.want, *cfg)
		})
	}
}

func TestParse_ExitsCleanly(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {"--help"}, {}} {
		out := &bytes.Buffer{}
		cfg, exit, err := Parse(args, out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{name: "unknown flag", args: []string{"--bogus"}, message: "unknown flag: --bogus"},
		{name: "bad log format", args: []string{"--log-format", "xml", "g.hcl"}, message: "invalid log-format"},
		{name: "bad log level", args: []string{"--log-level", "loud", "g.hcl"}, message: "invalid log-level"},
		{name: "bad workers", args: []string{"--workers", "0", "g.hcl"}, message: "invalid workers"},
		{name: "bad report", args: []string{"--report", "yaml", "g.hcl"}, message: "yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.args, &bytes.Buffer{})
			require.Error(t, err)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tt.message)
		})
	}
}
