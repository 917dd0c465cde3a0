package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_InvalidConfig(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	invalidHCL := `
		graph "broken" {
			node "a" {
		// Missing closing braces here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0600), "failed to set up test file")

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, errOut, []string{filePath})

	// --- Assert ---
	require.Error(t, runErr, "run() should fail on a malformed configuration")
	require.Contains(t, runErr.Error(), "failed to start")
	require.Contains(t, runErr.Error(), "parse")
	require.Empty(t, out.String(), "no report should be written")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_SchedulesGraph(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	graphHCL := `
		engine "AIcoreEngine" {
			scheduler = "default"
			class     = "vector"
		}

		graph "single" {
			node "a" {
				type   = "Relu"
				engine = "AIcoreEngine"
			}
		}
	`
	filePath := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(graphHCL), 0600))
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"--report", "text", filePath})

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), "graph single")
	require.Contains(t, out.String(), "streams=1")
}
