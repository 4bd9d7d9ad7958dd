package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-bookdw/pkg/version"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version", "--config", "", "--env-file", "testdata-missing.env")
	require.NoError(t, err)
	assert.Contains(t, out, version.Name)
	assert.Contains(t, out, version.Version)
}

func TestCommandTree(t *testing.T) {
	for _, name := range []string{
		"version", "steps", "migrate", "stage", "inspect", "run",
		"load", "transform", "export", "visualize", "report",
	} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	cmd, _, err := rootCmd.Find([]string{"stage", "import"})
	require.NoError(t, err)
	assert.Equal(t, "import", cmd.Name())
}

func TestMigrateRejectsUnknownAction(t *testing.T) {
	_, err := runCLI(t, "migrate", "sideways", "--env-file", "testdata-missing.env")
	assert.Error(t, err)
}

func TestStepFlagsOverrideConfig(t *testing.T) {
	require.NoError(t, initConfig())
	t.Cleanup(func() {
		transformMode, exportDir, exportNoWorkbook = "", "", false
	})

	transformMode = "refresh"
	exportDir = "out"
	exportNoWorkbook = true
	applyStepFlags()

	assert.Equal(t, "refresh", cfg.Transform.Mode)
	assert.Equal(t, "out", cfg.Export.Dir)
	assert.False(t, cfg.Export.Workbook)
}

func TestStageImportHelpNamesSoldColumns(t *testing.T) {
	long := stageImportCmd.Long
	assert.Contains(t, long, "sold_count_numeric")
	assert.Contains(t, long, "sold_count text")
	assert.NotContains(t, long, "quantity_sold")
}
