package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starview-labs/starview/internal/config"
	"github.com/starview-labs/starview/internal/state"
)

// initProject scaffolds a template project into a temp directory and loads
// it as the current configuration.
func initProject(t *testing.T, example bool) (string, *config.Config) {
	t.Helper()

	dir := t.TempDir()
	args := []string{dir}
	if example {
		args = append(args, "--example")
	}

	cmd := NewInitCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute(), "failed to scaffold project")

	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	cfg, err := config.Load(filepath.Join(dir, "starview.yaml"), nil)
	require.NoError(t, err, "failed to load project config")
	return dir, cfg
}

// loadProject makes an existing directory with a starview.yaml the current
// configuration.
func loadProject(t *testing.T, dir string) *config.Config {
	t.Helper()

	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	cfg, err := config.Load(filepath.Join(dir, "starview.yaml"), nil)
	require.NoError(t, err, "failed to load project config")
	return cfg
}

// listRecordedRuns reads run history straight from the project's state
// database.
func listRecordedRuns(t *testing.T, cfg *config.Config) []*state.Run {
	t.Helper()

	store := state.NewSQLiteStore(nil)
	require.NoError(t, store.Open(cfg.StatePath))
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(50)
	require.NoError(t, err)
	return runs
}

func TestCompileCommand_ExampleProject(t *testing.T) {
	_, cfg := initProject(t, true)

	cmd := NewCompileCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute(), "output: %s", buf.String())

	out := buf.String()
	assert.Contains(t, out, "Compiling 2 views")
	assert.Contains(t, out, "View_Customers")
	assert.Contains(t, out, "View_Orders")
	assert.Contains(t, out, "Completed in")
	assert.NotContains(t, out, "error")

	runs := listRecordedRuns(t, cfg)
	require.Len(t, runs, 2, "every compile attempt is recorded")
	for _, run := range runs {
		assert.Equal(t, state.RunStatusSuccess, run.Status, "run for %s", run.Document)
		assert.Equal(t, cfg.Environment, run.Environment)
	}
}

func TestCompileCommand_SingleView(t *testing.T) {
	dir, _ := initProject(t, true)

	cmd := NewCompileCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{filepath.Join(dir, "views", "customers.star")})
	require.NoError(t, cmd.Execute(), "output: %s", buf.String())

	out := buf.String()
	assert.Contains(t, out, "Compiling 1 views")
	assert.Contains(t, out, "View_Customers")
	assert.NotContains(t, out, "View_Orders")
}

func TestCompileCommand_ReportsFailures(t *testing.T) {
	dir, cfg := initProject(t, false)
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "views", "broken.star"),
		[]byte("def View_Broken(model):\n    return missing_helper(model)\n"), 0o644))

	cmd := NewCompileCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 views failed to compile")

	out := buf.String()
	assert.Contains(t, out, "missing_helper", "diagnostics name the undefined symbol")
	assert.Contains(t, out, "View_Hello", "the healthy view still compiles")

	statuses := map[state.RunStatus]int{}
	for _, run := range listRecordedRuns(t, cfg) {
		statuses[run.Status]++
	}
	assert.Equal(t, 1, statuses[state.RunStatusSuccess])
	assert.Equal(t, 1, statuses[state.RunStatusFailure])
}

func TestCompileCommand_JSONOutput(t *testing.T) {
	initProject(t, false)

	cmd := NewCompileCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--json"})
	require.NoError(t, cmd.Execute(), "output: %s", buf.String())

	var results []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &results), "JSON mode emits nothing but JSON")
	require.Len(t, results, 1)
	assert.Equal(t, true, results[0]["success"])
	assert.Equal(t, "View_Hello", results[0]["entry_type"])
}

func TestCompileCommand_NoRecord(t *testing.T) {
	_, cfg := initProject(t, false)

	cmd := NewCompileCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--no-record"})
	require.NoError(t, cmd.Execute())

	assert.Empty(t, listRecordedRuns(t, cfg), "--no-record must leave history untouched")
}

func TestCompileCommand_NoViews(t *testing.T) {
	dir, _ := initProject(t, false)
	require.NoError(t, os.Remove(filepath.Join(dir, "views", "hello.star")))

	cmd := NewCompileCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no views found")
}

func TestCompileCommand_EnvironmentFailureStopsRun(t *testing.T) {
	dir := t.TempDir()
	cfgYAML := `application: app
views_dir: views
libraries_dir: libraries
state_path: .starview/state.db
libraries:
  - kind: path
    path: libraries/gone.star
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "starview.yaml"), []byte(cfgYAML), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "views"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "views", "x.star"), []byte("x = 1\n"), 0o644))
	cfg := loadProject(t, dir)

	cmd := NewCompileCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err, "a broken reference set is not a per-view verdict")
	assert.Contains(t, err.Error(), "gone.star")

	runs := listRecordedRuns(t, cfg)
	require.Len(t, runs, 1)
	assert.Equal(t, state.RunStatusError, runs[0].Status)
	assert.Contains(t, runs[0].Error, "gone.star")
}
