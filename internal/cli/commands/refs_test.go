package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefsCommand_ListsProjectReferences(t *testing.T) {
	initProject(t, false)

	cmd := NewRefsCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute(), "output: %s", buf.String())

	out := buf.String()
	assert.Contains(t, out, "util.star")
	assert.Contains(t, out, "(1 references)")
}

func TestRefsCommand_IncludesManifestEntries(t *testing.T) {
	initProject(t, true)

	cmd := NewRefsCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute(), "output: %s", buf.String())

	// Two scanned libraries plus the manifest's project entry.
	out := buf.String()
	assert.Contains(t, out, "html.star")
	assert.Contains(t, out, "util.star")
	assert.Contains(t, out, "formats.star")
	assert.Contains(t, out, "(3 references)")
}

func TestRefsCommand_JSONOutput(t *testing.T) {
	_, cfg := initProject(t, false)
	cfg.OutputFormat = "json"

	cmd := NewRefsCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	var refs []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &refs))
	require.Len(t, refs, 1)
	assert.Contains(t, refs[0]["name"], "util.star")
}
