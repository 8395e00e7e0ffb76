package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/starview-labs/starview/internal/state"
	"gopkg.in/yaml.v3"
)

// renderJSON writes v as indented JSON.
func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderYAML writes v as a YAML document.
func renderYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// renderRuns renders run history in the requested format.
func renderRuns(w io.Writer, runs []*state.Run, format string) error {
	switch format {
	case "json":
		return renderJSON(w, runs)
	case "yaml":
		return renderYAML(w, runs)
	default:
		return renderRunsTable(w, runs)
	}
}

func renderRunsTable(w io.Writer, runs []*state.Run) error {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "(0 runs)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Document", "Status", "Entry Type", "Messages", "Duration", "Created"})

	for _, run := range runs {
		t.AppendRow(table.Row{
			shortID(run.ID),
			run.Document,
			string(run.Status),
			run.EntryType,
			run.Messages,
			(time.Duration(run.DurationMS) * time.Millisecond).String(),
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d runs)\n", len(runs))
	return nil
}

// refInfo is one resolved reference for display.
type refInfo struct {
	Name string `json:"name" yaml:"name"`
}

// renderRefs renders the resolved reference sequence in the requested format.
func renderRefs(w io.Writer, refs []refInfo, format string) error {
	switch format {
	case "json":
		return renderJSON(w, refs)
	case "yaml":
		return renderYAML(w, refs)
	default:
		return renderRefsTable(w, refs)
	}
}

func renderRefsTable(w io.Writer, refs []refInfo) error {
	if len(refs) == 0 {
		_, _ = fmt.Fprintln(w, "(0 references)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Name"})

	for i, ref := range refs {
		t.AppendRow(table.Row{i + 1, ref.Name})
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d references)\n", len(refs))
	return nil
}

// shortID truncates a UUID for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
