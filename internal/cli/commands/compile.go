package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/starview-labs/starview/internal/state"
	"github.com/starview-labs/starview/pkg/compilation"
)

// CompileOptions holds options for the compile command.
type CompileOptions struct {
	JSONOutput bool
	NoRecord   bool
}

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	opts := &CompileOptions{}

	cmd := &cobra.Command{
		Use:   "compile [view...]",
		Short: "Compile view scripts against the reference libraries",
		Long: `Compile one or more view scripts in memory and load the results.

By default, compiles every *.star file in the views directory. Pass view
file paths to compile specific views. Each attempt is recorded in the
state database.`,
		Example: `  # Compile all views
  starview compile

  # Compile specific views
  starview compile views/orders.star views/customers.star

  # Compile with JSON output for CI integration
  starview compile --json`,
		Aliases: []string{"build"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSONOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&opts.NoRecord, "no-record", false, "Skip recording runs in the state database")

	return cmd
}

func runCompile(cmd *cobra.Command, args []string, opts *CompileOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	paths := args
	if len(paths) == 0 {
		paths, err = filepath.Glob(filepath.Join(cc.Cfg.ViewsDir, "*.star"))
		if err != nil {
			return fmt.Errorf("failed to scan views directory: %w", err)
		}
		if len(paths) == 0 {
			return fmt.Errorf("no views found in %s", cc.Cfg.ViewsDir)
		}
	}

	out := cmd.OutOrStdout()
	startTime := time.Now()
	if !opts.JSONOutput {
		_, _ = fmt.Fprintf(out, "Compiling %d views...\n", len(paths))
	}

	var results []*compilation.Result
	failed := 0
	for _, path := range paths {
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read view %s: %w", path, err)
		}

		res, err := cc.Service.Compile(compilation.Document{Path: path}, string(source))
		if err != nil {
			// Environment failure: every later view would hit the same
			// wall, so record it and stop.
			if !opts.NoRecord {
				recordRun(cc, path, nil, err)
			}
			return err
		}
		if !opts.NoRecord {
			recordRun(cc, path, res, nil)
		}
		results = append(results, res)

		if !res.Success {
			failed++
		}
		if !opts.JSONOutput {
			printResult(out, res)
		}
	}

	if opts.JSONOutput {
		return renderJSON(out, results)
	}

	elapsed := time.Since(startTime)
	_, _ = fmt.Fprintf(out, "Completed in %s\n", elapsed.Round(time.Millisecond))
	if failed > 0 {
		return fmt.Errorf("%d of %d views failed to compile", failed, len(paths))
	}
	return nil
}

// printResult writes one view's verdict in text form.
func printResult(w io.Writer, res *compilation.Result) {
	if res.Success {
		_, _ = fmt.Fprintf(w, "  ok    %s  %s (%s)\n",
			res.Document.Path, res.EntryType, res.Duration.Round(time.Millisecond))
		return
	}

	_, _ = fmt.Fprintf(w, "  error %s\n", res.Document.Path)
	for _, msg := range res.Messages {
		_, _ = fmt.Fprintf(w, "        %-7s %s\n", msg.Severity, msg.Text)
	}
}

// recordRun persists one compile attempt; failures to record are logged,
// never fatal.
func recordRun(cc *CommandContext, path string, res *compilation.Result, compileErr error) {
	run := &state.Run{
		Document:    path,
		Environment: cc.Cfg.Environment,
	}

	switch {
	case compileErr != nil:
		run.Status = state.RunStatusError
		run.Error = compileErr.Error()
	case res.Success:
		run.Status = state.RunStatusSuccess
		run.Module = res.Module
		run.EntryType = res.EntryType
		run.DurationMS = res.Duration.Milliseconds()
	default:
		run.Status = state.RunStatusFailure
		run.Messages = len(res.Messages)
		run.DurationMS = res.Duration.Milliseconds()
	}

	if err := cc.Store.RecordRun(run); err != nil {
		cc.Logger.Warn("failed to record run", "document", path, "error", err)
	}
}
