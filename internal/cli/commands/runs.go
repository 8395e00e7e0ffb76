package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RunsOptions holds options for the runs command.
type RunsOptions struct {
	Limit int
}

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	opts := &RunsOptions{}

	cmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "Show compilation run history",
		Long: `List recent compilation runs from the state database, newest first.

Pass a run ID to show a single run in full.`,
		Example: `  # Show the 20 most recent runs
  starview runs

  # Show the 50 most recent runs as JSON
  starview runs --limit 50 -o json

  # Show one run
  starview runs 6b1f6f70-8b3a-4d7e-9c5e-2f4a8e1d9b07`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, args, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "Maximum number of runs to list")

	return cmd
}

func runRuns(cmd *cobra.Command, args []string, opts *RunsOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	out := cmd.OutOrStdout()

	if len(args) == 1 {
		run, err := cc.Store.GetRun(args[0])
		if err != nil {
			return err
		}
		switch cc.Cfg.OutputFormat {
		case "yaml":
			return renderYAML(out, run)
		default:
			return renderJSON(out, run)
		}
	}

	runs, err := cc.Store.ListRuns(opts.Limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	return renderRuns(out, runs, cc.Cfg.OutputFormat)
}
