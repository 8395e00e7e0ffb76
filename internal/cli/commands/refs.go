package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRefsCommand creates the refs command.
func NewRefsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs",
		Short: "List the application's resolved reference libraries",
		Long: `Resolve and list the reference libraries views compile against.

The sequence combines every *.star file in the libraries directory with
the entries of the config manifest, in the order the compiler sees them.
Resolution failures surface here the same way they would fail a compile.`,
		Example: `  # List references as a table
  starview refs

  # List references as JSON
  starview refs -o json`,
		Aliases: []string{"references"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRefs(cmd)
		},
	}

	return cmd
}

func runRefs(cmd *cobra.Command) error {
	cc, err := NewCommandContextWithoutStore(cmd)
	if err != nil {
		return err
	}

	refs, err := cc.Service.References()
	if err != nil {
		return fmt.Errorf("failed to resolve references: %w", err)
	}

	infos := make([]refInfo, len(refs))
	for i, ref := range refs {
		infos[i] = refInfo{Name: ref.Name()}
	}

	return renderRefs(cmd.OutOrStdout(), infos, cc.Cfg.OutputFormat)
}
