package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new Starview project",
		Long: `Initialize a new Starview project with default directory structure and configuration.

This creates:
  - views/ directory for view scripts
  - libraries/ directory for reference libraries
  - starview.yaml configuration file

Use --example to create a full working demo project with sample views,
libraries, and a manifest project entry.`,
		Example: `  # Initialize in current directory
  starview init

  # Initialize with a full working example
  starview init --example

  # Initialize in a new directory
  starview init my-project --example

  # Force overwrite existing config
  starview init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			if example {
				return runInitExample(cmd.OutOrStdout(), dir, force)
			}
			return runInit(cmd.OutOrStdout(), dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Create a full example project with views and libraries")

	return cmd
}

func runInit(w io.Writer, dir string, force bool) error {
	if err := prepareProjectDir(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("minimal", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	// List created files
	files, _ := listTemplateFiles("minimal")
	for _, f := range files {
		_, _ = fmt.Fprintf(w, "  created %s\n", f)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Starview project initialized!")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Next steps:")
	_, _ = fmt.Fprintln(w, "  1. Add reference libraries to libraries/")
	_, _ = fmt.Fprintln(w, "  2. Create view scripts in views/")
	_, _ = fmt.Fprintln(w, "  3. Run 'starview compile' to compile all views")
	_, _ = fmt.Fprintln(w, "  4. Run 'starview serve' for the dev server")

	return nil
}

func runInitExample(w io.Writer, dir string, force bool) error {
	if err := prepareProjectDir(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("example", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	// List created files by category
	files, _ := listTemplateFiles("example")
	groups := groupTemplateFiles(files)

	_, _ = fmt.Fprintln(w, "Configuration:")
	for _, f := range groups["config"] {
		_, _ = fmt.Fprintf(w, "  created %s\n", f)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Libraries:")
	for _, f := range groups["libraries"] {
		_, _ = fmt.Fprintf(w, "  created %s\n", f)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Views:")
	for _, f := range groups["views"] {
		_, _ = fmt.Fprintf(w, "  created %s\n", f)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Starview project initialized with example views!")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Next steps:")
	_, _ = fmt.Fprintln(w, "  starview compile   Compile every view in views/")
	_, _ = fmt.Fprintln(w, "  starview refs      List the resolved reference libraries")
	_, _ = fmt.Fprintln(w, "  starview repl      Explore the libraries interactively")
	_, _ = fmt.Fprintln(w, "  starview serve     Start the dev server")

	return nil
}

// prepareProjectDir creates the target directory and guards against
// clobbering an existing config.
func prepareProjectDir(dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := dir + "/starview.yaml"
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("starview.yaml already exists. Use --force to overwrite")
	}
	return nil
}
