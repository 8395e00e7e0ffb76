package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"github.com/starview-labs/starview/pkg/backends/starlark"
	starlarklib "go.starlark.net/starlark"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session over the reference libraries",
		Long: `Start an interactive Starlark session with every reference library's
exports in scope.

Expressions print their value; statements bind names for the rest of
the session. Indented blocks are read until a blank line.`,
		Example: `  # Start a session
  starview repl`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd)
		},
	}

	return cmd
}

func runREPL(cmd *cobra.Command) error {
	cc, err := NewCommandContextWithoutStore(cmd)
	if err != nil {
		return err
	}

	// Resolve references up front so the session snapshot sees their
	// exports.
	refs, err := cc.Service.References()
	if err != nil {
		return fmt.Errorf("failed to resolve references: %w", err)
	}

	out := cmd.OutOrStdout()
	sess := cc.Runtime.NewSession(func(msg string) {
		_, _ = fmt.Fprintln(out, msg)
	})

	// Setup history file (project-local)
	historyFile := filepath.Join(filepath.Dir(cc.Cfg.StatePath), "repl_history")

	// Configure readline
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "starview> ",
		HistoryFile:     historyFile,
		AutoComplete:    newSessionCompleter(sess),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	// Print welcome message
	_, _ = fmt.Fprintf(out, "Starview REPL (%d references loaded)\n", len(refs))
	_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	// REPL loop
	var block strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			block.Reset()
			rl.SetPrompt("starview> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		// A block in progress ends at the first blank line.
		if block.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				chunk := block.String()
				block.Reset()
				rl.SetPrompt("starview> ")
				evalChunk(cmd, sess, chunk)
				continue
			}
			block.WriteString(line)
			block.WriteString("\n")
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// Handle dot-commands
		if strings.HasPrefix(trimmed, ".") {
			if handled := handleREPLCommand(cmd, cc, sess, trimmed); handled {
				if trimmed == ".quit" || trimmed == ".exit" {
					break
				}
				continue
			}
		}

		// A trailing colon opens a block; read until a blank line.
		if strings.HasSuffix(trimmed, ":") {
			block.WriteString(line)
			block.WriteString("\n")
			rl.SetPrompt("     ...> ")
			continue
		}

		evalChunk(cmd, sess, line)
	}

	return nil
}

// evalChunk evaluates one input chunk and prints its value, if any.
func evalChunk(cmd *cobra.Command, sess *starlark.Session, src string) {
	val, err := sess.Eval(src)
	if err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}
	if val != nil && val != starlarklib.None {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), val.String())
	}
}

func handleREPLCommand(cmd *cobra.Command, cc *CommandContext, sess *starlark.Session, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(cmd.OutOrStdout())
		return true

	case ".refs":
		refs, err := cc.Service.References()
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return true
		}
		for _, ref := range refs {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", ref.Name())
		}
		return true

	case ".names":
		for _, name := range sess.Names() {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
		}
		return true

	case ".clear":
		fmt.Print("\033[H\033[2J")
		return true

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
		return true
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .refs           List the loaded reference libraries
  .names          List every name visible in the session
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - A line ending in ':' opens a block; finish it with a blank line
  - Use arrow keys to navigate history
  - Tab completion works for session names
`
	_, _ = fmt.Fprintln(w, help)
}

// newSessionCompleter creates a readline completer over the session's names.
func newSessionCompleter(sess *starlark.Session) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range sess.Names() {
		items = append(items, readline.PcItem(name))
	}

	// Add dot-commands
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".refs"),
		readline.PcItem(".names"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
