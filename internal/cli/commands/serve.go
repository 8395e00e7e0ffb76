package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/starview-labs/starview/internal/devserver"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Host  string
	Port  int
	Watch bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Starview development server",
		Long: `Start a local HTTP server that compiles views on demand.

The server exposes:
- POST /api/compile for compile requests (inline source or a view file)
- Run history and resolved references
- Server-sent events for live run updates

With watch enabled, views are recompiled as they change on disk.`,
		Example: `  # Start on the configured address
  starview serve

  # Start on a custom port
  starview serve --port 3000

  # Disable the file watcher
  starview serve --watch=false`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Host, "host", "", "Host to bind (default: from config)")
	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: from config)")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Watch for view file changes")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cc.Cfg

	// CLI flags override config file
	host := cfg.Server.Host
	if opts.Host != "" {
		host = opts.Host
	}
	port := cfg.Server.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	watch := cfg.Server.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	// Validate views directory exists
	if _, err := os.Stat(cfg.ViewsDir); os.IsNotExist(err) {
		return fmt.Errorf("views directory does not exist: %s", cfg.ViewsDir)
	}

	server := devserver.NewServer(devserver.Config{
		Service:     cc.Service,
		Store:       cc.Store,
		Host:        host,
		Port:        port,
		Watch:       watch,
		ViewsDir:    cfg.ViewsDir,
		Environment: cfg.Environment,
		Logger:      cc.Logger,
	})

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Starting dev server on http://%s:%d\n", host, port)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "\nShutting down...")
		cancel()
	}()

	return server.Serve(ctx)
}
