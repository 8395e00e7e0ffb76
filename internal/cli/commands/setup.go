package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/starview-labs/starview/internal/config"
	"github.com/starview-labs/starview/internal/library"
	"github.com/starview-labs/starview/internal/state"
	"github.com/starview-labs/starview/pkg/backends/starlark"
	"github.com/starview-labs/starview/pkg/compilation"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg     *config.Config
	Logger  *slog.Logger
	Runtime *starlark.Runtime
	Service *compilation.Service
	Store   state.Store
}

// NewCommandContext creates a CommandContext with a compilation service and
// an open state store.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	rt, svc, err := createService(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = store.Close()
	}

	return &CommandContext{
		Cfg:     cfg,
		Logger:  logger,
		Runtime: rt,
		Service: svc,
		Store:   store,
	}, cleanup, nil
}

// NewCommandContextWithoutStore creates a CommandContext without a state
// store. Useful for commands that never record runs.
func NewCommandContextWithoutStore(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	rt, svc, err := createService(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Cfg:     cfg,
		Logger:  logger,
		Runtime: rt,
		Service: svc,
	}, nil
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to
// environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	return &config.Config{
		ViewsDir:     getEnvOrDefault("STARVIEW_VIEWS_DIR", config.DefaultViewsDir),
		LibrariesDir: getEnvOrDefault("STARVIEW_LIBRARIES_DIR", config.DefaultLibrariesDir),
		StatePath:    getEnvOrDefault("STARVIEW_STATE_PATH", config.DefaultStateFile),
		Environment:  getEnvOrDefault("STARVIEW_ENVIRONMENT", config.DefaultEnv),
		EntryPrefix:  getEnvOrDefault("STARVIEW_ENTRY_PREFIX", config.DefaultEntryPrefix),
		Verbose:      os.Getenv("STARVIEW_VERBOSE") == "true",
		OutputFormat: getEnvOrDefault("STARVIEW_OUTPUT", config.DefaultOutput),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// createService builds the Starlark runtime, the application's reference
// exporter, and the compilation service on top of them.
func createService(cfg *config.Config, logger *slog.Logger) (*starlark.Runtime, *compilation.Service, error) {
	rt := starlark.New(starlark.Config{Logger: logger})

	entries := make([]map[string]any, len(cfg.Libraries))
	for i, e := range cfg.Libraries {
		entries[i] = e
	}

	mgr := library.NewManager(library.Config{
		Root:    cfg.ProjectRoot,
		Dir:     cfg.LibrariesDir,
		Entries: entries,
		Emitter: rt,
		Logger:  logger,
	})

	svc, err := compilation.NewService(compilation.Config{
		Backend:     rt,
		Loader:      rt,
		References:  mgr,
		Application: cfg.Application,
		EntryPrefix: cfg.EntryPrefix,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, err
	}

	return rt, svc, nil
}

// openStore opens the run-history database, creating its directory first.
func openStore(cfg *config.Config, logger *slog.Logger) (state.Store, error) {
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	return store, nil
}
