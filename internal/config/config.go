// Package config loads starview configuration from defaults, the project's
// starview.yaml, STARVIEW_* environment variables, and command-line flags,
// in ascending precedence.
package config

// Default configuration values applied before any file, environment, or
// flag layer.
const (
	DefaultViewsDir     = "views"
	DefaultLibrariesDir = "libraries"
	DefaultStateFile    = ".starview/state.db"
	DefaultEnv          = "dev"
	DefaultEntryPrefix  = "View_"
	DefaultOutput       = "table"
	DefaultServerHost   = "localhost"
	DefaultServerPort   = 8765
)

// Config is the resolved starview configuration.
type Config struct {
	// Application names the application whose references are compiled
	// against. It shows up in logs and run history.
	Application string `koanf:"application"`

	// Environment is a free-form label (dev, staging, prod) recorded with
	// every run.
	Environment string `koanf:"environment"`

	// EntryPrefix selects the entry type among a compiled view's exports.
	EntryPrefix string `koanf:"entry_prefix"`

	// ViewsDir holds the view sources compiled by the CLI and watched by
	// the dev server.
	ViewsDir string `koanf:"views_dir"`

	// LibrariesDir is scanned for *.star reference libraries.
	LibrariesDir string `koanf:"libraries_dir"`

	// Libraries lists additional reference manifest entries. Each entry
	// carries a kind (path, image, project) and kind-specific fields.
	Libraries []LibraryEntry `koanf:"libraries"`

	// StatePath is the run-history database location.
	StatePath string `koanf:"state_path"`

	// Verbose enables debug logging on stderr.
	Verbose bool `koanf:"verbose"`

	// OutputFormat selects CLI rendering: table, json, or yaml.
	OutputFormat string `koanf:"output"`

	// Server configures the dev server.
	Server ServerConfig `koanf:"server"`

	// ProjectRoot is the directory relative paths resolve against. Set by
	// the loader, never from a file.
	ProjectRoot string `koanf:"-"`
}

// ServerConfig configures the dev server command.
type ServerConfig struct {
	Host string `koanf:"host"`

	Port int `koanf:"port"`

	// Watch recompiles views as they change on disk.
	Watch bool `koanf:"watch"`
}

// LibraryEntry is one raw manifest entry. The library manager decodes it
// according to its kind.
type LibraryEntry map[string]any

// defaultConfig returns the bottom configuration layer.
func defaultConfig() map[string]any {
	return map[string]any{
		"application":   "starview",
		"environment":   DefaultEnv,
		"entry_prefix":  DefaultEntryPrefix,
		"views_dir":     DefaultViewsDir,
		"libraries_dir": DefaultLibrariesDir,
		"state_path":    DefaultStateFile,
		"verbose":       false,
		"output":        DefaultOutput,
		"server.host":   DefaultServerHost,
		"server.port":   DefaultServerPort,
		"server.watch":  true,
	}
}
