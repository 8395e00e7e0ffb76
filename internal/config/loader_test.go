package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestFlags mirrors the root command's persistent flag set.
func newTestFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.String("project-dir", "", "")
	flags.String("views-dir", "", "")
	flags.String("libraries-dir", "", "")
	flags.String("state", "", "")
	flags.String("env", "", "")
	flags.String("entry-prefix", "", "")
	flags.BoolP("verbose", "v", false, "")
	flags.StringP("output", "o", "", "")
	return flags
}

func loadInDir(t *testing.T, dir string, cfgFile string, set func(flags *pflag.FlagSet)) *Config {
	t.Helper()
	t.Cleanup(ResetConfig)

	flags := newTestFlags()
	require.NoError(t, flags.Set("project-dir", dir))
	if set != nil {
		set(flags)
	}

	cfg, err := Load(cfgFile, flags)
	require.NoError(t, err)
	return cfg
}

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "starview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg := loadInDir(t, dir, "", nil)

	assert.Equal(t, "starview", cfg.Application)
	assert.Equal(t, DefaultEnv, cfg.Environment)
	assert.Equal(t, DefaultEntryPrefix, cfg.EntryPrefix)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, DefaultServerHost, cfg.Server.Host)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.True(t, cfg.Server.Watch)

	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(dir, DefaultViewsDir), cfg.ViewsDir)
	assert.Equal(t, filepath.Join(dir, DefaultLibrariesDir), cfg.LibrariesDir)
	assert.Equal(t, filepath.Join(dir, DefaultStateFile), cfg.StatePath)

	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, `
application: shop
environment: staging
entry_prefix: Page_
views_dir: pages
server:
  port: 9001
  watch: false
libraries:
  - kind: path
    path: shared/util.star
`)

	cfg := loadInDir(t, dir, "", nil)

	assert.Equal(t, "shop", cfg.Application)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "Page_", cfg.EntryPrefix)
	assert.Equal(t, filepath.Join(dir, "pages"), cfg.ViewsDir)
	assert.Equal(t, DefaultServerHost, cfg.Server.Host, "unset keys keep their defaults")
	assert.Equal(t, 9001, cfg.Server.Port)
	assert.False(t, cfg.Server.Watch)

	require.Len(t, cfg.Libraries, 1)
	assert.Equal(t, "path", cfg.Libraries[0]["kind"])
	assert.Equal(t, "shared/util.star", cfg.Libraries[0]["path"])

	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "entry_prefix: File_\n")

	t.Setenv("STARVIEW_ENTRY_PREFIX", "Env_")
	t.Setenv("STARVIEW_SERVER_PORT", "9999")
	t.Setenv("STARVIEW_SERVER_HOST", "0.0.0.0")

	cfg := loadInDir(t, dir, "", nil)

	assert.Equal(t, "Env_", cfg.EntryPrefix)
	assert.Equal(t, 9999, cfg.Server.Port, "STARVIEW_SERVER_PORT maps to server.port")
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "environment: staging\nentry_prefix: File_\n")
	t.Setenv("STARVIEW_ENVIRONMENT", "from-env")

	statePath := filepath.Join(t.TempDir(), "custom.db")
	cfg := loadInDir(t, dir, "", func(flags *pflag.FlagSet) {
		require.NoError(t, flags.Set("env", "prod"))
		require.NoError(t, flags.Set("entry-prefix", "Flag_"))
		require.NoError(t, flags.Set("state", statePath))
		require.NoError(t, flags.Set("verbose", "true"))
		require.NoError(t, flags.Set("output", "json"))
	})

	assert.Equal(t, "prod", cfg.Environment, "--env maps to environment")
	assert.Equal(t, "Flag_", cfg.EntryPrefix)
	assert.Equal(t, statePath, cfg.StatePath, "--state maps to state_path")
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestLoad_UnchangedFlagsDoNotOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "output: yaml\n")

	// The output flag exists but was never set on the command line.
	cfg := loadInDir(t, dir, "", nil)
	assert.Equal(t, "yaml", cfg.OutputFormat)
}

func TestLoad_ExplicitConfigAnchorsProjectRoot(t *testing.T) {
	t.Cleanup(ResetConfig)

	dir := t.TempDir()
	path := writeConfigFile(t, dir, "views_dir: v\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(dir, "v"), cfg.ViewsDir)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Cleanup(ResetConfig)

	dir := t.TempDir()
	path := writeConfigFile(t, dir, "views_dir: [unclosed\n")

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "error reading config file")
}

func TestFindProjectRootUpward(t *testing.T) {
	root := t.TempDir()
	writeConfigFile(t, root, "application: nested\n")

	child := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(child, 0o755))

	assert.Equal(t, root, findProjectRootUpward(child))
	assert.Equal(t, root, findProjectRootUpward(root))

	empty := t.TempDir()
	assert.Empty(t, findProjectRootUpward(empty))
}

func TestConfigExistsIn(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, configExistsIn(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "starview.yml"), []byte("{}"), 0o644))
	assert.True(t, configExistsIn(dir), "the .yml spelling counts too")
}

func TestResolvePathRelativeTo(t *testing.T) {
	tests := []struct {
		name string
		path string
		base string
		want string
	}{
		{"empty stays empty", "", "/proj", ""},
		{"absolute untouched", "/tmp/x", "/proj", "/tmp/x"},
		{"relative joined", "views", "/proj", "/proj/views"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolvePathRelativeTo(tt.path, tt.base))
		})
	}
}

func TestLoggerContext(t *testing.T) {
	ctx := context.Background()
	require.NotNil(t, GetLogger(ctx), "missing logger falls back to a discard logger")

	logger := GetLogger(ctx)
	ctx = WithLogger(ctx, logger)
	assert.Same(t, logger, GetLogger(ctx))
}

func TestResetConfig(t *testing.T) {
	dir := t.TempDir()
	loadInDir(t, dir, "", nil)
	require.NotNil(t, GetCurrentConfig())

	ResetConfig()
	assert.Nil(t, GetCurrentConfig())
	assert.Empty(t, GetConfigFileUsed())
}
