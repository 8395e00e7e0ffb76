// Package library enumerates the reference libraries an application
// exports: every *.star file in the libraries directory plus the entries of
// the config manifest. The manager produces reference descriptors; reading,
// parsing, and caching happen later, inside the compilation service.
package library

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/starview-labs/starview/pkg/compilation"
)

// Emitter builds a library image from source on demand. Satisfied by the
// starlark runtime.
type Emitter interface {
	EmitLibrary(name string, src []byte) ([]byte, error)
}

// Config configures a Manager.
type Config struct {
	// Root anchors relative manifest paths. Defaults to ".".
	Root string

	// Dir is scanned for *.star libraries. Empty disables the scan.
	Dir string

	// Entries are the raw manifest entries from configuration.
	Entries []map[string]any

	// Emitter builds project-output images. Required only when the
	// manifest contains project entries.
	Emitter Emitter

	// Logger receives debug output. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Manager implements compilation.LibraryExporter over a libraries directory
// and a manifest.
type Manager struct {
	root    string
	dir     string
	entries []map[string]any
	emitter Emitter
	logger  *slog.Logger
}

// NewManager creates a Manager from cfg.
func NewManager(cfg Config) *Manager {
	root := cfg.Root
	if root == "" {
		root = "."
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		root:    root,
		dir:     cfg.Dir,
		entries: cfg.Entries,
		emitter: cfg.Emitter,
		logger:  logger,
	}
}

// ExportReferences enumerates the application's reference descriptors:
// directory libraries first in sorted path order, then manifest entries in
// manifest order. The order is stable across calls.
func (m *Manager) ExportReferences(application string) ([]compilation.ReferenceDescriptor, error) {
	var descs []compilation.ReferenceDescriptor

	if m.dir != "" {
		pattern := filepath.Join(m.dir, "*.star")
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to scan libraries dir %s: %w", m.dir, err)
		}
		for _, path := range matches {
			descs = append(descs, &compilation.FilePathReference{Path: path})
		}
		m.logger.Debug("scanned libraries dir",
			"application", application,
			"dir", m.dir,
			"found", len(matches),
		)
	}

	for i, raw := range m.entries {
		desc, err := m.decodeEntry(i, raw)
		if err != nil {
			return nil, err
		}
		descs = append(descs, desc)
	}

	return descs, nil
}

// resolve makes a manifest path absolute relative to the project root.
func (m *Manager) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.root, path)
}
