// Package compilation turns view source text into live, loaded modules. A
// Service compiles a document against the application's resolved reference
// set, loads the emitted in-memory image through the host loader, and picks
// the module's entry type. Compiler findings come back inside the Result;
// environment and contract failures (unreadable references, rejected images,
// a missing entry type) come back as errors.
package compilation

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/starview-labs/starview/pkg/backend"
)

// DefaultEntryPrefix matches the names generated for view entry points.
const DefaultEntryPrefix = "View_"

// Config configures a compilation Service.
type Config struct {
	// Backend is the compiler toolchain. Required.
	Backend backend.Backend

	// Loader bridges emitted images into the running process. Required.
	Loader backend.Loader

	// References enumerates the application's exported references.
	// Required.
	References LibraryExporter

	// Application names the hosting application whose references are
	// enumerated.
	Application string

	// Files reads file-path reference bytes. Defaults to the local
	// filesystem.
	Files FileReader

	// EntryPrefix selects the entry type among a loaded module's exports.
	// Defaults to DefaultEntryPrefix.
	EntryPrefix string

	// Logger receives debug output. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Service compiles source documents against a lazily resolved, process-wide
// reference set. A Service is safe for concurrent use; all calls share the
// reference set and the metadata cache behind it.
type Service struct {
	backend backend.Backend
	loader  backend.Loader
	refs    *ReferenceSet
	prefix  string
	symbols bool
	logger  *slog.Logger
}

// NewService creates a Service from cfg. The loader's debug-symbol
// capability is read once here and fixed for the service's lifetime.
func NewService(cfg Config) (*Service, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if cfg.Loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if cfg.References == nil {
		return nil, fmt.Errorf("reference exporter is required")
	}

	prefix := cfg.EntryPrefix
	if prefix == "" {
		prefix = DefaultEntryPrefix
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cache := NewReferenceCache(cfg.Backend, cfg.Files, logger)
	resolver := NewResolver(cfg.Backend, cache, logger)

	return &Service{
		backend: cfg.Backend,
		loader:  cfg.Loader,
		refs:    NewReferenceSet(cfg.Application, cfg.References, resolver, logger),
		prefix:  prefix,
		symbols: cfg.Loader.Capabilities().DebugSymbols,
		logger:  logger,
	}, nil
}

// Compile runs one authoritative compile-and-load attempt for doc. A nil
// error means the attempt reached a verdict, success or not; inspect
// Result.Success. Compiling the same source twice loads two distinct modules
// with distinct synthetic names.
func (s *Service) Compile(doc Document, source string) (*Result, error) {
	start := time.Now()

	refs, err := s.refs.References()
	if err != nil {
		return nil, err
	}

	module := newModuleName()
	emit, err := s.backend.Compile(backend.CompileRequest{
		Path:           doc.Path,
		Source:         source,
		Module:         module,
		References:     refs,
		IncludeSymbols: s.symbols,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s: %w", doc.Path, err)
	}

	if !emit.Success {
		msgs := translateDiagnostics(s.backend, emit.Diagnostics)
		s.logger.Debug("compilation failed",
			"document", doc.Path,
			"messages", len(msgs),
		)
		return &Result{
			Document: doc,
			Messages: msgs,
			Source:   source,
			Duration: time.Since(start),
		}, nil
	}

	loaded, err := s.loader.LoadModule(emit.Image, emit.Symbols)
	if err != nil {
		return nil, &ModuleLoadError{Module: module, Err: err}
	}

	entry, err := s.entryType(loaded)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("compiled document",
		"document", doc.Path,
		"module", loaded.Name(),
		"entry_type", entry.Name(),
		"duration", time.Since(start),
	)

	return &Result{
		Success:   true,
		Document:  doc,
		Module:    loaded.Name(),
		EntryType: entry.Name(),
		Type:      entry,
		Loaded:    loaded,
		Source:    source,
		Duration:  time.Since(start),
	}, nil
}

// References exposes the application's resolved reference sequence,
// resolving it on first use.
func (s *Service) References() ([]backend.Reference, error) {
	return s.refs.References()
}

// EntryPrefix returns the prefix used to select entry types.
func (s *Service) EntryPrefix() string {
	return s.prefix
}

// entryType returns the first exported type whose name starts with the
// configured prefix, in the loader's enumeration order.
func (s *Service) entryType(mod backend.Module) (backend.Type, error) {
	for _, t := range mod.Types() {
		if strings.HasPrefix(t.Name(), s.prefix) {
			return t, nil
		}
	}
	return nil, &EntryTypeNotFoundError{Prefix: s.prefix, Module: mod.Name()}
}

// newModuleName returns a process-unique, filename-safe module name. Every
// emit gets a fresh name so repeated compilations of one document never
// collide inside the loader.
func newModuleName() string {
	return "view_" + uuid.New().String()
}
