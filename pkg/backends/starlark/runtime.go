// Package starlark implements the compilation backend and module loader on
// top of the Starlark interpreter. Emitted images wrap serialized Starlark
// programs; loading initializes them against the libraries the runtime has
// already materialized, the way a host loader resolves references out of its
// own load context.
package starlark

import (
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/starview-labs/starview/pkg/backend"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Config configures a Runtime.
type Config struct {
	// Logger receives debug output. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Runtime is the Starlark toolchain and module loader in one. It implements
// both backend.Backend and backend.Loader: reference libraries parsed on the
// compiler side are registered in the runtime's load context, and loaded
// modules resolve their predeclared names out of that same context.
//
// A Runtime is safe for concurrent use.
type Runtime struct {
	logger *slog.Logger
	opts   *syntax.FileOptions

	mu   sync.RWMutex
	libs map[string]starlark.StringDict // exported globals by library name
}

// New creates a Runtime with an empty load context.
func New(cfg Config) *Runtime {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runtime{
		logger: logger,
		opts:   fileOptions(),
		libs:   make(map[string]starlark.StringDict),
	}
}

// fileOptions returns the dialect settings shared by every parse. Views are
// generated code, so the permissive toplevel forms are enabled.
func fileOptions() *syntax.FileOptions {
	return &syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
		Recursion:       true,
	}
}

// Capabilities reports the loader side's capability flags. The runtime
// always accepts a debug-symbol stream alongside an image.
func (r *Runtime) Capabilities() backend.Capabilities {
	return backend.Capabilities{DebugSymbols: true}
}

// register adds a library's exported globals to the load context. A library
// registered again under the same name replaces the earlier entry.
func (r *Runtime) register(name string, exports starlark.StringDict) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.libs[name] = exports
}

// Libraries lists the names registered in the load context, sorted.
func (r *Runtime) Libraries() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.libs))
	for name := range r.libs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// environment merges the exports of every registered library into one fresh
// dict. Libraries are folded in sorted name order so a symbol exported twice
// resolves deterministically.
func (r *Runtime) environment() starlark.StringDict {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.libs))
	for name := range r.libs {
		names = append(names, name)
	}
	sort.Strings(names)

	env := make(starlark.StringDict)
	for _, name := range names {
		for sym, value := range r.libs[name] {
			env[sym] = value
		}
	}
	return env
}

// newThread returns a thread whose print output lands in the runtime log.
func (r *Runtime) newThread(name string) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			r.logger.Debug("starlark print", "thread", name, "msg", msg)
		},
	}
}
