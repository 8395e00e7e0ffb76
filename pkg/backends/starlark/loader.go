package starlark

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/starview-labs/starview/pkg/backend"
	"go.starlark.net/starlark"
)

// Module is a loaded unit of compiled Starlark resident in the process: its
// frozen globals plus the identity carried by the debug symbol stream, when
// one was loaded with it.
type Module struct {
	name    string
	globals starlark.StringDict
	exports []backend.Type
	debug   *debugSidecar
}

// Name returns the module's synthetic emit-time name.
func (m *Module) Name() string { return m.name }

// Types lists the module's exported globals in sorted name order.
func (m *Module) Types() []backend.Type { return m.exports }

// Global looks up any module global, exported or private.
func (m *Module) Global(name string) (starlark.Value, bool) {
	v, ok := m.globals[name]
	return v, ok
}

// SourcePath returns the document the module was compiled from, when debug
// symbols were loaded alongside the image.
func (m *Module) SourcePath() (string, bool) {
	if m.debug == nil {
		return "", false
	}
	return m.debug.Path, true
}

// SourceText returns the text the module was compiled from, when debug
// symbols were loaded alongside the image.
func (m *Module) SourceText() (string, bool) {
	if m.debug == nil {
		return "", false
	}
	return m.debug.Source, true
}

// Export is one exported global of a loaded module.
type Export struct {
	name  string
	value starlark.Value
}

// Name returns the global's name.
func (e *Export) Name() string { return e.name }

// Value returns the frozen value bound to the name.
func (e *Export) Value() starlark.Value { return e.value }

// Kind describes the value: "function", "dict", "string" and so on.
func (e *Export) Kind() string { return e.value.Type() }

// LoadModule decodes an emitted image, runs its program against the load
// context, and returns the live module. The image must come from a runtime
// whose references are registered here; a program that needs names missing
// from the context is rejected.
func (r *Runtime) LoadModule(image, symbols []byte) (backend.Module, error) {
	h, program, err := decodeImage(image)
	if err != nil {
		return nil, err
	}
	prog, err := starlark.CompiledProgram(bytes.NewReader(program))
	if err != nil {
		return nil, fmt.Errorf("failed to load module %s: %w", h.Module, err)
	}

	thread := r.newThread("module:" + h.Module)
	globals, err := prog.Init(thread, r.environment())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize module %s: %w", h.Module, err)
	}
	globals.Freeze()

	var debug *debugSidecar
	if len(symbols) > 0 {
		var sc debugSidecar
		if err := json.Unmarshal(symbols, &sc); err != nil {
			return nil, fmt.Errorf("failed to decode debug symbols for module %s: %w", h.Module, err)
		}
		debug = &sc
	}

	exports := make([]backend.Type, 0, len(globals))
	for _, name := range globals.Keys() {
		if strings.HasPrefix(name, "_") {
			continue
		}
		exports = append(exports, &Export{name: name, value: globals[name]})
	}

	r.logger.Debug("loaded module",
		"module", h.Module,
		"exports", len(exports),
		"symbols", debug != nil,
	)
	return &Module{name: h.Module, globals: globals, exports: exports, debug: debug}, nil
}
