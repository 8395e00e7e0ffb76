package starlark

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/starview-labs/starview/pkg/backend"
	"go.starlark.net/starlark"
)

// Library formats recognized by ParseReference, dispatched on the name's
// suffix.
const (
	// SourceSuffix marks a library distributed as Starlark source.
	SourceSuffix = ".star"

	// ImageSuffix marks a library distributed as a serialized module
	// image.
	ImageSuffix = ".starc"
)

// Library is a parsed, initialized reference library: its exported globals,
// frozen so they can be shared across concurrent compilations. Library
// implements backend.Metadata.
type Library struct {
	name    string
	exports starlark.StringDict
}

// Name returns the name the library was parsed under.
func (l *Library) Name() string { return l.name }

// Exports returns the library's exported globals. The dict's values are
// frozen.
func (l *Library) Exports() starlark.StringDict { return l.exports }

// Reference wraps parsed metadata as a compiler reference.
type Reference struct {
	meta backend.Metadata
}

// Name identifies the referenced library.
func (r *Reference) Name() string { return r.meta.Name() }

// library unwraps the metadata when it was produced by this runtime.
func (r *Reference) library() (*Library, bool) {
	lib, ok := r.meta.(*Library)
	return lib, ok
}

// ParseReference parses a reference library into metadata and registers its
// exports in the load context. Libraries must be self-contained: one that
// uses names outside the Starlark universe fails here, not at some later
// view compile.
func (r *Runtime) ParseReference(name string, data []byte) (backend.Metadata, error) {
	var (
		exports starlark.StringDict
		err     error
	)
	switch {
	case strings.HasSuffix(name, ImageSuffix):
		exports, err = r.initImage(name, data)
	case strings.HasSuffix(name, SourceSuffix):
		exports, err = r.initSource(name, data)
	default:
		return nil, fmt.Errorf("unrecognized library format %q for %s", filepath.Ext(name), name)
	}
	if err != nil {
		return nil, err
	}

	r.register(name, exports)
	r.logger.Debug("parsed reference library", "name", name, "exports", len(exports))
	return &Library{name: name, exports: exports}, nil
}

// MetadataReference wraps cached metadata as a compiler reference. The
// reference shares the metadata's parsed state.
func (r *Runtime) MetadataReference(meta backend.Metadata) backend.Reference {
	return &Reference{meta: meta}
}

// ImageReference materializes a serialized library image as a fresh compiler
// reference and registers its exports in the load context.
func (r *Runtime) ImageReference(name string, image []byte) (backend.Reference, error) {
	exports, err := r.initImage(name, image)
	if err != nil {
		return nil, err
	}
	r.register(name, exports)
	r.logger.Debug("materialized image reference", "name", name, "exports", len(exports))
	return &Reference{meta: &Library{name: name, exports: exports}}, nil
}

// EmitLibrary compiles a self-contained library source into a serialized
// image suitable for ImageReference or a .starc file on disk.
func (r *Runtime) EmitLibrary(name string, src []byte) ([]byte, error) {
	_, prog, err := starlark.SourceProgramOptions(r.opts, name, src, noPredeclared)
	if err != nil {
		return nil, fmt.Errorf("failed to compile library %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := prog.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize library %s: %w", name, err)
	}
	return encodeImage(imageHeader{Module: name, Path: name}, buf.Bytes())
}

// initSource compiles and runs a source library in isolation. Only the
// Starlark universe is predeclared.
func (r *Runtime) initSource(name string, data []byte) (starlark.StringDict, error) {
	_, prog, err := starlark.SourceProgramOptions(r.opts, name, data, noPredeclared)
	if err != nil {
		return nil, fmt.Errorf("failed to parse library %s: %w", name, err)
	}
	return r.initProgram(name, prog)
}

// initImage decodes a serialized image and runs its program in isolation,
// like initSource.
func (r *Runtime) initImage(name string, data []byte) (starlark.StringDict, error) {
	_, program, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode library %s: %w", name, err)
	}
	prog, err := starlark.CompiledProgram(bytes.NewReader(program))
	if err != nil {
		return nil, fmt.Errorf("failed to load library %s: %w", name, err)
	}
	return r.initProgram(name, prog)
}

// initProgram runs a library program and collects its exported globals.
// Names with a leading underscore stay private. The returned globals are
// frozen.
func (r *Runtime) initProgram(name string, prog *starlark.Program) (starlark.StringDict, error) {
	thread := r.newThread("library:" + name)
	globals, err := prog.Init(thread, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize library %s: %w", name, err)
	}
	globals.Freeze()

	exports := make(starlark.StringDict, len(globals))
	for sym, value := range globals {
		if strings.HasPrefix(sym, "_") {
			continue
		}
		exports[sym] = value
	}
	return exports, nil
}

func noPredeclared(string) bool { return false }
