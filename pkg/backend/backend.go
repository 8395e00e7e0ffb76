// Package backend defines the Service Provider Interface between the view
// compilation service and a compiler backend. The service drives a backend
// through parse, in-memory emit, and load without knowing anything about the
// source language; backend objects (references, metadata, diagnostics,
// modules) stay opaque behind these interfaces.
package backend

// Reference is a compiler-consumable handle to a previously built library.
// References are immutable once produced and safe to share across
// concurrent compilations.
type Reference interface {
	// Name identifies the reference for logs and error messages.
	Name() string
}

// Metadata is the parsed representation of a reference library read from
// disk. Parsing is the expensive step; metadata is cached process-wide and
// wrapped into a Reference per use via MetadataReference.
type Metadata interface {
	// Name identifies the library the metadata was parsed from.
	Name() string
}

// Diagnostic is a backend-produced report of an issue found while parsing or
// checking a source unit. The concrete type is backend-specific; the service
// only consults the severity flags and renders text via the backend's
// formatter.
type Diagnostic interface {
	// Severity reports the diagnostic's severity level.
	Severity() Severity
	// WarningAsError reports whether a warning-level diagnostic has been
	// escalated to an error.
	WarningAsError() bool
}

// DiagnosticFormatter renders backend diagnostics into display text.
type DiagnosticFormatter interface {
	// FormatDiagnostic returns the display string for a diagnostic,
	// including its source location when one is available.
	FormatDiagnostic(d Diagnostic) string
}

// CompileRequest carries one source unit through a single emit attempt.
type CompileRequest struct {
	// Path is the document identity used for compiler error locations.
	// No file I/O is performed on it.
	Path string

	// Source is the complete source text to compile.
	Source string

	// Module is the process-unique synthetic name for the emitted module.
	Module string

	// References is the full resolved reference sequence the source is
	// compiled against.
	References []Reference

	// IncludeSymbols requests a separate debug-symbol stream alongside the
	// binary image. Set from the host capability flag, never per call.
	IncludeSymbols bool
}

// EmitResult is the outcome of a single emit attempt. Exactly one of the two
// shapes is populated: a successful result carries the binary image (and the
// symbol stream if requested), a failed one carries diagnostics.
type EmitResult struct {
	// Success reports whether emission produced a loadable image.
	Success bool

	// Image is the emitted in-memory module image. Nil on failure.
	Image []byte

	// Symbols is the separate debug-symbol stream, or nil when not
	// requested or not produced.
	Symbols []byte

	// Diagnostics holds the backend's reports in its own stable order.
	// Populated only on failure.
	Diagnostics []Diagnostic
}

// Backend wraps one compiler toolchain. Implementations must be safe for
// concurrent use: every Compile call owns its own compilation unit and emit
// buffers.
type Backend interface {
	DiagnosticFormatter

	// ParseReference parses a reference library (source or serialized
	// image, dispatched by name) into reusable metadata. A library that
	// cannot be parsed or initialized is an environment failure, never a
	// compilation diagnostic.
	ParseReference(name string, data []byte) (Metadata, error)

	// MetadataReference wraps previously parsed metadata as a compiler
	// reference. The reference shares the metadata's underlying state.
	MetadataReference(meta Metadata) Reference

	// ImageReference materializes a serialized module image as a compiler
	// reference. Each call produces a fresh reference; nothing is cached.
	ImageReference(name string, image []byte) (Reference, error)

	// Compile runs a single authoritative emit attempt: parse the source,
	// check it against the reference set, and emit an in-memory image.
	// Ordinary compilation failures are reported through the EmitResult;
	// the error return is reserved for environment failures.
	Compile(req CompileRequest) (*EmitResult, error)
}

// Capabilities describes what the host runtime's loader supports. Resolved
// once at startup and threaded into the compilation engine's configuration.
type Capabilities struct {
	// DebugSymbols reports whether the loader accepts a separate
	// debug-symbol stream alongside the module image.
	DebugSymbols bool
}

// Type is a handle to one publicly exported type of a loaded module.
type Type interface {
	// Name is the type's simple name within its module.
	Name() string
}

// Module is a loaded, introspectable unit of compiled code resident in the
// running process.
type Module interface {
	// Name identifies the loaded module.
	Name() string
	// Types enumerates the module's publicly exported types in the order
	// the loader reports them.
	Types() []Type
}

// Loader bridges an in-memory module image into the running process. It is
// the host runtime's module loader behind a narrow interface.
type Loader interface {
	// LoadModule loads a binary image (and optional symbol stream) and
	// returns the live module. A rejected image is an environment failure
	// distinct from a compilation diagnostic.
	LoadModule(image, symbols []byte) (Module, error)

	// Capabilities reports the host loader's capability flags.
	Capabilities() Capabilities
}
