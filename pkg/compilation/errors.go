package compilation

import "fmt"

// UnsupportedReferenceError indicates a reference descriptor of a kind the
// resolver does not recognize. It points at a programming error in the
// application's reference enumeration, not at the source being compiled.
type UnsupportedReferenceError struct {
	// Kind is the Go type of the rejected descriptor.
	Kind string
}

func (e *UnsupportedReferenceError) Error() string {
	return fmt.Sprintf("unsupported reference descriptor kind %s", e.Kind)
}

// ReferenceReadError indicates a reference library that could not be read,
// parsed, or emitted during resolution.
type ReferenceReadError struct {
	// Name is the path or name of the failing library.
	Name string

	// Err is the underlying failure.
	Err error
}

func (e *ReferenceReadError) Error() string {
	return fmt.Sprintf("failed to read reference %s: %v", e.Name, e.Err)
}

func (e *ReferenceReadError) Unwrap() error { return e.Err }

// ModuleLoadError indicates an emitted image the host loader refused to
// load. Emission already succeeded at that point, so the failure is
// environmental and never reported as a compiler diagnostic.
type ModuleLoadError struct {
	// Module is the synthetic name of the rejected module.
	Module string

	// Err is the loader's failure.
	Err error
}

func (e *ModuleLoadError) Error() string {
	return fmt.Sprintf("failed to load module %s: %v", e.Module, e.Err)
}

func (e *ModuleLoadError) Unwrap() error { return e.Err }

// EntryTypeNotFoundError indicates a loaded module that exports no type with
// the expected entry prefix. Compiled views are generated code, so a missing
// entry type means the generation contract is broken.
type EntryTypeNotFoundError struct {
	// Prefix is the entry-type prefix the service searched for.
	Prefix string

	// Module is the loaded module that was searched.
	Module string
}

func (e *EntryTypeNotFoundError) Error() string {
	return fmt.Sprintf("no exported type with prefix %q in module %s", e.Prefix, e.Module)
}
