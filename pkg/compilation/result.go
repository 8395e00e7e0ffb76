package compilation

import (
	"time"

	"github.com/starview-labs/starview/pkg/backend"
)

// Document identifies one source unit for compilation. The path names the
// document in compiler error locations and run history; the service performs
// no file I/O on it.
type Document struct {
	Path string `json:"path"`
}

// Message is one display-ready compiler finding.
type Message struct {
	// Text is the formatted diagnostic, location included when known.
	Text string `json:"text"`

	// Severity is the diagnostic's reported severity. An escalated warning
	// keeps "warning" here even though it failed the build.
	Severity string `json:"severity"`
}

// Result is the outcome of a compilation attempt that reached a verdict:
// either a loaded module with its entry type, or the compiler's filtered
// error messages. Environment failures never produce a Result; they surface
// as errors from Compile.
type Result struct {
	// Success reports whether an emitted module was loaded and its entry
	// type resolved.
	Success bool `json:"success"`

	// Document is the compiled source unit's identity.
	Document Document `json:"document"`

	// Module is the synthetic name of the loaded module. Empty on failure.
	Module string `json:"module,omitempty"`

	// EntryType is the resolved entry type's name. Empty on failure.
	EntryType string `json:"entry_type,omitempty"`

	// Messages holds the error-relevant diagnostics in compiler order.
	// Empty on success.
	Messages []Message `json:"messages,omitempty"`

	// Type is the live entry type handle. Nil on failure.
	Type backend.Type `json:"-"`

	// Loaded is the live module handle. Nil on failure.
	Loaded backend.Module `json:"-"`

	// Source echoes the compiled text so failures can be rendered next to
	// what was actually compiled.
	Source string `json:"-"`

	// Duration is the wall time of the attempt.
	Duration time.Duration `json:"-"`
}
