package compilation

import "github.com/starview-labs/starview/pkg/backend"

// ReferenceDescriptor declares one reference exported by the application, in
// one of four materialization states. The resolver dispatches on the concrete
// type; a descriptor outside this set is rejected with
// UnsupportedReferenceError.
type ReferenceDescriptor interface {
	// referenceDescriptor restricts implementations to this package.
	referenceDescriptor()
}

// AlreadyResolvedReference carries a reference that needs no further work.
// The resolver hands Ref to the compiler as-is.
type AlreadyResolvedReference struct {
	Ref backend.Reference
}

// EmbeddedImageReference carries a serialized library image held in memory,
// typically compiled into the application binary.
type EmbeddedImageReference struct {
	// Name identifies the library in logs and error messages.
	Name string

	// Image is the serialized library image.
	Image []byte
}

// FilePathReference points at a library file on disk. Resolution reads and
// parses the file through the process-wide metadata cache, so repeated
// resolutions of the same path share one parsed instance.
type FilePathReference struct {
	// Path locates the library file. Cache lookups treat it
	// case-insensitively.
	Path string
}

// ProjectOutputReference defers to a sibling project that emits its own
// output image on demand.
type ProjectOutputReference struct {
	// Name identifies the project in logs and error messages.
	Name string

	// Emit produces the project's serialized output image.
	Emit func() ([]byte, error)
}

func (*AlreadyResolvedReference) referenceDescriptor() {}
func (*EmbeddedImageReference) referenceDescriptor()   {}
func (*FilePathReference) referenceDescriptor()        {}
func (*ProjectOutputReference) referenceDescriptor()   {}
