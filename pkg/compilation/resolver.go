package compilation

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/starview-labs/starview/pkg/backend"
)

// Resolver materializes reference descriptors into compiler references. It
// owns the dispatch over the descriptor union: adding a descriptor kind means
// extending Resolve's switch.
type Resolver struct {
	backend backend.Backend
	cache   *ReferenceCache
	logger  *slog.Logger
}

// NewResolver creates a resolver backed by b and cache.
func NewResolver(b backend.Backend, cache *ReferenceCache, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{backend: b, cache: cache, logger: logger}
}

// Resolve materializes a single descriptor. File-path descriptors go through
// the metadata cache; embedded images and project outputs produce a fresh
// reference on every call.
func (r *Resolver) Resolve(desc ReferenceDescriptor) (backend.Reference, error) {
	switch d := desc.(type) {
	case *AlreadyResolvedReference:
		return d.Ref, nil

	case *EmbeddedImageReference:
		ref, err := r.backend.ImageReference(d.Name, d.Image)
		if err != nil {
			return nil, &ReferenceReadError{Name: d.Name, Err: err}
		}
		return ref, nil

	case *FilePathReference:
		meta, err := r.cache.GetOrParse(d.Path)
		if err != nil {
			return nil, err
		}
		return r.backend.MetadataReference(meta), nil

	case *ProjectOutputReference:
		image, err := d.Emit()
		if err != nil {
			return nil, &ReferenceReadError{Name: d.Name, Err: err}
		}
		ref, err := r.backend.ImageReference(d.Name, image)
		if err != nil {
			return nil, &ReferenceReadError{Name: d.Name, Err: err}
		}
		return ref, nil

	default:
		return nil, &UnsupportedReferenceError{Kind: fmt.Sprintf("%T", desc)}
	}
}

// ResolveAll materializes descriptors in order. Duplicates are preserved;
// the metadata cache already collapses repeated paths to one parsed
// instance. The first failure aborts the whole resolution.
func (r *Resolver) ResolveAll(descs []ReferenceDescriptor) ([]backend.Reference, error) {
	refs := make([]backend.Reference, 0, len(descs))
	for _, desc := range descs {
		ref, err := r.Resolve(desc)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
