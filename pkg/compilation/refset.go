package compilation

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/starview-labs/starview/pkg/backend"
)

// LibraryExporter enumerates the reference descriptors the named application
// exports. Implementations must return descriptors in a stable order.
type LibraryExporter interface {
	ExportReferences(application string) ([]ReferenceDescriptor, error)
}

// ReferenceSet resolves the application's exported references exactly once
// and replays the outcome for every later compilation. The first caller pays
// the enumeration and resolution cost; afterwards the set is fixed for the
// process lifetime, so changing references requires a restart. The outcome
// is sticky either way: a failed resolution keeps failing with the same
// error.
type ReferenceSet struct {
	application string
	exporter    LibraryExporter
	resolver    *Resolver
	logger      *slog.Logger

	once sync.Once
	refs []backend.Reference
	err  error
}

// NewReferenceSet creates an unresolved reference set for application.
func NewReferenceSet(application string, exp LibraryExporter, res *Resolver, logger *slog.Logger) *ReferenceSet {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ReferenceSet{application: application, exporter: exp, resolver: res, logger: logger}
}

// References returns the resolved reference sequence, resolving on first
// call. Concurrent first callers block until the single resolution finishes
// and then share its result.
func (s *ReferenceSet) References() ([]backend.Reference, error) {
	s.once.Do(func() {
		descs, err := s.exporter.ExportReferences(s.application)
		if err != nil {
			s.err = fmt.Errorf("failed to enumerate references: %w", err)
			return
		}
		refs, err := s.resolver.ResolveAll(descs)
		if err != nil {
			s.err = err
			return
		}
		s.refs = refs
		s.logger.Debug("resolved application references",
			"application", s.application,
			"count", len(refs),
		)
	})
	return s.refs, s.err
}
