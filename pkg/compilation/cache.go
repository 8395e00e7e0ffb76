package compilation

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/starview-labs/starview/pkg/backend"
)

// FileReader reads reference library bytes from their path. The default
// implementation reads the local filesystem; tests and embedded hosts can
// substitute their own.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// osFiles is the default FileReader over the local filesystem.
type osFiles struct{}

func (osFiles) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ReferenceCache holds parsed reference metadata by library path for the
// lifetime of the process. Paths are compared case-insensitively. Concurrent
// first lookups of the same path may both read and parse, but only the first
// writer's metadata is retained; every caller ends up sharing that one
// instance. Failed lookups are not cached, so a later call can succeed once
// the underlying file is fixed.
type ReferenceCache struct {
	backend backend.Backend
	files   FileReader
	logger  *slog.Logger

	mu      sync.RWMutex
	entries map[string]backend.Metadata
}

// NewReferenceCache creates an empty cache that reads through files and
// parses through b. A nil files reads the local filesystem.
func NewReferenceCache(b backend.Backend, files FileReader, logger *slog.Logger) *ReferenceCache {
	if files == nil {
		files = osFiles{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ReferenceCache{
		backend: b,
		files:   files,
		logger:  logger,
		entries: make(map[string]backend.Metadata),
	}
}

// GetOrParse returns the cached metadata for path, reading and parsing the
// file on first use.
func (c *ReferenceCache) GetOrParse(path string) (backend.Metadata, error) {
	key := strings.ToLower(path)

	c.mu.RLock()
	meta, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return meta, nil
	}

	data, err := c.files.ReadFile(path)
	if err != nil {
		return nil, &ReferenceReadError{Name: path, Err: err}
	}
	parsed, err := c.backend.ParseReference(path, data)
	if err != nil {
		return nil, &ReferenceReadError{Name: path, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if meta, ok := c.entries[key]; ok {
		// Lost the race; share the first writer's copy.
		return meta, nil
	}
	c.entries[key] = parsed
	c.logger.Debug("cached reference metadata", "path", path)
	return parsed, nil
}

// Len reports the number of cached entries.
func (c *ReferenceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
