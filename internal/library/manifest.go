package library

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"github.com/starview-labs/starview/pkg/compilation"
)

// Manifest entry kinds.
const (
	// KindPath points at a library file on disk, source or image.
	KindPath = "path"

	// KindImage carries a prebuilt library image, either from a file or
	// inline as base64.
	KindImage = "image"

	// KindProject defers to a sibling source file that is built into an
	// image when the reference set is resolved.
	KindProject = "project"
)

// ManifestError reports an invalid library manifest entry.
type ManifestError struct {
	// Index is the entry's position in the manifest.
	Index int

	// Reason describes what is wrong with the entry.
	Reason string
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("invalid library entry %d: %s", e.Index, e.Reason)
}

type pathEntry struct {
	Kind string `mapstructure:"kind"`
	Path string `mapstructure:"path"`
}

type imageEntry struct {
	Kind string `mapstructure:"kind"`
	Name string `mapstructure:"name"`
	Path string `mapstructure:"path"`
	Data string `mapstructure:"data"`
}

type projectEntry struct {
	Kind  string `mapstructure:"kind"`
	Name  string `mapstructure:"name"`
	Entry string `mapstructure:"entry"`
}

// decodeEntry turns one raw manifest entry into a reference descriptor.
func (m *Manager) decodeEntry(index int, raw map[string]any) (compilation.ReferenceDescriptor, error) {
	kind, _ := raw["kind"].(string)
	switch kind {
	case KindPath:
		var e pathEntry
		if err := mapstructure.Decode(raw, &e); err != nil {
			return nil, &ManifestError{Index: index, Reason: err.Error()}
		}
		if e.Path == "" {
			return nil, &ManifestError{Index: index, Reason: "path entry requires a path"}
		}
		return &compilation.FilePathReference{Path: m.resolve(e.Path)}, nil

	case KindImage:
		var e imageEntry
		if err := mapstructure.Decode(raw, &e); err != nil {
			return nil, &ManifestError{Index: index, Reason: err.Error()}
		}
		return m.decodeImageEntry(index, e)

	case KindProject:
		var e projectEntry
		if err := mapstructure.Decode(raw, &e); err != nil {
			return nil, &ManifestError{Index: index, Reason: err.Error()}
		}
		if e.Entry == "" {
			return nil, &ManifestError{Index: index, Reason: "project entry requires an entry file"}
		}
		if m.emitter == nil {
			return nil, &ManifestError{Index: index, Reason: "project entries require an emitter"}
		}
		name := e.Name
		if name == "" {
			name = filepath.Base(e.Entry)
		}
		entry := m.resolve(e.Entry)
		emitter := m.emitter
		return &compilation.ProjectOutputReference{
			Name: name,
			Emit: func() ([]byte, error) {
				src, err := os.ReadFile(entry)
				if err != nil {
					return nil, fmt.Errorf("failed to read project entry %s: %w", entry, err)
				}
				return emitter.EmitLibrary(name, src)
			},
		}, nil

	case "":
		return nil, &ManifestError{Index: index, Reason: "missing kind"}
	default:
		return nil, &ManifestError{Index: index, Reason: fmt.Sprintf("unknown kind %q", kind)}
	}
}

// decodeImageEntry loads an image entry's bytes from its file or inline
// base64 data.
func (m *Manager) decodeImageEntry(index int, e imageEntry) (compilation.ReferenceDescriptor, error) {
	switch {
	case e.Path != "" && e.Data != "":
		return nil, &ManifestError{Index: index, Reason: "image entry takes path or data, not both"}

	case e.Path != "":
		path := m.resolve(e.Path)
		image, err := os.ReadFile(path)
		if err != nil {
			return nil, &ManifestError{Index: index, Reason: fmt.Sprintf("failed to read image %s: %v", path, err)}
		}
		name := e.Name
		if name == "" {
			name = filepath.Base(path)
		}
		return &compilation.EmbeddedImageReference{Name: name, Image: image}, nil

	case e.Data != "":
		if e.Name == "" {
			return nil, &ManifestError{Index: index, Reason: "inline image entry requires a name"}
		}
		image, err := base64.StdEncoding.DecodeString(e.Data)
		if err != nil {
			return nil, &ManifestError{Index: index, Reason: fmt.Sprintf("invalid base64 data: %v", err)}
		}
		return &compilation.EmbeddedImageReference{Name: e.Name, Image: image}, nil

	default:
		return nil, &ManifestError{Index: index, Reason: "image entry requires a path or data"}
	}
}
