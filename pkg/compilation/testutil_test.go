package compilation

import (
	"fmt"
	"io/fs"
	"sync"

	"github.com/starview-labs/starview/pkg/backend"
)

// Shared fakes for the compilation package tests. They stand in for a
// compiler backend, a host loader, and the filesystem so the service logic
// can be exercised without a real toolchain.

type fakeMeta struct {
	name string
}

func (m *fakeMeta) Name() string { return m.name }

type fakeRef struct {
	name string
}

func (r *fakeRef) Name() string { return r.name }

type fakeDiag struct {
	text      string
	severity  backend.Severity
	escalated bool
}

func (d *fakeDiag) Severity() backend.Severity { return d.severity }
func (d *fakeDiag) WarningAsError() bool       { return d.escalated }

type fakeType struct {
	name string
}

func (t *fakeType) Name() string { return t.name }

type fakeModule struct {
	name  string
	types []backend.Type
}

func (m *fakeModule) Name() string          { return m.name }
func (m *fakeModule) Types() []backend.Type { return m.types }

// fakeBackend records every call and lets tests script failures per path.
type fakeBackend struct {
	mu         sync.Mutex
	parseCalls []string
	parseErr   map[string]error
	imageErr   error
	compileFn  func(req backend.CompileRequest) (*backend.EmitResult, error)
	compiles   []backend.CompileRequest
}

func (b *fakeBackend) ParseReference(name string, data []byte) (backend.Metadata, error) {
	b.mu.Lock()
	b.parseCalls = append(b.parseCalls, name)
	err := b.parseErr[name]
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &fakeMeta{name: name}, nil
}

func (b *fakeBackend) MetadataReference(meta backend.Metadata) backend.Reference {
	return &fakeRef{name: meta.Name()}
}

func (b *fakeBackend) ImageReference(name string, image []byte) (backend.Reference, error) {
	if b.imageErr != nil {
		return nil, b.imageErr
	}
	return &fakeRef{name: name}, nil
}

func (b *fakeBackend) Compile(req backend.CompileRequest) (*backend.EmitResult, error) {
	b.mu.Lock()
	b.compiles = append(b.compiles, req)
	b.mu.Unlock()
	if b.compileFn != nil {
		return b.compileFn(req)
	}
	return &backend.EmitResult{Success: true, Image: []byte("image")}, nil
}

func (b *fakeBackend) FormatDiagnostic(d backend.Diagnostic) string {
	if fd, ok := d.(*fakeDiag); ok {
		return fd.text
	}
	return fmt.Sprintf("%v", d)
}

func (b *fakeBackend) parseCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.parseCalls)
}

func (b *fakeBackend) compileRequests() []backend.CompileRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]backend.CompileRequest(nil), b.compiles...)
}

// fakeLoader scripts the host loader side.
type fakeLoader struct {
	caps   backend.Capabilities
	loadFn func(image, symbols []byte) (backend.Module, error)

	mu    sync.Mutex
	loads int
}

func (l *fakeLoader) LoadModule(image, symbols []byte) (backend.Module, error) {
	l.mu.Lock()
	l.loads++
	l.mu.Unlock()
	if l.loadFn != nil {
		return l.loadFn(image, symbols)
	}
	return &fakeModule{name: "loaded", types: []backend.Type{&fakeType{name: "View_Main"}}}, nil
}

func (l *fakeLoader) Capabilities() backend.Capabilities { return l.caps }

func (l *fakeLoader) loadCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads
}

// fileMap is an in-memory FileReader.
type fileMap struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFileMap() *fileMap {
	return &fileMap{files: make(map[string][]byte)}
}

func (f *fileMap) ReadFile(path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return data, nil
}

func (f *fileMap) put(path string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = data
}

// fakeExporter scripts the application's reference enumeration.
type fakeExporter struct {
	mu    sync.Mutex
	calls int
	apps  []string
	descs []ReferenceDescriptor
	err   error
}

func (e *fakeExporter) ExportReferences(application string) ([]ReferenceDescriptor, error) {
	e.mu.Lock()
	e.calls++
	e.apps = append(e.apps, application)
	descs, err := e.descs, e.err
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return descs, nil
}

func (e *fakeExporter) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}
