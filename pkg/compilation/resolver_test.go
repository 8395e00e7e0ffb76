package compilation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// alienDescriptor is a descriptor kind the resolver does not know.
type alienDescriptor struct{}

func (*alienDescriptor) referenceDescriptor() {}

func newTestResolver(b *fakeBackend, files *fileMap) *Resolver {
	return NewResolver(b, NewReferenceCache(b, files, nil), nil)
}

func TestResolver_AlreadyResolved(t *testing.T) {
	r := newTestResolver(&fakeBackend{}, newFileMap())
	want := &fakeRef{name: "prebuilt"}

	ref, err := r.Resolve(&AlreadyResolvedReference{Ref: want})
	require.NoError(t, err)
	assert.Same(t, want, ref, "an already-resolved reference passes through untouched")
}

func TestResolver_EmbeddedImage(t *testing.T) {
	b := &fakeBackend{}
	r := newTestResolver(b, newFileMap())

	ref, err := r.Resolve(&EmbeddedImageReference{Name: "stdlib", Image: []byte{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, "stdlib", ref.Name())
}

func TestResolver_EmbeddedImage_Error(t *testing.T) {
	b := &fakeBackend{imageErr: errors.New("bad image")}
	r := newTestResolver(b, newFileMap())

	_, err := r.Resolve(&EmbeddedImageReference{Name: "stdlib", Image: []byte{1}})
	require.Error(t, err)

	var rerr *ReferenceReadError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "stdlib", rerr.Name)
	assert.ErrorContains(t, err, "bad image")
}

func TestResolver_FilePath_UsesCache(t *testing.T) {
	b := &fakeBackend{}
	files := newFileMap()
	files.put("libs/util.star", []byte("def f(): pass"))
	r := newTestResolver(b, files)

	first, err := r.Resolve(&FilePathReference{Path: "libs/util.star"})
	require.NoError(t, err)
	assert.Equal(t, "libs/util.star", first.Name())

	second, err := r.Resolve(&FilePathReference{Path: "libs/util.star"})
	require.NoError(t, err)
	assert.Equal(t, first.Name(), second.Name())
	assert.Equal(t, 1, b.parseCount(), "repeated resolutions share one parse")
}

func TestResolver_FilePath_ReadError(t *testing.T) {
	r := newTestResolver(&fakeBackend{}, newFileMap())

	_, err := r.Resolve(&FilePathReference{Path: "libs/missing.star"})
	require.Error(t, err)

	var rerr *ReferenceReadError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "libs/missing.star", rerr.Name)
}

func TestResolver_ProjectOutput(t *testing.T) {
	b := &fakeBackend{}
	r := newTestResolver(b, newFileMap())

	emitted := 0
	ref, err := r.Resolve(&ProjectOutputReference{
		Name: "formats",
		Emit: func() ([]byte, error) {
			emitted++
			return []byte("project image"), nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "formats", ref.Name())
	assert.Equal(t, 1, emitted)
}

func TestResolver_ProjectOutput_EmitError(t *testing.T) {
	r := newTestResolver(&fakeBackend{}, newFileMap())

	_, err := r.Resolve(&ProjectOutputReference{
		Name: "formats",
		Emit: func() ([]byte, error) { return nil, errors.New("emit failed") },
	})
	require.Error(t, err)

	var rerr *ReferenceReadError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "formats", rerr.Name)
	assert.ErrorContains(t, err, "emit failed")
}

func TestResolver_UnsupportedKind(t *testing.T) {
	r := newTestResolver(&fakeBackend{}, newFileMap())

	_, err := r.Resolve(&alienDescriptor{})
	require.Error(t, err)

	var uerr *UnsupportedReferenceError
	require.ErrorAs(t, err, &uerr)
	assert.Contains(t, uerr.Kind, "alienDescriptor")
	assert.Contains(t, err.Error(), "unsupported reference descriptor kind")
}

func TestResolver_ResolveAll_PreservesOrder(t *testing.T) {
	b := &fakeBackend{}
	files := newFileMap()
	files.put("libs/a.star", []byte("a = 1"))
	r := newTestResolver(b, files)

	refs, err := r.ResolveAll([]ReferenceDescriptor{
		&AlreadyResolvedReference{Ref: &fakeRef{name: "first"}},
		&EmbeddedImageReference{Name: "second", Image: []byte{1}},
		&FilePathReference{Path: "libs/a.star"},
	})
	require.NoError(t, err)
	require.Len(t, refs, 3)

	names := []string{refs[0].Name(), refs[1].Name(), refs[2].Name()}
	assert.Equal(t, []string{"first", "second", "libs/a.star"}, names)
}

func TestResolver_ResolveAll_AbortsOnFirstFailure(t *testing.T) {
	b := &fakeBackend{}
	r := newTestResolver(b, newFileMap())

	refs, err := r.ResolveAll([]ReferenceDescriptor{
		&AlreadyResolvedReference{Ref: &fakeRef{name: "first"}},
		&FilePathReference{Path: "libs/missing.star"},
		&EmbeddedImageReference{Name: "never reached", Image: []byte{1}},
	})
	require.Error(t, err)
	assert.Nil(t, refs)

	var rerr *ReferenceReadError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "libs/missing.star", rerr.Name)
}
