package starlark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

func TestSession_EvalExpression(t *testing.T) {
	rt := newTestRuntime(t)
	sess := rt.NewSession(nil)

	val, err := sess.Eval("1 + 2")
	require.NoError(t, err)
	assert.Equal(t, starlark.MakeInt(3), val)
}

func TestSession_StatementsBindNames(t *testing.T) {
	rt := newTestRuntime(t)
	sess := rt.NewSession(nil)

	val, err := sess.Eval("x = 5")
	require.NoError(t, err)
	assert.Nil(t, val, "a statement chunk has no value")

	val, err = sess.Eval("x * 2")
	require.NoError(t, err)
	assert.Equal(t, starlark.MakeInt(10), val)

	val, err = sess.Eval("def triple(v):\n    return v * 3\n")
	require.NoError(t, err)
	assert.Nil(t, val)

	val, err = sess.Eval("triple(x)")
	require.NoError(t, err)
	assert.Equal(t, starlark.MakeInt(15), val)
}

func TestSession_SeesRegisteredLibraries(t *testing.T) {
	rt := newTestRuntime(t)
	_, err := rt.ParseReference("libs/util.star", []byte(`
def double(v):
    return v * 2
`))
	require.NoError(t, err)

	sess := rt.NewSession(nil)
	val, err := sess.Eval("double(4)")
	require.NoError(t, err)
	assert.Equal(t, starlark.MakeInt(8), val)
	assert.Contains(t, sess.Names(), "double")
}

func TestSession_SnapshotsLoadContext(t *testing.T) {
	rt := newTestRuntime(t)
	sess := rt.NewSession(nil)

	// A library registered after the session opened is not visible.
	_, err := rt.ParseReference("libs/late.star", []byte("def late():\n    return 1\n"))
	require.NoError(t, err)

	_, err = sess.Eval("late()")
	require.Error(t, err)
}

func TestSession_BindingsShadowLibraries(t *testing.T) {
	rt := newTestRuntime(t)
	_, err := rt.ParseReference("libs/util.star", []byte(`
def tag():
    return "library"
`))
	require.NoError(t, err)

	sess := rt.NewSession(nil)
	_, err = sess.Eval("def tag():\n    return \"session\"\n")
	require.NoError(t, err)

	val, err := sess.Eval("tag()")
	require.NoError(t, err)
	assert.Equal(t, starlark.String("session"), val)
}

func TestSession_PrintCallback(t *testing.T) {
	rt := newTestRuntime(t)

	var printed []string
	sess := rt.NewSession(func(msg string) { printed = append(printed, msg) })

	_, err := sess.Eval(`print("hello from the session")`)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello from the session"}, printed)
}

func TestSession_SyntaxError(t *testing.T) {
	rt := newTestRuntime(t)
	sess := rt.NewSession(nil)

	_, err := sess.Eval("def (")
	require.Error(t, err)
}

func TestSession_NamesSorted(t *testing.T) {
	rt := newTestRuntime(t)
	sess := rt.NewSession(nil)

	_, err := sess.Eval("zeta = 1")
	require.NoError(t, err)
	_, err = sess.Eval("alpha = 2")
	require.NoError(t, err)

	names := sess.Names()
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}
