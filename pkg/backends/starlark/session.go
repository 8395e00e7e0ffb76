package starlark

import (
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Session is an interactive evaluation scope over the runtime's load
// context. The session sees every registered library's exports; names bound
// during the session shadow them. Sessions are not safe for concurrent use.
type Session struct {
	rt      *Runtime
	thread  *starlark.Thread
	globals starlark.StringDict
}

// NewSession creates a session seeded with a snapshot of the current load
// context. Print output from evaluated code goes to print when set,
// otherwise to the runtime log.
func (r *Runtime) NewSession(print func(string)) *Session {
	thread := r.newThread("session")
	if print != nil {
		thread.Print = func(_ *starlark.Thread, msg string) { print(msg) }
	}
	return &Session{
		rt:      r,
		thread:  thread,
		globals: r.environment(),
	}
}

// Eval evaluates one input chunk. A lone expression returns its value; any
// other chunk executes as statements, binds its names into the session, and
// returns nil.
func (s *Session) Eval(src string) (starlark.Value, error) {
	f, err := s.rt.opts.Parse("<session>", []byte(src), 0)
	if err != nil {
		return nil, err
	}
	if expr := soleExpr(f); expr != nil {
		return starlark.EvalExprOptions(f.Options, s.thread, expr, s.globals)
	}
	if err := starlark.ExecREPLChunk(f, s.thread, s.globals); err != nil {
		return nil, err
	}
	return nil, nil
}

// Names lists every name visible in the session, sorted.
func (s *Session) Names() []string {
	return s.globals.Keys()
}

// soleExpr returns the expression when the parsed chunk is exactly one
// expression statement.
func soleExpr(f *syntax.File) syntax.Expr {
	if len(f.Stmts) == 1 {
		if stmt, ok := f.Stmts[0].(*syntax.ExprStmt); ok {
			return stmt.X
		}
	}
	return nil
}
