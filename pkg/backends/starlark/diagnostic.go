package starlark

import (
	"errors"
	"fmt"

	"github.com/starview-labs/starview/pkg/backend"
	"go.starlark.net/resolve"
	"go.starlark.net/syntax"
)

// Diagnostic is a position-tagged compiler finding. The Starlark toolchain
// reports syntax and resolution problems as hard errors, so every diagnostic
// it produces carries SeverityError; the type still satisfies the full
// backend surface so severity filtering stays backend-agnostic.
type Diagnostic struct {
	pos      syntax.Position
	msg      string
	severity backend.Severity
}

// Severity reports the finding's severity level.
func (d *Diagnostic) Severity() backend.Severity { return d.severity }

// WarningAsError reports whether a warning was escalated to an error. The
// Starlark toolchain has no escalation switches, so it is always false.
func (d *Diagnostic) WarningAsError() bool { return false }

// Message returns the bare diagnostic text without its location.
func (d *Diagnostic) Message() string { return d.msg }

// Position returns the source location. It is invalid when the finding has
// no single location.
func (d *Diagnostic) Position() syntax.Position { return d.pos }

// FormatDiagnostic renders a diagnostic as "path:line:col: message".
func (r *Runtime) FormatDiagnostic(d backend.Diagnostic) string {
	sd, ok := d.(*Diagnostic)
	if !ok {
		return fmt.Sprintf("%s: %v", d.Severity(), d)
	}
	if !sd.pos.IsValid() {
		return sd.msg
	}
	return fmt.Sprintf("%s: %s", sd.pos, sd.msg)
}

// diagnosticsFromError converts a parse or resolve failure into diagnostics.
// Resolution failures fan out into one diagnostic per offending name, in the
// resolver's reporting order.
func diagnosticsFromError(err error) []backend.Diagnostic {
	var list resolve.ErrorList
	if errors.As(err, &list) {
		diags := make([]backend.Diagnostic, 0, len(list))
		for _, e := range list {
			diags = append(diags, &Diagnostic{pos: e.Pos, msg: e.Msg, severity: backend.SeverityError})
		}
		return diags
	}

	var syn syntax.Error
	if errors.As(err, &syn) {
		return []backend.Diagnostic{&Diagnostic{pos: syn.Pos, msg: syn.Msg, severity: backend.SeverityError}}
	}

	var rerr resolve.Error
	if errors.As(err, &rerr) {
		return []backend.Diagnostic{&Diagnostic{pos: rerr.Pos, msg: rerr.Msg, severity: backend.SeverityError}}
	}

	return []backend.Diagnostic{&Diagnostic{msg: err.Error(), severity: backend.SeverityError}}
}
