package compilation

import "github.com/starview-labs/starview/pkg/backend"

// translateDiagnostics filters and formats backend diagnostics for display.
// A diagnostic survives when it is an outright error or a warning escalated
// to error; informational and suppressed findings are dropped. The
// compiler's reporting order is preserved.
func translateDiagnostics(f backend.DiagnosticFormatter, diags []backend.Diagnostic) []Message {
	msgs := make([]Message, 0, len(diags))
	for _, d := range diags {
		if d.Severity() != backend.SeverityError && !d.WarningAsError() {
			continue
		}
		msgs = append(msgs, Message{
			Text:     f.FormatDiagnostic(d),
			Severity: d.Severity().String(),
		})
	}
	return msgs
}
