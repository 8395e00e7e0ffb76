package backend

import "strings"

// Severity classifies a compiler diagnostic.
type Severity int

// Severity levels reported by a compiler backend.
const (
	// SeverityError indicates the source unit cannot be compiled.
	SeverityError Severity = iota
	// SeverityWarning indicates a suspicious construct that does not block emission.
	SeverityWarning
	// SeverityInfo indicates informational feedback.
	SeverityInfo
	// SeverityHidden indicates a diagnostic that is not meant for display.
	SeverityHidden
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	case "hidden":
		return SeverityHidden, true
	default:
		return SeverityWarning, false
	}
}
