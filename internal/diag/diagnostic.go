package diag

import (
	"fmt"

	"macrobridge/internal/source"
)

// Severity orders findings; higher is worse.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return fmt.Sprintf("severity(%d)", uint8(s))
}

// Diagnostic is one finding attached to a host span.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
}

// Errorf builds an error-level diagnostic.
func Errorf(code Code, at source.Span, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SevError, Code: code, Primary: at, Message: fmt.Sprintf(format, args...)}
}

// Warningf builds a warning-level diagnostic.
func Warningf(code Code, at source.Span, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SevWarning, Code: code, Primary: at, Message: fmt.Sprintf(format, args...)}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s %s: %s", d.Primary, d.Severity, d.Code.ID(), d.Message)
}

// HasErrors reports whether any diagnostic is an error.
func HasErrors(ds []Diagnostic) bool {
	for _, d := range ds {
		if d.Severity >= SevError {
			return true
		}
	}
	return false
}
