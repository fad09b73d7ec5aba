package convert

import (
	"macrobridge/internal/diag"
	"macrobridge/internal/protocol/v2"
	"macrobridge/internal/source"
)

// Severity maps a wire severity; unknown values are treated as errors.
func Severity(s v2.Severity) diag.Severity {
	switch s {
	case v2.SeverityWarning:
		return diag.SevWarning
	case v2.SeverityInfo:
		return diag.SevInfo
	default:
		return diag.SevError
	}
}

// Diagnostics converts macro diagnostics. A diagnostic with a span points at
// it; the rest point at the call site.
func Diagnostics(ds []v2.Diagnostic, callSite CallSite) []diag.Diagnostic {
	if len(ds) == 0 {
		return nil
	}
	out := make([]diag.Diagnostic, 0, len(ds))
	for _, d := range ds {
		sev := Severity(d.Severity)
		primary := callSite.Primary()
		if d.Span != nil && d.Span.Start <= d.Span.End {
			primary = source.SpanIn(callSite.Ptr.File, Span(*d.Span))
		}
		out = append(out, diag.Diagnostic{
			Severity: sev,
			Code:     diag.MacroCode(sev),
			Message:  d.Message,
			Primary:  primary,
		})
	}
	return out
}
