package procmacro

import (
	"strconv"

	"macrobridge/internal/convert"
	"macrobridge/internal/diag"
	"macrobridge/internal/plugin"
	"macrobridge/internal/protocol/v2"
	"macrobridge/internal/trace"
)

// ExecutableAux tags code generated by an executable attribute.
type ExecutableAux struct {
	Attribute string
}

// generated maps a server answer into host space. Code is nil when the
// macro produced no text.
func (s *Session) generated(name string, res v2.Result, cs convert.CallSite) (*plugin.GeneratedFile, []diag.Diagnostic) {
	diags := convert.Diagnostics(res.Diagnostics, cs)
	text := res.TokenStream.String()
	if text == "" {
		return nil, diags
	}

	mappings, dropped := convert.Mappings(res.CodeMappings)
	if dropped > 0 {
		trace.Point(s.tracer, trace.ScopeRequest, "mappings:dropped", strconv.Itoa(dropped))
		diags = append(diags, diag.Warningf(diag.BridgeMalformedResult, cs.Primary(),
			"macro %s returned %d malformed code mappings; they were ignored", name, dropped))
	}
	if len(mappings) == 0 {
		mappings = convert.WholeOutputMapping(text, cs.Span)
	}
	return &plugin.GeneratedFile{Name: name, Content: text, CodeMappings: mappings}, diags
}
