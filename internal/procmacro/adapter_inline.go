package procmacro

import (
	"macrobridge/internal/catalogue"
	"macrobridge/internal/convert"
	"macrobridge/internal/diag"
	"macrobridge/internal/plainkey"
	"macrobridge/internal/plugin"
	"macrobridge/internal/protocol/v2"
	"macrobridge/internal/syntax"
)

// inlineAdapter is shared by every inline macro of a package.
type inlineAdapter struct {
	session *Session
	pkg     catalogue.Package
}

func (a *inlineAdapter) GenerateCode(db syntax.DB, call syntax.InlineMacro, meta plugin.Metadata) plugin.InlineResult {
	cs := convert.CallSiteOf(call.Node)
	params := v2.ExpandInlineParams{
		Context:  a.session.scope(call.File(), a.pkg.Name),
		Name:     call.Name,
		Args:     convert.TokenStreamFromNode(db, call.Args, meta.Edition),
		CallSite: cs.Wire(),
	}
	res, ok := a.session.expand(a.pkg.Protocol, plainkey.FromInline(params), callInline(a.pkg.Protocol, params))
	if !ok {
		return plugin.InlineResult{}
	}
	code, diags := a.session.generated("inline_proc_macro", res, cs)
	if code == nil && !diag.HasErrors(diags) {
		// выражение не может раскрыться в пустоту
		diags = append(diags, diag.Errorf(diag.BridgeEmptyExpansion, cs.Primary(),
			"inline macro %s! expanded to nothing", call.Name))
	}
	return plugin.InlineResult{Code: code, Diagnostics: diags}
}
