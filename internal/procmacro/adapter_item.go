package procmacro

import (
	"slices"

	"macrobridge/internal/catalogue"
	"macrobridge/internal/convert"
	"macrobridge/internal/plainkey"
	"macrobridge/internal/plugin"
	"macrobridge/internal/protocol/v2"
	"macrobridge/internal/syntax"
)

// itemAdapter serves the attributes and derives of one package.
type itemAdapter struct {
	session *Session
	pkg     catalogue.Package
	attrs   []string // attributes and executables
}

func (a *itemAdapter) DeclaredAttributes() []string   { return slices.Clone(a.attrs) }
func (a *itemAdapter) DeclaredDerives() []string      { return slices.Clone(a.pkg.Derives) }
func (a *itemAdapter) ExecutableAttributes() []string { return slices.Clone(a.pkg.Executables) }

// GenerateCode expands the first declared attribute on item. Without one it
// expands the declared derives, which keep the original item in place.
func (a *itemAdapter) GenerateCode(db syntax.DB, item syntax.Item, meta plugin.Metadata) plugin.Result {
	for i, attr := range item.Attributes {
		if slices.Contains(a.attrs, attr.Name) {
			return a.expandAttribute(db, item, i, meta)
		}
	}
	derives, at := a.declaredDerives(item)
	if len(derives) == 0 {
		return plugin.Result{}
	}
	return a.expandDerive(db, item, derives, at, meta)
}

func (a *itemAdapter) expandAttribute(db syntax.DB, item syntax.Item, i int, meta plugin.Metadata) plugin.Result {
	attr := item.Attributes[i]
	cs := convert.CallSiteOf(attr.Node)
	args := syntax.Node{Ptr: syntax.StablePtr{File: item.File(), Kind: syntax.KindAttributeArgs}}
	if attr.Args != nil {
		args = *attr.Args
	}
	params := v2.ExpandAttributeParams{
		Context:  a.session.scope(item.File(), a.pkg.Name),
		Attr:     attr.Name,
		Args:     convert.TokenStreamFromNode(db, args, meta.Edition),
		Item:     convert.TokenStreamFromNode(db, item.WithoutAttribute(i), meta.Edition),
		CallSite: cs.Wire(),
	}
	res, ok := a.session.expand(a.pkg.Protocol, plainkey.FromAttribute(params), callAttribute(a.pkg.Protocol, params))
	if !ok {
		return plugin.Result{}
	}
	code, diags := a.session.generated("proc_macro_"+attr.Name, res, cs)
	if code != nil && a.pkg.IsExecutable(attr.Name) {
		code.AuxData = ExecutableAux{Attribute: attr.Name}
	}
	return plugin.Result{Code: code, Diagnostics: diags, RemoveOriginalItem: true}
}

// declaredDerives collects this package's derives from every derive(...)
// attribute, in source order without repeats. at is the attribute that
// contributed the first one.
func (a *itemAdapter) declaredDerives(item syntax.Item) (names []string, at int) {
	at = -1
	for i, attr := range item.Attributes {
		for _, name := range attr.DeriveNames() {
			if !slices.Contains(a.pkg.Derives, name) || slices.Contains(names, name) {
				continue
			}
			if at < 0 {
				at = i
			}
			names = append(names, name)
		}
	}
	return names, at
}

func (a *itemAdapter) expandDerive(db syntax.DB, item syntax.Item, derives []string, at int, meta plugin.Metadata) plugin.Result {
	cs := convert.CallSiteOf(item.Attributes[at].Node)
	params := v2.ExpandDeriveParams{
		Context:  a.session.scope(item.File(), a.pkg.Name),
		Derives:  derives,
		Item:     convert.TokenStreamFromNode(db, item.Node, meta.Edition),
		CallSite: cs.Wire(),
	}
	res, ok := a.session.expand(a.pkg.Protocol, plainkey.FromDerive(params), callDerive(a.pkg.Protocol, params))
	if !ok {
		return plugin.Result{}
	}
	code, diags := a.session.generated("proc_macro_derive", res, cs)
	return plugin.Result{Code: code, Diagnostics: diags}
}
