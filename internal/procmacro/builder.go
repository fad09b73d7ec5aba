package procmacro

import (
	"strconv"

	"macrobridge/internal/catalogue"
	"macrobridge/internal/plugin"
	"macrobridge/internal/trace"
)

// BuildSuites creates one suite per catalogue package. This is the only
// place adapters are constructed; each is bound to s for its lifetime.
//
// Every suite gets exactly one item adapter, and one inline adapter shared
// by all of the package's inline macro names. Suites are never updated:
// a new catalogue means a new call.
func (s *Session) BuildSuites(cat *catalogue.Catalogue) map[string]*plugin.Suite {
	sp := trace.Begin(s.tracer, trace.ScopeSession, "build-suites", 0).
		WithExtra("packages", strconv.Itoa(cat.Len()))
	defer sp.End("")

	suites := make(map[string]*plugin.Suite, cat.Len())
	for _, pkg := range cat.Packages() {
		suite := plugin.NewSuite()
		suite.AddPlugin(&itemAdapter{session: s, pkg: pkg, attrs: pkg.DeclaredAttributes()})

		inline := &inlineAdapter{session: s, pkg: pkg}
		for _, name := range pkg.InlineMacros {
			if _, dup := suite.InlineMacro(name); dup {
				continue
			}
			suite.AddInlineMacro(name, inline)
		}
		suites[pkg.Name] = suite
	}
	return suites
}
