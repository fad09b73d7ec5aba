package plugin

import (
	"fmt"
	"slices"
)

// Suite is the set of plugins installed for one package.
type Suite struct {
	plugins []MacroPlugin
	inline  map[string]InlineMacroPlugin
}

func NewSuite() *Suite {
	return &Suite{inline: make(map[string]InlineMacroPlugin)}
}

// AddPlugin appends p; plugins run in insertion order.
func (s *Suite) AddPlugin(p MacroPlugin) {
	s.plugins = append(s.plugins, p)
}

// AddInlineMacro binds name to p. Binding a name twice is a programming error.
func (s *Suite) AddInlineMacro(name string, p InlineMacroPlugin) {
	if _, dup := s.inline[name]; dup {
		panic(fmt.Sprintf("plugin: inline macro %q bound twice", name))
	}
	s.inline[name] = p
}

// Add merges other into s.
func (s *Suite) Add(other *Suite) {
	s.plugins = append(s.plugins, other.plugins...)
	for name, p := range other.inline {
		s.AddInlineMacro(name, p)
	}
}

func (s *Suite) Plugins() []MacroPlugin { return slices.Clone(s.plugins) }

// InlineMacro returns the plugin bound to name.
func (s *Suite) InlineMacro(name string) (InlineMacroPlugin, bool) {
	p, ok := s.inline[name]
	return p, ok
}

// InlineMacroNames returns the bound names, sorted.
func (s *Suite) InlineMacroNames() []string {
	names := make([]string, 0, len(s.inline))
	for name := range s.inline {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DeclaredAttributes is the sorted union over all plugins.
func (s *Suite) DeclaredAttributes() []string {
	return s.union(MacroPlugin.DeclaredAttributes)
}

// DeclaredDerives is the sorted union over all plugins.
func (s *Suite) DeclaredDerives() []string {
	return s.union(MacroPlugin.DeclaredDerives)
}

func (s *Suite) union(get func(MacroPlugin) []string) []string {
	var out []string
	for _, p := range s.plugins {
		out = append(out, get(p)...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// RecognizesAttribute reports whether some plugin declares attr.
func (s *Suite) RecognizesAttribute(attr string) bool {
	_, found := slices.BinarySearch(s.DeclaredAttributes(), attr)
	return found
}
