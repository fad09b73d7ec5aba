// Package catalogue holds the per-package macro declarations reported by
// the server. A Catalogue is immutable once built; a reload builds a new one.
package catalogue

import (
	"fmt"
	"maps"
	"slices"

	"github.com/BurntSushi/toml"

	"macrobridge/internal/protocol"
	"macrobridge/internal/protocol/v2"
)

// Package lists what one package declares.
type Package struct {
	Name         string              `toml:"-"`
	Attributes   []string            `toml:"attributes"`
	Derives      []string            `toml:"derives"`
	InlineMacros []string            `toml:"inline_macros"`
	Executables  []string            `toml:"executables"`
	Protocol     protocol.Generation `toml:"protocol"`
}

// DeclaredAttributes is attributes plus executables, deduplicated, in
// declaration order.
func (p Package) DeclaredAttributes() []string {
	out := make([]string, 0, len(p.Attributes)+len(p.Executables))
	seen := make(map[string]struct{}, cap(out))
	for _, name := range slices.Concat(p.Attributes, p.Executables) {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func (p Package) IsExecutable(attr string) bool {
	return slices.Contains(p.Executables, attr)
}

// Catalogue maps package names to their declarations.
type Catalogue struct {
	packages map[string]Package
}

// New builds a catalogue. A later package with the same name replaces an
// earlier one; a package without a protocol speaks v2.
func New(pkgs ...Package) (*Catalogue, error) {
	c := &Catalogue{packages: make(map[string]Package, len(pkgs))}
	for _, p := range pkgs {
		if p.Name == "" {
			return nil, fmt.Errorf("catalogue: package without a name")
		}
		if p.Protocol == 0 {
			p.Protocol = protocol.V2
		}
		if !p.Protocol.Valid() {
			return nil, fmt.Errorf("catalogue: package %q: unsupported protocol %d", p.Name, p.Protocol)
		}
		c.packages[p.Name] = p
	}
	return c, nil
}

// FromWire converts the server's definedMacros answer.
func FromWire(defs v2.DefinedMacros) (*Catalogue, error) {
	pkgs := make([]Package, 0, len(defs.Macros))
	for _, m := range defs.Macros {
		pkgs = append(pkgs, Package{
			Name:         m.Package,
			Attributes:   slices.Clone(m.Attributes),
			Derives:      slices.Clone(m.Derives),
			InlineMacros: slices.Clone(m.InlineMacros),
			Executables:  slices.Clone(m.Executables),
			Protocol:     protocol.Generation(m.Protocol),
		})
	}
	return New(pkgs...)
}

// file is the on-disk shape: one [package.<name>] table per package.
type file struct {
	Package map[string]Package `toml:"package"`
}

// Load reads a catalogue from a TOML file.
func Load(path string) (*Catalogue, error) {
	var f file
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("catalogue: %w", err)
	}
	return fromFile(f)
}

// Parse reads a catalogue from TOML text.
func Parse(data string) (*Catalogue, error) {
	var f file
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("catalogue: %w", err)
	}
	return fromFile(f)
}

func fromFile(f file) (*Catalogue, error) {
	pkgs := make([]Package, 0, len(f.Package))
	for _, name := range slices.Sorted(maps.Keys(f.Package)) {
		p := f.Package[name]
		p.Name = name
		pkgs = append(pkgs, p)
	}
	return New(pkgs...)
}

// Package returns the declarations of name.
func (c *Catalogue) Package(name string) (Package, bool) {
	p, ok := c.packages[name]
	return p, ok
}

// Packages returns every package, sorted by name.
func (c *Catalogue) Packages() []Package {
	out := make([]Package, 0, len(c.packages))
	for _, name := range slices.Sorted(maps.Keys(c.packages)) {
		out = append(out, c.packages[name])
	}
	return out
}

func (c *Catalogue) Len() int { return len(c.packages) }

// Wire converts back to the server's answer shape, sorted by package.
func (c *Catalogue) Wire() v2.DefinedMacros {
	var out v2.DefinedMacros
	for _, p := range c.Packages() {
		out.Macros = append(out.Macros, v2.PackageMacros{
			Package:      p.Name,
			Attributes:   p.Attributes,
			Derives:      p.Derives,
			InlineMacros: p.InlineMacros,
			Executables:  p.Executables,
			Protocol:     uint8(p.Protocol),
		})
	}
	return out
}
