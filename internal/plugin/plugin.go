// Package plugin defines the capability interfaces the compiler driver
// installs per package, and the Suite that bundles them.
package plugin

import (
	"macrobridge/internal/diag"
	"macrobridge/internal/source"
	"macrobridge/internal/syntax"
)

// Metadata is what the driver knows about the package being compiled.
type Metadata struct {
	Edition         string
	AllowedFeatures []string
	Cfg             []string
}

// GeneratedFile is a virtual file produced by a plugin.
type GeneratedFile struct {
	Name    string
	Content string
	// CodeMappings translate positions in Content back to the original file.
	CodeMappings []source.CodeMapping
	// AuxData is opaque to the driver; plugins use it to tag their output.
	AuxData any
}

// Result of running a MacroPlugin on an item.
// A nil Code with no diagnostics means the plugin had nothing to do.
type Result struct {
	Code               *GeneratedFile
	Diagnostics        []diag.Diagnostic
	RemoveOriginalItem bool
}

// InlineResult of running an InlineMacroPlugin on an expression.
type InlineResult struct {
	Code        *GeneratedFile
	Diagnostics []diag.Diagnostic
}

// MacroPlugin handles items annotated with attributes or derives.
type MacroPlugin interface {
	GenerateCode(db syntax.DB, item syntax.Item, meta Metadata) Result
	// DeclaredAttributes are attribute names the driver must treat as known.
	DeclaredAttributes() []string
	DeclaredDerives() []string
	// ExecutableAttributes are the subset of attributes that mark entry points.
	ExecutableAttributes() []string
}

// InlineMacroPlugin expands one `name!(...)` macro.
type InlineMacroPlugin interface {
	GenerateCode(db syntax.DB, call syntax.InlineMacro, meta Metadata) InlineResult
}
