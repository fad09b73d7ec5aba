// Package syntax is the thin slice of the host syntax tree that macro plugins see.
// Nodes are opaque token ranges; the host owns the real tree.
package syntax

import (
	"strings"

	"macrobridge/internal/source"
	"macrobridge/internal/token"
)

// DB is the generic syntax database the compiler driver hands to plugins.
// It intentionally knows nothing about the analysis engine behind it.
type DB interface {
	FilePath(id source.FileID) string
}

// NodeKind classifies the nodes plugins receive.
type NodeKind uint8

const (
	KindTokens NodeKind = iota
	KindItem
	KindAttribute
	KindAttributeArgs
	KindInlineMacro
	KindInlineMacroArgs
)

// StablePtr identifies a node across re-parses of unchanged text.
type StablePtr struct {
	File  source.FileID
	Kind  NodeKind
	Start uint32
	End   uint32
}

// Span returns the covered range for diagnostics.
func (p StablePtr) Span() source.Span {
	return source.Span{File: p.File, Start: p.Start, End: p.End}
}

// Node is a contiguous run of tokens.
type Node struct {
	Ptr    StablePtr
	Tokens []token.Token
}

// NewNode wraps tokens; the pointer covers the tokens without leading trivia.
func NewNode(kind NodeKind, tokens []token.Token) Node {
	n := Node{Tokens: tokens, Ptr: StablePtr{Kind: kind}}
	if len(tokens) > 0 {
		n.Ptr.File = tokens[0].Span.File
		n.Ptr.Start = tokens[0].Span.Start
		n.Ptr.End = tokens[len(tokens)-1].Span.End
	}
	return n
}

// File returns the file the node belongs to.
func (n Node) File() source.FileID { return n.Ptr.File }

// Text renders the node including the trivia between and before its tokens.
func (n Node) Text() string { return token.Render(n.Tokens) }

// SpanWithoutTrivia returns the span from the first token to the last one,
// excluding leading whitespace and comments.
func (n Node) SpanWithoutTrivia() source.TextSpan {
	return source.TextSpan{Start: source.OffsetAt(n.Ptr.Start), End: source.OffsetAt(n.Ptr.End)}
}

// Attribute is `#[name]` or `#[name(args)]` attached to an item.
type Attribute struct {
	Node
	Name string
	// Args includes the surrounding parentheses; nil when absent.
	Args *Node

	first, last int // token range inside the owning item
}

// DeriveNames returns the names listed in a `derive(...)` attribute, in source order.
func (a Attribute) DeriveNames() []string {
	if a.Name != "derive" || a.Args == nil {
		return nil
	}
	toks := a.Args.Tokens
	if len(toks) < 2 {
		return nil
	}
	var names []string
	var cur strings.Builder
	for _, tok := range toks[1 : len(toks)-1] {
		if tok.IsPunct(",") {
			if cur.Len() > 0 {
				names = append(names, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteString(tok.Text)
	}
	if cur.Len() > 0 {
		names = append(names, cur.String())
	}
	return names
}

// Item is a module-level item with its outer attributes.
type Item struct {
	Node
	Attributes []Attribute
}

// WithoutAttribute returns the item tokens with attribute i removed.
func (it Item) WithoutAttribute(i int) Node {
	a := it.Attributes[i]
	toks := make([]token.Token, 0, len(it.Tokens)-(a.last-a.first))
	toks = append(toks, it.Tokens[:a.first]...)
	toks = append(toks, it.Tokens[a.last:]...)
	return NewNode(KindItem, toks)
}

// InlineMacro is `name!(args)`, `name![args]` or `name!{args}`.
type InlineMacro struct {
	Node
	Name string
	// Args includes the delimiters.
	Args Node
}
