package convert

import (
	"strconv"

	"macrobridge/internal/protocol/v1"
	"macrobridge/internal/protocol/v2"
	"macrobridge/internal/source"
	"macrobridge/internal/syntax"
)

// TokenStreamFromNode builds a v2 stream from a host node. Trivia become
// tokens of their own so the stream renders to exactly Node.Text().
func TokenStreamFromNode(db syntax.DB, n syntax.Node, edition string) v2.TokenStream {
	ts := v2.TokenStream{
		Tokens:   make([]v2.TokenTree, 0, len(n.Tokens)),
		Metadata: metadataFor(db, n.File(), edition),
	}
	for _, tok := range n.Tokens {
		for _, tr := range tok.Leading {
			ts.Tokens = append(ts.Tokens, tree(tr.Text, tr.Span))
		}
		if tok.Text != "" {
			ts.Tokens = append(ts.Tokens, tree(tok.Text, tok.Span))
		}
	}
	return ts
}

func tree(text string, sp source.Span) v2.TokenTree {
	return v2.TokenTree{Ident: v2.Token{Content: text, Span: v2.TextSpan{Start: sp.Start, End: sp.End}}}
}

func metadataFor(db syntax.DB, file source.FileID, edition string) v2.TokenStreamMetadata {
	md := v2.TokenStreamMetadata{
		FileID:  strconv.FormatUint(uint64(file), 10),
		Edition: edition,
	}
	if db != nil {
		md.OriginalFilePath = db.FilePath(file)
	}
	return md
}

// DowngradeTokenStream renders a v2 stream as v1 text. File identity and
// path are carried over unchanged.
func DowngradeTokenStream(ts v2.TokenStream) v1.TokenStream {
	return v1.TokenStream{
		Value: ts.String(),
		Metadata: v1.TokenStreamMetadata{
			OriginalFilePath: ts.Metadata.OriginalFilePath,
			FileID:           ts.Metadata.FileID,
		},
	}
}

func downgradeScope(s v2.ProcMacroScope) v1.ProcMacroScope {
	return v1.ProcMacroScope{Component: s.Component}
}

// DowngradeAttribute drops the call site, which v1 servers do not accept.
func DowngradeAttribute(p v2.ExpandAttributeParams) v1.ExpandAttributeParams {
	return v1.ExpandAttributeParams{
		Context: downgradeScope(p.Context),
		Attr:    p.Attr,
		Args:    DowngradeTokenStream(p.Args),
		Item:    DowngradeTokenStream(p.Item),
	}
}

func DowngradeDerive(p v2.ExpandDeriveParams) v1.ExpandDeriveParams {
	return v1.ExpandDeriveParams{
		Context: downgradeScope(p.Context),
		Derives: append([]string(nil), p.Derives...),
		Item:    DowngradeTokenStream(p.Item),
	}
}

func DowngradeInline(p v2.ExpandInlineParams) v1.ExpandInlineParams {
	return v1.ExpandInlineParams{
		Context: downgradeScope(p.Context),
		Name:    p.Name,
		Args:    DowngradeTokenStream(p.Args),
	}
}

// UpgradeResult lifts a v1 answer into v2 shape: the text becomes one
// token, diagnostics lose nothing because v1 never had spans, and no code
// mappings are reported.
func UpgradeResult(r v1.Result) v2.Result {
	out := v2.Result{
		TokenStream: v2.TokenStream{
			Metadata: v2.TokenStreamMetadata{
				OriginalFilePath: r.TokenStream.Metadata.OriginalFilePath,
				FileID:           r.TokenStream.Metadata.FileID,
			},
		},
	}
	if r.TokenStream.Value != "" {
		width := source.WidthOf(r.TokenStream.Value)
		out.TokenStream.Tokens = []v2.TokenTree{{Ident: v2.Token{
			Content: r.TokenStream.Value,
			Span:    v2.TextSpan{Start: 0, End: uint32(width)},
		}}}
	}
	for _, d := range r.Diagnostics {
		sev := v2.SeverityError
		if d.Severity == v1.SeverityWarning {
			sev = v2.SeverityWarning
		}
		out.Diagnostics = append(out.Diagnostics, v2.Diagnostic{Message: d.Message, Severity: sev})
	}
	return out
}
