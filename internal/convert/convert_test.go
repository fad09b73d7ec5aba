package convert

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"macrobridge/internal/diag"
	"macrobridge/internal/protocol/v1"
	"macrobridge/internal/protocol/v2"
	"macrobridge/internal/source"
	"macrobridge/internal/syntax"
)

func TestDowngradeTokenStream_PreservesText(t *testing.T) {
	fs := source.NewFileSet()
	inputs := []string{
		"fn a() {}",
		"#[derive(Drop)]\n// comment\nstruct S {\n    x: u8,\n}\n",
		"   ",
		"",
	}
	for _, in := range inputs {
		id := fs.AddVirtual("lib.cairo", []byte(in))
		node := syntax.NewNode(syntax.KindTokens, syntax.Lex(id, 0, in))
		ts := TokenStreamFromNode(fs, node, "2024_07")
		down := DowngradeTokenStream(ts)

		if down.String() != ts.String() {
			t.Errorf("downgrade changed text: %q -> %q", ts.String(), down.String())
		}
		if ts.String() != in {
			t.Errorf("stream for %q renders %q", in, ts.String())
		}
		if down.Metadata.OriginalFilePath != "lib.cairo" || down.Metadata.FileID != ts.Metadata.FileID {
			t.Errorf("metadata not carried over: %+v vs %+v", down.Metadata, ts.Metadata)
		}
	}
}

func TestDowngradeParams(t *testing.T) {
	item := v2.TokenStream{Tokens: []v2.TokenTree{{Ident: v2.Token{Content: "fn f() {}"}}}}
	args := v2.TokenStream{Tokens: []v2.TokenTree{{Ident: v2.Token{Content: "(1)"}}}}
	scope := v2.ProcMacroScope{Component: "pkg/lib"}

	attr := DowngradeAttribute(v2.ExpandAttributeParams{Context: scope, Attr: "a", Args: args, Item: item, CallSite: v2.TextSpan{Start: 1, End: 2}})
	want := v1.ExpandAttributeParams{
		Context: v1.ProcMacroScope{Component: "pkg/lib"},
		Attr:    "a",
		Args:    v1.TokenStream{Value: "(1)"},
		Item:    v1.TokenStream{Value: "fn f() {}"},
	}
	if diff := cmp.Diff(want, attr); diff != "" {
		t.Errorf("DowngradeAttribute (-want +got):\n%s", diff)
	}

	derives := []string{"B", "A"}
	der := DowngradeDerive(v2.ExpandDeriveParams{Context: scope, Derives: derives, Item: item})
	derives[0] = "changed"
	if diff := cmp.Diff([]string{"B", "A"}, der.Derives); diff != "" {
		t.Errorf("derive list aliased or reordered (-want +got):\n%s", diff)
	}

	in := DowngradeInline(v2.ExpandInlineParams{Context: scope, Name: "m", Args: args})
	if in.Name != "m" || in.Args.Value != "(1)" || in.Context.Component != "pkg/lib" {
		t.Errorf("DowngradeInline = %+v", in)
	}
}

func TestSpan_RoundTrip(t *testing.T) {
	wire := v2.TextSpan{Start: 3, End: 10}
	host := Span(wire)
	if host.Start.Width() != 3 || host.End.Width() != 10 {
		t.Fatalf("Span(%v) = %v", wire, host)
	}
	if back := WireSpan(host); back != wire {
		t.Fatalf("WireSpan(Span(%v)) = %v", wire, back)
	}
	if WireOffset(Offset(0)) != 0 || WireOffset(Offset(1<<31)) != 1<<31 {
		t.Fatalf("offset round trip drifted")
	}
}

func TestOrigin_KeepsTag(t *testing.T) {
	sp := v2.TextSpan{Start: 4, End: 9}
	tests := []struct {
		name string
		in   v2.CodeOrigin
		kind source.OriginKind
	}{
		{"start", v2.StartOrigin(4), source.OriginKindStart},
		{"span", v2.SpanOrigin(sp), source.OriginKindSpan},
		{"call site", v2.CallSiteOrigin(sp), source.OriginKindCallSite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Origin(tt.in)
			if !ok {
				t.Fatalf("Origin(%+v) rejected", tt.in)
			}
			if got.Kind() != tt.kind {
				t.Fatalf("kind = %v, want %v", got.Kind(), tt.kind)
			}
		})
	}

	cs, _ := Origin(v2.CallSiteOrigin(sp))
	if got, ok := cs.Span(); !ok || got != Span(sp) {
		t.Errorf("call-site span = %v, %v", got, ok)
	}
	if _, ok := Origin(v2.CodeOrigin{Kind: 42}); ok {
		t.Errorf("unknown tag accepted")
	}
}

func TestMappings_DropsMalformed(t *testing.T) {
	in := []v2.CodeMapping{
		{Span: v2.TextSpan{Start: 0, End: 5}, Origin: v2.StartOrigin(10)},
		{Span: v2.TextSpan{Start: 5, End: 2}, Origin: v2.StartOrigin(10)},
		{Span: v2.TextSpan{Start: 5, End: 6}, Origin: v2.CodeOrigin{}},
		{Span: v2.TextSpan{Start: 5, End: 9}, Origin: v2.CallSiteOrigin(v2.TextSpan{Start: 1, End: 2})},
	}
	out, dropped := Mappings(in)
	if dropped != 2 || len(out) != 2 {
		t.Fatalf("Mappings kept %d, dropped %d", len(out), dropped)
	}
	if out[1].Origin.Kind() != source.OriginKindCallSite {
		t.Fatalf("second mapping kind = %v", out[1].Origin.Kind())
	}
}

func TestCallSiteOf_ExcludesTrivia(t *testing.T) {
	m, err := syntax.ParseInlineMacro(7, 20, "\n  // c\n  mac!(x)")
	if err != nil {
		t.Fatal(err)
	}
	cs := CallSiteOf(m.Node)
	if cs.Ptr != m.Ptr {
		t.Fatalf("ptr = %+v", cs.Ptr)
	}
	if got := cs.Wire(); got != (v2.TextSpan{Start: 30, End: 37}) {
		t.Fatalf("wire span = %+v", got)
	}
	if got := cs.Primary(); got != (source.Span{File: 7, Start: 30, End: 37}) {
		t.Fatalf("primary = %v", got)
	}
}

func TestDiagnostics(t *testing.T) {
	cs := CallSite{Ptr: syntax.StablePtr{File: 2}, Span: Span(v2.TextSpan{Start: 10, End: 20})}
	in := []v2.Diagnostic{
		{Message: "bad", Severity: v2.SeverityError},
		{Message: "meh", Severity: v2.SeverityWarning, Span: &v2.TextSpan{Start: 12, End: 14}},
		{Message: "odd", Severity: 99},
	}
	want := []diag.Diagnostic{
		{Severity: diag.SevError, Code: diag.MacroError, Message: "bad", Primary: source.Span{File: 2, Start: 10, End: 20}},
		{Severity: diag.SevWarning, Code: diag.MacroWarning, Message: "meh", Primary: source.Span{File: 2, Start: 12, End: 14}},
		{Severity: diag.SevError, Code: diag.MacroError, Message: "odd", Primary: source.Span{File: 2, Start: 10, End: 20}},
	}
	if diff := cmp.Diff(want, Diagnostics(in, cs)); diff != "" {
		t.Fatalf("Diagnostics (-want +got):\n%s", diff)
	}
	if Diagnostics(nil, cs) != nil {
		t.Fatalf("no diagnostics must stay nil")
	}
}

func TestUpgradeResult(t *testing.T) {
	r := UpgradeResult(v1.Result{
		TokenStream: v1.TokenStream{Value: "fn gen() {}"},
		Diagnostics: []v1.Diagnostic{{Message: "w", Severity: v1.SeverityWarning}},
	})
	if r.TokenStream.String() != "fn gen() {}" {
		t.Fatalf("text = %q", r.TokenStream.String())
	}
	if len(r.CodeMappings) != 0 {
		t.Fatalf("v1 results have no mappings")
	}
	if len(r.Diagnostics) != 1 || r.Diagnostics[0].Severity != v2.SeverityWarning || r.Diagnostics[0].Span != nil {
		t.Fatalf("diagnostics = %+v", r.Diagnostics)
	}
	if !UpgradeResult(v1.Result{}).TokenStream.IsEmpty() {
		t.Fatalf("empty v1 result must stay empty")
	}

	whole := WholeOutputMapping("abc", Span(v2.TextSpan{Start: 5, End: 8}))
	if len(whole) != 1 || whole[0].Span.Width() != 3 || whole[0].Origin.Kind() != source.OriginKindCallSite {
		t.Fatalf("WholeOutputMapping = %+v", whole)
	}
}
