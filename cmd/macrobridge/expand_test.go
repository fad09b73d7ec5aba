package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"macrobridge/internal/catalogue"
	"macrobridge/internal/config"
	"macrobridge/internal/diag"
	"macrobridge/internal/observ"
	"macrobridge/internal/plugin"
	"macrobridge/internal/protocol/v2"
	"macrobridge/internal/source"
	"macrobridge/internal/testkit"
)

func writeSource(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func testBridge(t *testing.T) *bridge {
	t.Helper()
	defs := v2.DefinedMacros{Macros: []v2.PackageMacros{
		{Package: "alpha", Attributes: []string{"tool"}, Derives: []string{"Ser"}, InlineMacros: []string{"sel"}, Protocol: 2},
		{Package: "beta", Derives: []string{"De"}, Protocol: 1},
	}}
	srv := testkit.MacroServer(defs)
	dial := func(context.Context) (io.ReadWriteCloser, error) { return srv.Conn(), nil }

	cfg := config.Default()
	b, err := openBridge(context.Background(), cfg, dial, observ.NewTimer())
	if err != nil {
		t.Fatalf("openBridge: %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

func TestExpandFiles(t *testing.T) {
	b := testBridge(t)
	dir := t.TempDir()
	attr := writeSource(t, dir, "attr.cairo", "#[tool(x)]\nfn f() {}\n")
	derive := writeSource(t, dir, "derive.cairo", "#[derive(Ser, De, Drop)]\nstruct S {}\n")
	inline := writeSource(t, dir, "inline.cairo", "sel!(\"name\")")

	tests := []struct {
		mode  expandMode
		path  string
		code  []string
		codes []diag.Code
	}{
		{modeAttr, attr, []string{"// tool(x)\n\nfn f() {}"}, nil},
		{modeDerive, derive, []string{"impl Ser for item;\n", "impl De for item;\n"}, []diag.Code{diag.BridgeUnknownDerive}},
		{modeInline, inline, []string{"sel_expanded(\"name\")"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			res, err := b.expandFiles(context.Background(), tt.mode, []string{tt.path}, observ.NewTimer())
			if err != nil {
				t.Fatalf("expandFiles: %v", err)
			}
			var code []string
			for _, c := range res[0].code {
				code = append(code, c.Content)
			}
			if strings.Join(code, "|") != strings.Join(tt.code, "|") {
				t.Errorf("code = %q, want %q", code, tt.code)
			}
			var codes []diag.Code
			for _, d := range res[0].diags {
				codes = append(codes, d.Code)
			}
			if len(codes) != len(tt.codes) || (len(codes) > 0 && codes[0] != tt.codes[0]) {
				t.Errorf("diagnostics = %v", res[0].diags)
			}
		})
	}
}

func TestExpandFiles_Errors(t *testing.T) {
	b := testBridge(t)
	dir := t.TempDir()
	plain := writeSource(t, dir, "plain.cairo", "#[inline]\nfn f() {}")
	unknown := writeSource(t, dir, "unknown.cairo", "nope!(1)")

	if _, err := b.expandFiles(context.Background(), modeAttr, []string{plain}, observ.NewTimer()); err == nil {
		t.Errorf("item without macro attribute expanded")
	}
	if _, err := b.expandFiles(context.Background(), modeInline, []string{unknown}, observ.NewTimer()); err == nil {
		t.Errorf("unknown inline macro expanded")
	}
	if _, err := b.expandFiles(context.Background(), modeAttr, []string{filepath.Join(dir, "missing")}, observ.NewTimer()); err == nil {
		t.Errorf("missing file accepted")
	}
}

func TestOpenBridge_OfflineCatalogue(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Server.Catalogue = writeSource(t, dir, "macros.toml", "[package.p]\nattributes = [\"a\"]\n")

	b, err := openBridge(context.Background(), cfg, nil, observ.NewTimer())
	if err != nil {
		t.Fatalf("openBridge: %v", err)
	}
	defer b.Close()
	if !b.suites["p"].RecognizesAttribute("a") {
		t.Fatalf("offline catalogue not installed")
	}

	path := writeSource(t, dir, "lib.cairo", "#[a]\nfn f() {}")
	res, err := b.expandFiles(context.Background(), modeAttr, []string{path}, observ.NewTimer())
	if err != nil {
		t.Fatal(err)
	}
	if len(res[0].code) != 0 || len(res[0].diags) != 0 {
		t.Fatalf("expansion without a server must degrade: %+v", res[0])
	}

	if _, err := openBridge(context.Background(), config.Default(), nil, observ.NewTimer()); err == nil {
		t.Fatalf("bridge without server or catalogue accepted")
	}
}

func TestPrintDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("lib.cairo", []byte("fn a() {}\n#[foo]\nfn b() {}\n"))
	diags := []diag.Diagnostic{
		{Severity: diag.SevWarning, Code: diag.MacroWarning, Message: "second", Primary: source.Span{File: id, Start: 10, End: 16}},
		{Severity: diag.SevError, Code: diag.MacroError, Message: "first", Primary: source.Span{File: id, Start: 0, End: 2}},
	}
	var buf bytes.Buffer
	printDiagnostics(&buf, fs, diags, false)
	want := "lib.cairo:1:1: error PMC1002: first\n" +
		"lib.cairo:2:1: warning PMC1001: second\n"
	if buf.String() != want {
		t.Fatalf("output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestRenderCatalogue(t *testing.T) {
	cat, err := catalogue.Parse("[package.p]\nattributes = [\"a\", \"b\"]\ninline_macros = [\"m\"]\n")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	renderCatalogue(&buf, cat, false)
	want := "p (v2)\n  attributes:    a, b\n  inline macros: m\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestPrintMappings(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("lib.cairo", []byte("x\n#[tool]\nfn f() {}"))
	span := func(a, b uint32) source.TextSpan { return source.TextSpan{Start: source.OffsetAt(a), End: source.OffsetAt(b)} }
	code := &plugin.GeneratedFile{
		Name:    "proc_macro_tool",
		Content: "ab\ncd\n",
		CodeMappings: []source.CodeMapping{
			{Span: span(0, 2), Origin: source.OriginStart(source.OffsetAt(11))},
			{Span: span(0, 6), Origin: source.OriginCallSite(span(2, 9))},
		},
	}
	var buf bytes.Buffer
	printMappings(&buf, fs, id, code)
	want := "//   gen:1 -> lib.cairo:3:2\n//   gen:2 -> lib.cairo:2:1\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	printMappings(&buf, fs, id, &plugin.GeneratedFile{Content: "z"})
	if buf.String() != "//   gen:1 -> ?\n" {
		t.Fatalf("unmapped output = %q", buf.String())
	}
}
