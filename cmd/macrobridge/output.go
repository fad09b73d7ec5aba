package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"macrobridge/internal/diag"
	"macrobridge/internal/plugin"
	"macrobridge/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	nameColor    = color.New(color.Bold)
)

func severityLabel(sev diag.Severity, colored bool) string {
	label := sev.String()
	if !colored {
		return label
	}
	c := infoColor
	switch sev {
	case diag.SevError:
		c = errorColor
	case diag.SevWarning:
		c = warningColor
	}
	c.EnableColor()
	return c.Sprint(label)
}

// printDiagnostics writes one line per diagnostic:
// path:line:col: severity CODE: message
func printDiagnostics(w io.Writer, fs *source.FileSet, diags []diag.Diagnostic, colored bool) {
	bag := diag.Collect(diags)
	bag.Sort()
	bag.Dedup()
	for _, d := range bag.Items() {
		start, _ := fs.Resolve(d.Primary)
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			fs.FilePath(d.Primary.File), start.Line, start.Col,
			severityLabel(d.Severity, colored), d.Code.ID(), d.Message)
	}
}

// printMappings lists where each non-empty generated line points in the
// input file: //   gen:LINE -> path:line:col
func printMappings(w io.Writer, fs *source.FileSet, file source.FileID, code *plugin.GeneratedFile) {
	off := source.StartOffset
	for i, line := range strings.SplitAfter(code.Content, "\n") {
		body := strings.TrimSuffix(line, "\n")
		span := source.SpanOf(off, body)
		off = off.AddWidth(source.WidthOf(line))
		if body == "" {
			continue
		}
		orig, ok := source.TranslateSpan(code.CodeMappings, span)
		if !ok {
			fmt.Fprintf(w, "//   gen:%d -> ?\n", i+1)
			continue
		}
		at, _ := fs.Resolve(source.SpanIn(file, orig))
		fmt.Fprintf(w, "//   gen:%d -> %s:%d:%d\n", i+1, fs.FilePath(file), at.Line, at.Col)
	}
}
