package main

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"macrobridge/internal/diag"
	"macrobridge/internal/observ"
	"macrobridge/internal/plugin"
	"macrobridge/internal/source"
	"macrobridge/internal/syntax"
)

type expandMode uint8

const (
	modeAttr expandMode = iota
	modeDerive
	modeInline
)

func (m expandMode) String() string {
	switch m {
	case modeAttr:
		return "attr"
	case modeDerive:
		return "derive"
	default:
		return "inline"
	}
}

var (
	expandPackage  string
	expandEdition  string
	expandMappings bool
)

var expandCmd = &cobra.Command{
	Use:   "expand",
	Short: "Expand macros found in source files",
}

func init() {
	expandCmd.PersistentFlags().StringVar(&expandPackage, "package", "", "only consult this macro package")
	expandCmd.PersistentFlags().StringVar(&expandEdition, "edition", "2024_07", "language edition passed to macros")
	expandCmd.PersistentFlags().BoolVar(&expandMappings, "mappings", false, "print where each generated line comes from")
	expandCmd.AddCommand(newExpandCmd(modeAttr, "attr FILE...", "Expand the first macro attribute of each item"))
	expandCmd.AddCommand(newExpandCmd(modeDerive, "derive FILE...", "Expand the macro derives of each item"))
	expandCmd.AddCommand(newExpandCmd(modeInline, "inline FILE...", "Expand an inline macro call in each file"))
}

func newExpandCmd(mode expandMode, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(cmd, mode, args)
		},
	}
}

// expansion is the outcome for one file.
type expansion struct {
	path  string
	file  source.FileID
	code  []*plugin.GeneratedFile
	diags []diag.Diagnostic
}

func runExpand(cmd *cobra.Command, mode expandMode, paths []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	colored, err := useColor(cmd)
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	timer := observ.NewTimer()
	b, err := openBridge(cmd.Context(), cfg, dialerFor(cfg), timer)
	if err != nil {
		return err
	}
	defer b.Close()

	results, err := b.expandFiles(cmd.Context(), mode, paths, timer)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := false
	for _, r := range results {
		for _, code := range r.code {
			fmt.Fprintf(out, "// %s: %s\n%s", r.path, code.Name, code.Content)
			if code.Content != "" && code.Content[len(code.Content)-1] != '\n' {
				fmt.Fprintln(out)
			}
			if expandMappings {
				printMappings(out, b.fs, r.file, code)
			}
		}
		printDiagnostics(cmd.ErrOrStderr(), b.fs, r.diags, colored)
		if diag.HasErrors(r.diags) {
			failed = true
		}
	}
	if showTimings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
		st := b.session.Stats()
		fmt.Fprintf(cmd.ErrOrStderr(), "requests: %d sent, %d memo, %d disk, %d degraded\n",
			st.Calls, st.MemoHits, st.DiskHits, st.Degraded)
	}
	if failed {
		return fmt.Errorf("macro expansion reported errors")
	}
	return nil
}

// expandFiles runs every file concurrently; results keep the input order.
func (b *bridge) expandFiles(ctx context.Context, mode expandMode, paths []string, timer *observ.Timer) ([]expansion, error) {
	results := make([]expansion, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			idx := timer.Begin("expand " + path)
			r, err := b.expandFile(mode, path)
			timer.End(idx, mode.String())
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *bridge) expandFile(mode expandMode, path string) (expansion, error) {
	id, err := b.fs.Load(path)
	if err != nil {
		return expansion{}, err
	}
	f, _ := b.fs.Get(id)
	text := string(f.Content)
	meta := plugin.Metadata{Edition: expandEdition}

	var r expansion
	if mode == modeInline {
		call, err := syntax.ParseInlineMacro(id, 0, text)
		if err != nil {
			return expansion{}, err
		}
		r, err = b.expandInline(path, call, meta)
		if err != nil {
			return expansion{}, err
		}
	} else {
		item, err := syntax.ParseItem(id, 0, text)
		if err != nil {
			return expansion{}, err
		}
		if mode == modeAttr {
			r, err = b.expandAttr(path, item, meta)
		} else {
			r, err = b.expandDerives(path, item, meta)
		}
		if err != nil {
			return expansion{}, err
		}
	}
	r.file = id
	return r, nil
}

// packages returns the suites to consult, sorted by package name.
func (b *bridge) packages() ([]string, error) {
	if expandPackage != "" {
		if _, ok := b.suites[expandPackage]; !ok {
			return nil, fmt.Errorf("unknown macro package %q", expandPackage)
		}
		return []string{expandPackage}, nil
	}
	names := make([]string, 0, len(b.suites))
	for name := range b.suites {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (b *bridge) expandAttr(path string, item syntax.Item, meta plugin.Metadata) (expansion, error) {
	pkgs, err := b.packages()
	if err != nil {
		return expansion{}, err
	}
	for _, attr := range item.Attributes {
		for _, pkg := range pkgs {
			suite := b.suites[pkg]
			if !suite.RecognizesAttribute(attr.Name) {
				continue
			}
			r := expansion{path: path}
			for _, p := range suite.Plugins() {
				res := p.GenerateCode(b.fs, item, meta)
				r.add(res.Code, res.Diagnostics)
			}
			return r, nil
		}
	}
	return expansion{}, fmt.Errorf("no macro attribute on the item")
}

func (b *bridge) expandDerives(path string, item syntax.Item, meta plugin.Metadata) (expansion, error) {
	pkgs, err := b.packages()
	if err != nil {
		return expansion{}, err
	}
	r := expansion{path: path}
	known := map[string]bool{}
	for _, pkg := range pkgs {
		suite := b.suites[pkg]
		for _, attr := range item.Attributes {
			if suite.RecognizesAttribute(attr.Name) {
				return expansion{}, fmt.Errorf("item carries macro attribute #[%s]; use `expand attr`", attr.Name)
			}
		}
		for _, d := range suite.DeclaredDerives() {
			known[d] = true
		}
		for _, p := range suite.Plugins() {
			res := p.GenerateCode(b.fs, item, meta)
			r.add(res.Code, res.Diagnostics)
		}
	}
	for _, attr := range item.Attributes {
		for _, name := range attr.DeriveNames() {
			if known[name] {
				continue
			}
			r.diags = append(r.diags, diag.Warningf(diag.BridgeUnknownDerive, attr.Ptr.Span(),
				"derive %s is not provided by any macro package", name))
		}
	}
	return r, nil
}

func (b *bridge) expandInline(path string, call syntax.InlineMacro, meta plugin.Metadata) (expansion, error) {
	pkgs, err := b.packages()
	if err != nil {
		return expansion{}, err
	}
	for _, pkg := range pkgs {
		p, ok := b.suites[pkg].InlineMacro(call.Name)
		if !ok {
			continue
		}
		r := expansion{path: path}
		res := p.GenerateCode(b.fs, call, meta)
		r.add(res.Code, res.Diagnostics)
		return r, nil
	}
	return expansion{}, fmt.Errorf("no package provides inline macro %q", call.Name)
}

func (r *expansion) add(code *plugin.GeneratedFile, diags []diag.Diagnostic) {
	if code != nil {
		r.code = append(r.code, code)
	}
	r.diags = append(r.diags, diags...)
}
