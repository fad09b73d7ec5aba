package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"macrobridge/internal/catalogue"
	"macrobridge/internal/observ"
)

var catalogueFormat string

var catalogueCmd = &cobra.Command{
	Use:   "catalogue",
	Short: "List the macros each package declares",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		switch catalogueFormat {
		case "text", "json":
		default:
			return fmt.Errorf("unsupported format %q (must be text or json)", catalogueFormat)
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		colored, err := useColor(cmd)
		if err != nil {
			return err
		}
		b, err := openBridge(cmd.Context(), cfg, dialerFor(cfg), observ.NewTimer())
		if err != nil {
			return err
		}
		defer b.Close()

		if catalogueFormat == "json" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(b.catalogue.Wire())
		}
		renderCatalogue(cmd.OutOrStdout(), b.catalogue, colored)
		return nil
	},
}

func init() {
	catalogueCmd.Flags().StringVar(&catalogueFormat, "format", "text", "output format (text|json)")
}

func renderCatalogue(out io.Writer, cat *catalogue.Catalogue, colored bool) {
	for _, p := range cat.Packages() {
		name := p.Name
		if colored {
			nameColor.EnableColor()
			name = nameColor.Sprint(name)
		}
		fmt.Fprintf(out, "%s (%s)\n", name, p.Protocol)
		printNames(out, "attributes", p.Attributes)
		printNames(out, "executables", p.Executables)
		printNames(out, "derives", p.Derives)
		printNames(out, "inline macros", p.InlineMacros)
	}
}

func printNames(out io.Writer, label string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(out, "  %-14s %s\n", label+":", strings.Join(names, ", "))
}
