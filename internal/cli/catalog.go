package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackforge/pkg/depgraph"
	"github.com/matzehuels/stackforge/pkg/engine"
	"github.com/matzehuels/stackforge/pkg/feature"
)

// featuresCommand lists the catalog, optionally with support for a target.
func (c *CLI) featuresCommand() *cobra.Command {
	var lang, fw, category string

	cmd := &cobra.Command{
		Use:   "features",
		Short: "List features and their support for a target",
		Example: `  stackforge features
  stackforge features --language rust --framework axum
  stackforge features --category security`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := c.engine()
			if err != nil {
				return err
			}
			rows, err := featureRows(eng, lang, fw, category)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				printInfo("No features in category %q", category)
				return nil
			}
			fmt.Println(renderFeatureTable(rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "language", "l", "", "show support for this language")
	cmd.Flags().StringVarP(&fw, "framework", "f", "", "show support for this framework (default: the language's first)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "only list this category")
	return cmd
}

// featureRows builds the table rows for the catalog. Support is filled in
// when a language or framework is given.
func featureRows(eng *engine.Engine, lang, fw, category string) ([]featureRow, error) {
	var unsupported feature.Set
	withTarget := lang != "" || fw != ""
	if withTarget {
		l, f, err := resolveTarget(eng, lang, fw)
		if err != nil {
			return nil, err
		}
		keys, err := eng.UnsupportedFeatures(l, f)
		if err != nil {
			return nil, err
		}
		unsupported = feature.NewSet(keys...)
	}

	var rows []featureRow
	for _, info := range eng.Catalog().Infos() {
		if category != "" && info.Category != category {
			continue
		}
		row := featureRow{Info: info, Requires: eng.Graph().DependenciesOf(info.Key)}
		if withTarget {
			ok := !unsupported.Has(info.Key)
			row.Supported = &ok
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// depsCommand prints the requirement and dependent trees of one feature.
func (c *CLI) depsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deps <feature>",
		Short: "Show what a feature requires and what requires it",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return c.completeFeatures(args), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := c.engine()
			if err != nil {
				return err
			}
			key := feature.Key(args[0])
			if err := eng.Catalog().Check(key); err != nil {
				return err
			}

			info, _ := eng.Catalog().Lookup(key)
			fmt.Println(StyleTitle.Render(info.Label) + " " + StyleDim.Render("("+string(key)+")"))
			if info.Description != "" {
				printDetail("%s", info.Description)
			}
			printNewline()

			fmt.Println(StyleHighlight.Render("Requires"))
			fmt.Print(renderTree(eng.Graph(), key, depgraph.Requirements))
			fmt.Println(StyleHighlight.Render("Required by"))
			fmt.Print(renderTree(eng.Graph(), key, depgraph.Dependents))
			return nil
		},
	}
}

// renderTree lists the features reachable from key, indented by depth,
// each annotated with the neighbour it was reached through.
func renderTree(g *depgraph.Graph, key feature.Key, dir depgraph.Direction) string {
	var b strings.Builder
	g.Walk(key, dir, func(s depgraph.Step) bool {
		indent := strings.Repeat("  ", s.Depth)
		line := indent + iconArrow + " " + string(s.Key)
		if s.Depth > 1 {
			line += StyleDim.Render(" (via " + string(s.Via) + ")")
		}
		b.WriteString(line + "\n")
		return true
	})
	if b.Len() == 0 {
		return "  " + StyleDim.Render("nothing") + "\n"
	}
	return b.String()
}

// validateCommand loads a tables file and reports authoring defects.
func (c *CLI) validateCommand() *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "validate [tables.toml]",
		Short: "Check feature tables for authoring defects",
		Long: `Validate loads feature tables and fails on unknown keys, dependency cycles
and conflicting framework overrides. Without an argument it checks the
tables selected by --tables, or the embedded defaults.

Use --dump to print the embedded tables as a starting point for your own.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dump {
				_, err := os.Stdout.Write(engine.DefaultTables())
				return err
			}
			if len(args) == 1 {
				c.tablesPath = args[0]
			}
			prog := newProgress(c.Logger)
			eng, err := c.engine()
			if err != nil {
				return err
			}
			prog.done("Loaded feature tables")

			printSuccess("Tables are valid")
			printKeyValue("Source", eng.Source())
			printStats(eng.Catalog().Len(), eng.Graph().EdgeCount(), len(eng.Targets().Languages()), len(eng.Targets().AllFrameworks()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "print the embedded tables and exit")
	return cmd
}

func (c *CLI) completeFeatures(args []string) []string {
	if len(args) > 0 {
		return nil
	}
	eng, err := c.engine()
	if err != nil {
		return nil
	}
	keys := eng.Catalog().Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}
