package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackforge/pkg/engine"
	"github.com/matzehuels/stackforge/pkg/feature"
	"github.com/matzehuels/stackforge/pkg/project/store"
	"github.com/matzehuels/stackforge/pkg/render/nodelink"
)

// graphOpts holds the flags of the graph command.
type graphOpts struct {
	output    string
	format    string
	language  string
	framework string
	project   string
	focus     string
	detailed  bool
}

// validFormats is the set of supported graph output formats.
var validFormats = map[string]bool{"dot": true, "svg": true, "pdf": true, "png": true}

// graphCommand renders the feature dependency graph.
func (c *CLI) graphCommand() *cobra.Command {
	opts := &graphOpts{}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the feature dependency graph",
		Long: `Render the feature dependency graph as DOT, SVG, PDF or PNG.

With --language/--framework, features the target does not support are drawn
dashed. With --project, the project's target is used and its enabled
features are filled. The format defaults to the output file's extension, or
DOT on stdout.`,
		Example: `  stackforge graph | dot -Tsvg > features.svg
  stackforge graph -o features.svg --language rust --framework axum
  stackforge graph -o orders.png --project orders
  stackforge graph --focus passwordReset`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format: dot, svg, pdf, png (default: from --output)")
	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "grey out features this language does not support")
	cmd.Flags().StringVarP(&opts.framework, "framework", "f", "", "grey out features this framework does not support")
	cmd.Flags().StringVarP(&opts.project, "project", "p", "", "show the target and feature state of a stored project")
	cmd.Flags().StringVar(&opts.focus, "focus", "", "only draw this feature and what it is connected to")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show keys and categories in node labels")

	return cmd
}

// graphFormat picks the explicit format, else the output extension, else DOT.
func graphFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(output), ".")
	}
	if format == "" {
		format = "dot"
	}
	if !validFormats[format] {
		return "", fmt.Errorf("invalid format: %s (must be 'dot', 'svg', 'pdf', or 'png')", format)
	}
	return format, nil
}

func (c *CLI) runGraph(ctx context.Context, opts *graphOpts) error {
	logger := loggerFromContext(ctx)

	format, err := graphFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	eng, err := c.engine()
	if err != nil {
		return err
	}
	nl, err := c.graphOptions(ctx, eng, opts)
	if err != nil {
		return err
	}

	dot := nodelink.ToDOT(eng.Graph(), nl)
	data, err := renderDOT(dot, format)
	if err != nil {
		return err
	}
	logger.Debugf("Generated %s: %d bytes", format, len(data))

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return err
	}

	if opts.output != "" {
		printSuccess("Rendered dependency graph")
		printFile(opts.output)
	}
	return nil
}

// graphOptions turns the command flags into renderer options.
func (c *CLI) graphOptions(ctx context.Context, eng *engine.Engine, opts *graphOpts) (nodelink.Options, error) {
	nl := nodelink.Options{Detailed: opts.detailed, Focus: feature.Key(opts.focus)}
	if nl.Focus != "" {
		if err := eng.Catalog().Check(nl.Focus); err != nil {
			return nl, err
		}
	}

	lang, fw := opts.language, opts.framework
	if opts.project != "" {
		s, err := c.openStore(ctx)
		if err != nil {
			return nl, err
		}
		defer s.Close()
		p, err := store.Find(ctx, s, opts.project)
		if err != nil {
			return nl, err
		}
		if _, err := p.Repair(ctx, eng); err != nil {
			return nl, err
		}
		lang, fw = string(p.Language), string(p.Framework)
		nl.State = p.Features
	}

	if lang != "" || fw != "" {
		l, f, err := resolveTarget(eng, lang, fw)
		if err != nil {
			return nl, err
		}
		keys, err := eng.UnsupportedFeatures(l, f)
		if err != nil {
			return nl, err
		}
		nl.Unsupported = feature.NewSet(keys...)
	}
	return nl, nil
}

func renderDOT(dot, format string) ([]byte, error) {
	switch format {
	case "dot":
		return []byte(dot), nil
	case "svg":
		return nodelink.RenderSVG(dot)
	case "pdf":
		return nodelink.RenderPDF(dot)
	case "png":
		return nodelink.RenderPNG(dot, 2.0)
	}
	return nil, fmt.Errorf("unknown format: %s", format)
}

// nopCloser wraps an io.Writer to satisfy io.WriteCloser with a no-op Close.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns stdout for an empty path, else creates the file.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
