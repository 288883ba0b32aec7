package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stackforge/pkg/depgraph"
	"github.com/matzehuels/stackforge/pkg/feature"
	"github.com/matzehuels/stackforge/pkg/render"
)

// Options configures dependency diagram rendering.
type Options struct {
	// Detailed adds the feature key and category below the label.
	Detailed bool

	// Unsupported features are drawn dashed and greyed out, together with
	// their outgoing edges.
	Unsupported feature.Set

	// Enabled features are filled.
	State feature.State

	// Focus limits the diagram to one feature, its transitive requirements
	// and its transitive dependents. Empty means the whole graph.
	Focus feature.Key
}

const (
	enabledFill     = "#c6f6d5"
	unsupportedFill = "#edf2f7"
	unsupportedInk  = "#a0aec0"
)

// ToDOT converts the dependency graph to Graphviz DOT format. Edges point
// from a feature to the feature it requires. Nodes and edges appear in
// catalog order, so the output is stable for a given graph and options.
func ToDOT(g *depgraph.Graph, opts Options) string {
	c := g.Catalog()
	include := scope(g, opts.Focus)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, info := range c.Infos() {
		if !include(info.Key) {
			continue
		}
		attrs := fmtAttrs(info, fmtLabel(info, opts.Detailed), opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", info.Key, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if !include(e.From) || !include(e.To) {
			continue
		}
		if opts.Unsupported.Has(e.From) {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, color=%q];\n", e.From, e.To, unsupportedInk)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func scope(g *depgraph.Graph, focus feature.Key) func(feature.Key) bool {
	if focus == "" {
		return func(feature.Key) bool { return true }
	}
	keep := feature.NewSet(focus)
	keep = keep.Union(feature.NewSet(g.RequirementsOf(focus)...))
	keep = keep.Union(feature.NewSet(g.AllDependentsOf(focus)...))
	return keep.Has
}

func fmtLabel(info feature.Info, detailed bool) string {
	if !detailed {
		return info.Label
	}
	parts := []string{info.Label, string(info.Key)}
	if info.Category != "" {
		parts = append(parts, info.Category)
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(info feature.Info, label string, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if info.Description != "" {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", info.Description))
	}
	switch {
	case opts.Unsupported.Has(info.Key):
		attrs = append(attrs, "style=\"rounded,filled,dashed\"",
			fmt.Sprintf("fillcolor=%q", unsupportedFill), fmt.Sprintf("fontcolor=%q", unsupportedInk))
	case opts.State.Enabled(info.Key):
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", enabledFill), "penwidth=2")
	}
	if info.Key == opts.Focus {
		attrs = append(attrs, "peripheries=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one
// whose width and height match the viewBox, so browsers scale it cleanly.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
