// Package nodelink renders the feature dependency graph as a node-link
// diagram.
//
// # Usage
//
// Convert the graph to DOT, then render it:
//
//	dot := nodelink.ToDOT(eng.Graph(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// To show what a target supports and what a project has switched on:
//
//	unsupported, _ := eng.UnsupportedFeatures(target.Rust, target.Axum)
//	dot := nodelink.ToDOT(eng.Graph(), nodelink.Options{
//		Unsupported: feature.NewSet(unsupported...),
//		State:       p.Features,
//	})
//
// Enabled features are filled green, unsupported ones are dashed and grey.
// [Options.Focus] cuts the diagram down to one feature's neighbourhood.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
