// Package pkg provides the core libraries for Stackforge feature configuration.
//
// # Overview
//
// Stackforge keeps the feature selection of a backend project consistent with
// its target language and framework. Enabling a feature pulls in what it
// requires; switching framework or disabling a feature switches off whatever
// no longer holds. The pkg directory is organized into four main areas:
//
//  1. [feature], [target] - The closed vocabularies: feature catalog and targets
//  2. [compat], [depgraph] - Static knowledge: support matrix and requirements
//  3. [resolver], [engine] - Cascade resolution over the static tables
//  4. [project] - Project documents, the reactive binder, stores and export
//
// # Architecture
//
// The typical data flow through Stackforge:
//
//	default.toml (or --tables)
//	         ↓
//	    [engine] package (decode + validate tables)
//	         ↓
//	    [compat] + [depgraph] packages (support matrix, requirement graph)
//	         ↓
//	    [resolver] package (mutation → new state + changes)
//	         ↓
//	    [project] package (commit, persist, notify, export)
//
// # Quick Start
//
// Resolve a single mutation without persisting anything:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/stackforge/pkg/engine"
//	    "github.com/matzehuels/stackforge/pkg/resolver"
//	)
//
//	eng, _ := engine.Default()
//	in := resolver.Input{Language: "python", Framework: "django", State: eng.NewState()}
//
//	res, _ := eng.Resolve(context.Background(), in, resolver.Enable{Feature: "passwordReset"})
//	fmt.Println(res.Summary()) // 1 feature was enabled
//
// # Main Packages
//
// ## Vocabularies
//
// [feature] - Feature keys, the ordered catalog, key sets and the per-project
// on/off state. Catalog order is the deterministic order of every output.
//
// [target] - Languages and frameworks. Every framework belongs to exactly one
// language; the first framework listed for a language is its default.
//
// ## Static Knowledge
//
// [compat] - Support matrix: a base feature set per language plus add/remove
// overrides per framework. Removals win.
//
// [depgraph] - Requirement graph with a derived dependents index, validated
// acyclic at construction. Breadth-first walks in both directions.
//
// ## Resolution
//
// [resolver] - Applies a mutation (language, framework, enable, disable,
// toggle) and returns the new state plus every forced change with its cause.
// Enabling a feature the target cannot satisfy is a rejection value, not an
// error.
//
// [engine] - Facade over the above, built from TOML tables. Reports to the
// [observability] hooks.
//
// ## Projects
//
// [project] - Project documents, the [project.Binder] that serialises
// mutations and notifies subscribers, and the generation config export.
//
// [project/store] - File, memory, Redis and MongoDB stores selected by DSN.
//
// ## Visualization
//
// [render/nodelink] - Requirement graph as DOT, rendered by Graphviz.
//
// [render] - Format conversion (SVG to PDF/PNG).
//
// # Common Workflows
//
// Create a project and persist every accepted change:
//
//	s, _ := store.Open(ctx, "memory://")
//	p, _ := project.New(eng, "orders", "java", "spring-boot")
//	b := project.NewBinder(eng, p, project.WithSaver(s))
//	b.Subscribe(func(ctx context.Context, ev project.Event) {
//	    fmt.Println(ev.Mutation, ev.Result.Summary())
//	})
//	b.Apply(ctx, resolver.Enable{Feature: "twoFactorAuth"})
//
// Export the generation config:
//
//	cfg, _ := project.Export(eng, b.Project(), time.Now())
//	cfg.WriteJSON(os.Stdout)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/resolver/...           # Specific package
//	go test -run Example                 # Examples only
//	go test -tags integration ./pkg/...  # Include Redis and MongoDB stores
//
// [feature]: https://pkg.go.dev/github.com/matzehuels/stackforge/pkg/feature
// [target]: https://pkg.go.dev/github.com/matzehuels/stackforge/pkg/target
// [compat]: https://pkg.go.dev/github.com/matzehuels/stackforge/pkg/compat
// [depgraph]: https://pkg.go.dev/github.com/matzehuels/stackforge/pkg/depgraph
// [resolver]: https://pkg.go.dev/github.com/matzehuels/stackforge/pkg/resolver
// [engine]: https://pkg.go.dev/github.com/matzehuels/stackforge/pkg/engine
// [observability]: https://pkg.go.dev/github.com/matzehuels/stackforge/pkg/observability
// [project]: https://pkg.go.dev/github.com/matzehuels/stackforge/pkg/project
// [project.Binder]: https://pkg.go.dev/github.com/matzehuels/stackforge/pkg/project#Binder
// [project/store]: https://pkg.go.dev/github.com/matzehuels/stackforge/pkg/project/store
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/stackforge/pkg/render/nodelink
// [render]: https://pkg.go.dev/github.com/matzehuels/stackforge/pkg/render
package pkg
