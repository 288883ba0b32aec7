// Package depgraph holds the static "feature A requires feature B" graph.
//
// # Overview
//
// Each edge A → B states that A can only be enabled while B is enabled.
// The forward adjacency (requirements) is declared by the static tables;
// the reverse adjacency (dependents) is derived from it when the [Graph] is
// built, so the two can never drift apart.
//
//	g, err := depgraph.New(catalog, map[feature.Key][]feature.Key{
//	    feature.PasswordReset: {feature.MailService},
//	    feature.JteTemplates:  {feature.MailService},
//	})
//	g.DependenciesOf(feature.PasswordReset) // [mailService]
//	g.DependentsOf(feature.MailService)     // [passwordReset jteTemplates]
//
// # Validation
//
// [New] rejects edges to unknown features, self edges and cycles. Cycle
// detection is a depth-first search with white/gray/black colouring over
// catalog indices; the error names the offending cycle. A graph that was
// built successfully is a DAG for its whole lifetime.
//
// # Traversal
//
// Direct lookups are O(1). Transitive walks ([Graph.RequirementsOf],
// [Graph.AllDependentsOf], [Graph.Walk]) are breadth-first and track a visited
// set, so they terminate even without assuming a depth bound.
//
// # Concurrency
//
// A Graph is immutable after construction and safe for concurrent readers.
package depgraph
