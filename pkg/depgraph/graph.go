package depgraph

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	errs "github.com/matzehuels/stackforge/pkg/errors"
	"github.com/matzehuels/stackforge/pkg/feature"
)

var (
	// ErrUnknownFeature is returned by [New] when an edge references a
	// feature that is not part of the catalog.
	ErrUnknownFeature = errors.New("unknown feature")

	// ErrSelfDependency is returned by [New] when a feature requires itself.
	ErrSelfDependency = errors.New("feature requires itself")

	// ErrGraphHasCycle is returned by [New] when the requirement edges form a
	// cycle. Cycles are detected using depth-first search with
	// white/gray/black coloring.
	ErrGraphHasCycle = errors.New("dependency graph contains a cycle")
)

// Edge is a single requirement: From can only be enabled while To is.
type Edge struct {
	From feature.Key
	To   feature.Key
}

// Graph is the immutable feature dependency graph.
// The zero value is not usable - use [New].
type Graph struct {
	catalog    *feature.Catalog
	requires   [][]int // catalog index -> required indices
	dependents [][]int // catalog index -> dependent indices
}

// New builds the graph from the forward requirement table and validates it.
//
// Duplicate edges are collapsed. Adjacency lists are kept in catalog order,
// which makes every traversal deterministic. Errors carry the
// DEPENDENCY_CYCLE code for cycles and INVALID_TABLES otherwise, and wrap
// the matching sentinel error of this package.
func New(c *feature.Catalog, requires map[feature.Key][]feature.Key) (*Graph, error) {
	n := c.Len()
	g := &Graph{
		catalog:    c,
		requires:   make([][]int, n),
		dependents: make([][]int, n),
	}

	for _, from := range sortedKeys(c, requires) {
		fi := c.Index(from)
		if fi < 0 {
			return nil, errs.Wrap(errs.ErrCodeInvalidTables, ErrUnknownFeature, "dependency table declares %q", from)
		}
		for _, to := range requires[from] {
			ti := c.Index(to)
			if ti < 0 {
				return nil, errs.Wrap(errs.ErrCodeInvalidTables, ErrUnknownFeature, "%q requires %q", from, to)
			}
			if ti == fi {
				return nil, errs.Wrap(errs.ErrCodeInvalidTables, ErrSelfDependency, "%q", from)
			}
			if !slices.Contains(g.requires[fi], ti) {
				g.requires[fi] = append(g.requires[fi], ti)
				g.dependents[ti] = append(g.dependents[ti], fi)
			}
		}
	}
	for i := range g.requires {
		slices.Sort(g.requires[i])
		slices.Sort(g.dependents[i])
	}

	if cycle := g.findCycle(); cycle != nil {
		names := make([]string, len(cycle))
		for i, idx := range cycle {
			names[i] = string(g.key(idx))
		}
		return nil, errs.Wrap(errs.ErrCodeDependencyCycle, ErrGraphHasCycle, "%s", strings.Join(names, " -> "))
	}
	return g, nil
}

func sortedKeys(c *feature.Catalog, m map[feature.Key][]feature.Key) []feature.Key {
	keys := make([]feature.Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	c.Sort(keys)
	return keys
}

// findCycle returns the nodes of one cycle, first node repeated at the end,
// or nil when the graph is acyclic.
func (g *Graph) findCycle() []int {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, len(g.requires))
	parent := make([]int, len(g.requires))
	var cycle []int

	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range g.requires[u] {
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				cycle = []int{v}
				for w := u; w != v; w = parent[w] {
					cycle = append(cycle, w)
				}
				cycle = append(cycle, v)
				slices.Reverse(cycle)
				return true
			}
		}
		color[u] = black
		return false
	}

	for u := range g.requires {
		if color[u] == white && dfs(u) {
			return cycle
		}
	}
	return nil
}

func (g *Graph) key(i int) feature.Key { return g.catalog.Keys()[i] }

func (g *Graph) keys(idx []int) []feature.Key {
	all := g.catalog.Keys()
	out := make([]feature.Key, len(idx))
	for i, j := range idx {
		out[i] = all[j]
	}
	return out
}

// Catalog returns the catalog the graph was built for.
func (g *Graph) Catalog() *feature.Catalog { return g.catalog }

// DependenciesOf returns the features key directly requires, in catalog
// order. It returns an empty slice for unknown keys or keys with no
// requirements.
func (g *Graph) DependenciesOf(key feature.Key) []feature.Key {
	i := g.catalog.Index(key)
	if i < 0 {
		return []feature.Key{}
	}
	return g.keys(g.requires[i])
}

// DependentsOf returns the features that directly require key, in catalog
// order. It returns an empty slice for unknown keys or keys nobody requires.
func (g *Graph) DependentsOf(key feature.Key) []feature.Key {
	i := g.catalog.Index(key)
	if i < 0 {
		return []feature.Key{}
	}
	return g.keys(g.dependents[i])
}

// Edges returns every requirement edge, ordered by source then target
// catalog position.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	all := g.catalog.Keys()
	for from, tos := range g.requires {
		for _, to := range tos {
			edges = append(edges, Edge{From: all[from], To: all[to]})
		}
	}
	return edges
}

// EdgeCount returns the number of requirement edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, tos := range g.requires {
		n += len(tos)
	}
	return n
}

// String renders the requirement table, one feature per line.
func (g *Graph) String() string {
	var b strings.Builder
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "%s -> %s\n", e.From, e.To)
	}
	return b.String()
}
