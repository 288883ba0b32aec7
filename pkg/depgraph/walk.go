package depgraph

import "github.com/matzehuels/stackforge/pkg/feature"

// Direction selects which adjacency a walk follows.
type Direction int

const (
	// Requirements follows "requires" edges, towards prerequisites.
	Requirements Direction = iota
	// Dependents follows reversed edges, towards features that need the start.
	Dependents
)

// Step is one node reached during a breadth-first walk.
type Step struct {
	Key   feature.Key // Feature reached
	Via   feature.Key // Neighbour it was reached from
	Depth int         // Distance from the start (1 = direct neighbour)
}

// Walk visits every feature reachable from start in breadth-first order,
// excluding start itself. Each feature is visited at most once. visit may
// return false to stop expanding a node; its neighbours are then only
// reached through other paths.
//
// Unknown start keys produce no steps.
func (g *Graph) Walk(start feature.Key, dir Direction, visit func(Step) bool) {
	si := g.catalog.Index(start)
	if si < 0 {
		return
	}
	adj := g.requires
	if dir == Dependents {
		adj = g.dependents
	}
	all := g.catalog.Keys()

	visited := make([]bool, len(adj))
	visited[si] = true
	type item struct{ idx, depth int }
	queue := []item{{si, 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur.idx] {
			if visited[next] {
				continue
			}
			visited[next] = true
			step := Step{Key: all[next], Via: all[cur.idx], Depth: cur.depth + 1}
			if visit(step) {
				queue = append(queue, item{next, cur.depth + 1})
			}
		}
	}
}

// RequirementsOf returns the transitive requirements of key in
// breadth-first order.
func (g *Graph) RequirementsOf(key feature.Key) []feature.Key {
	return g.collect(key, Requirements)
}

// AllDependentsOf returns the transitive dependents of key in breadth-first
// order.
func (g *Graph) AllDependentsOf(key feature.Key) []feature.Key {
	return g.collect(key, Dependents)
}

func (g *Graph) collect(key feature.Key, dir Direction) []feature.Key {
	var out []feature.Key
	g.Walk(key, dir, func(s Step) bool {
		out = append(out, s.Key)
		return true
	})
	return out
}

// TopoOrder returns every feature ordered so that requirements come before
// the features that need them. Ties are broken by catalog order.
func (g *Graph) TopoOrder() []feature.Key {
	all := g.catalog.Keys()
	pending := make([]int, len(all))
	for i := range g.requires {
		pending[i] = len(g.requires[i])
	}

	order := make([]feature.Key, 0, len(all))
	done := make([]bool, len(all))
	for len(order) < len(all) {
		progressed := false
		for i := range all {
			if done[i] || pending[i] > 0 {
				continue
			}
			done[i] = true
			progressed = true
			order = append(order, all[i])
			for _, d := range g.dependents[i] {
				pending[d]--
			}
			break
		}
		if !progressed {
			// Unreachable for graphs built by New.
			break
		}
	}
	return order
}

// Depth returns the length of the longest requirement chain starting at
// key: 0 for features without requirements.
func (g *Graph) Depth(key feature.Key) int {
	i := g.catalog.Index(key)
	if i < 0 {
		return 0
	}
	memo := make(map[int]int)
	var depth func(int) int
	depth = func(u int) int {
		if d, ok := memo[u]; ok {
			return d
		}
		best := 0
		for _, v := range g.requires[u] {
			if d := depth(v) + 1; d > best {
				best = d
			}
		}
		memo[u] = best
		return best
	}
	return depth(i)
}
