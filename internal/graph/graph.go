// Package graph builds the script-level call graph: nodes are scripts,
// an edge A -> B means script A invokes a name that resolves to
// script B. Self-loops are excluded, and a call to a name the caller
// itself defines is suppressed because MATLAB dispatches it locally.
package graph

import (
	"sort"

	"matgraph/internal/logging"
	"matgraph/internal/resolver"
	"matgraph/internal/scanner"
)

// CallGraph is a directed graph over scripts. Callee sets are exposed
// only as sorted copies so callers cannot corrupt cached state.
type CallGraph struct {
	nodes map[string]struct{}
	adj   map[string]map[string]struct{}
}

// Build constructs the call graph from scanned calls and the resolved
// name index.
func Build(scan *scanner.Result, ix *resolver.Index, logger *logging.Logger) *CallGraph {
	log := logger.With("graph")

	g := &CallGraph{
		nodes: make(map[string]struct{}, len(scan.Scripts)),
		adj:   make(map[string]map[string]struct{}),
	}

	for path := range scan.Scripts {
		g.nodes[path] = struct{}{}
	}

	suppressed := 0
	for _, caller := range scan.DiscoveryOrder {
		for _, name := range scan.Scripts[caller].Calls {
			res, ok := ix.DefinitionForCaller(name, caller)
			if !ok {
				continue // unknown name: likely a built-in or a miss of the heuristic
			}
			if res.IsInternal {
				// Local function shadows any external definition; this
				// is correctly not an external call.
				suppressed++
				continue
			}
			if res.Script == caller {
				continue // no self-loops
			}
			g.addEdge(caller, res.Script)
		}
	}

	log.Debug("call graph built", map[string]interface{}{
		"nodes":              len(g.nodes),
		"edges":              g.EdgeCount(),
		"internalSuppressed": suppressed,
	})

	return g
}

func (g *CallGraph) addEdge(from, to string) {
	set, ok := g.adj[from]
	if !ok {
		set = make(map[string]struct{})
		g.adj[from] = set
	}
	set[to] = struct{}{}
}

// HasNode reports whether a script is part of the graph.
func (g *CallGraph) HasNode(script string) bool {
	_, ok := g.nodes[script]
	return ok
}

// HasEdge reports whether caller invokes callee.
func (g *CallGraph) HasEdge(from, to string) bool {
	_, ok := g.adj[from][to]
	return ok
}

// Callees returns the sorted callees of a script. A script with no
// outgoing edges yields an empty slice; absence of the key and an
// empty set are equivalent.
func (g *CallGraph) Callees(script string) []string {
	set := g.adj[script]
	out := make([]string, 0, len(set))
	for callee := range set {
		out = append(out, callee)
	}
	sort.Strings(out)
	return out
}

// Nodes returns all scripts in the graph, sorted.
func (g *CallGraph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// IsLeaf reports whether a script has no outgoing edges.
func (g *CallGraph) IsLeaf(script string) bool {
	return len(g.adj[script]) == 0
}

// Leaves returns all scripts with no outgoing edges, sorted.
func (g *CallGraph) Leaves() []string {
	var out []string
	for n := range g.nodes {
		if len(g.adj[n]) == 0 {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// Roots returns all scripts that no other script calls, sorted.
func (g *CallGraph) Roots() []string {
	called := make(map[string]struct{})
	for _, set := range g.adj {
		for callee := range set {
			called[callee] = struct{}{}
		}
	}

	var out []string
	for n := range g.nodes {
		if _, ok := called[n]; !ok {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// EdgeCount returns the number of edges.
func (g *CallGraph) EdgeCount() int {
	total := 0
	for _, set := range g.adj {
		total += len(set)
	}
	return total
}

// NodeCount returns the number of nodes.
func (g *CallGraph) NodeCount() int {
	return len(g.nodes)
}

// Adjacency returns the full caller -> sorted-callees view; only
// scripts with outgoing edges appear as keys.
func (g *CallGraph) Adjacency() map[string][]string {
	out := make(map[string][]string, len(g.adj))
	for caller := range g.adj {
		out[caller] = g.Callees(caller)
	}
	return out
}
