// Package trace runs the path queries over a built call graph:
// recursive descent reports, shortest path, paths to leaves and impact
// analysis. All traversals prune edges that would re-enter a node
// already on the active path; a pruned re-entry is a counted event,
// never an error. Callees are iterated in sorted order, so every query
// is deterministic for a given graph.
package trace

import (
	"sort"

	"matgraph/internal/graph"
	"matgraph/internal/logging"
)

// NodeVisit is the per-node record of a recursive descent.
type NodeVisit struct {
	// Depth is the maximum depth at which the node was encountered.
	Depth int `json:"depth"`
	// Visits counts actual entries into the node; pruned re-entries on
	// the same path do not count.
	Visits int `json:"visits"`
	// Path is the call chain by which the node was most recently
	// reached, starting at the descent's start script.
	Path   []string `json:"path"`
	IsLeaf bool     `json:"isLeaf"`
}

// DescentReport is the result of a full recursive descent from one
// start script.
type DescentReport struct {
	Start        string                `json:"start"`
	Nodes        map[string]*NodeVisit `json:"nodes"`
	NodesReached int                   `json:"nodesReached"`
	MaxDepth     int                   `json:"maxDepth"`
	TotalVisits  int                   `json:"totalVisits"`
	CycleEvents  int                   `json:"cycleEvents"`
	// Adjacency is the caller -> sorted-callees view restricted to the
	// reached nodes.
	Adjacency map[string][]string `json:"adjacency"`
}

// ReachedScripts returns the reached scripts, sorted.
func (r *DescentReport) ReachedScripts() []string {
	out := make([]string, 0, len(r.Nodes))
	for n := range r.Nodes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// AverageVisits returns the mean visit count over reached nodes.
func (r *DescentReport) AverageVisits() float64 {
	if r.NodesReached == 0 {
		return 0
	}
	return float64(r.TotalVisits) / float64(r.NodesReached)
}

// PathSet is an enumeration of simple paths. Truncated is set when the
// enumeration hit the configured path budget and stopped early.
type PathSet struct {
	Paths       [][]string `json:"paths"`
	Truncated   bool       `json:"truncated"`
	CycleEvents int        `json:"cycleEvents"`
}

// Count returns the number of enumerated paths.
func (ps PathSet) Count() int { return len(ps.Paths) }

// Impact pairs the upstream and downstream blast radius of one changed
// script.
type Impact struct {
	Upstream   PathSet `json:"upstream"`
	Downstream PathSet `json:"downstream"`
}

// Engine answers path queries over a single call graph snapshot. It is
// read-only over the graph and safe for concurrent use.
type Engine struct {
	g        *graph.CallGraph
	maxPaths int
	log      *logging.Logger
}

// New creates a path engine. maxPaths bounds every simple-path
// enumeration; zero or negative means unbounded.
func New(g *graph.CallGraph, maxPaths int, logger *logging.Logger) *Engine {
	return &Engine{g: g, maxPaths: maxPaths, log: logger.With("trace")}
}

// Descend walks the graph depth-first from start and records, per
// reached node, its maximum depth, visit count and most recent path.
// An unknown start yields an empty report.
func (e *Engine) Descend(start string) *DescentReport {
	rep := &DescentReport{
		Start:     start,
		Nodes:     make(map[string]*NodeVisit),
		Adjacency: make(map[string][]string),
	}
	if !e.g.HasNode(start) {
		return rep
	}

	onPath := make(map[string]bool)
	e.descend(start, 0, nil, onPath, rep)

	rep.NodesReached = len(rep.Nodes)
	for _, nv := range rep.Nodes {
		rep.TotalVisits += nv.Visits
		if nv.Depth > rep.MaxDepth {
			rep.MaxDepth = nv.Depth
		}
	}

	e.log.Debug("descent complete", map[string]interface{}{
		"start":       start,
		"nodes":       rep.NodesReached,
		"maxDepth":    rep.MaxDepth,
		"cycleEvents": rep.CycleEvents,
	})

	return rep
}

func (e *Engine) descend(node string, depth int, path []string, onPath map[string]bool, rep *DescentReport) {
	nv, ok := rep.Nodes[node]
	if !ok {
		nv = &NodeVisit{IsLeaf: e.g.IsLeaf(node)}
		rep.Nodes[node] = nv
		rep.Adjacency[node] = e.g.Callees(node)
	}
	nv.Visits++
	if depth > nv.Depth {
		nv.Depth = depth
	}

	current := make([]string, len(path)+1)
	copy(current, path)
	current[len(path)] = node
	nv.Path = current

	onPath[node] = true
	for _, callee := range e.g.Callees(node) {
		if onPath[callee] {
			rep.CycleEvents++
			e.log.Debug("cycle pruned", map[string]interface{}{
				"at":   node,
				"back": callee,
			})
			continue
		}
		e.descend(callee, depth+1, current, onPath, rep)
	}
	delete(onPath, node)
}

// ShortestPath returns the minimum-length simple path from one script
// to another, nil when the target is unreachable. A query from a
// script to itself returns the single-element path.
func (e *Engine) ShortestPath(from, to string) []string {
	ps := e.AllPaths(from, to)
	var best []string
	for _, p := range ps.Paths {
		if best == nil || len(p) < len(best) {
			best = p
		}
	}
	return best
}

// AllPaths enumerates every simple path between two scripts, bounded
// by the engine's path budget.
func (e *Engine) AllPaths(from, to string) PathSet {
	ps := PathSet{Paths: [][]string{}}
	if !e.g.HasNode(from) || !e.g.HasNode(to) {
		return ps
	}
	if from == to {
		ps.Paths = append(ps.Paths, []string{from})
		return ps
	}

	e.enumerate(from, nil, make(map[string]bool), &ps, func(node string) bool {
		return node == to
	})
	return ps
}

// PathsToLeaves enumerates every simple path from start to every
// reachable leaf. A start that is itself a leaf has no downstream
// paths and yields an empty set.
func (e *Engine) PathsToLeaves(start string) PathSet {
	ps := PathSet{Paths: [][]string{}}
	if !e.g.HasNode(start) || e.g.IsLeaf(start) {
		return ps
	}

	e.enumerate(start, nil, make(map[string]bool), &ps, func(node string) bool {
		return e.g.IsLeaf(node)
	})
	return ps
}

// ImpactPaths computes, per changed script, all simple paths from the
// given roots down to it (upstream) and from it to every leaf
// (downstream). Nil roots means the graph's auto-detected roots. A
// changed script that is itself a root contributes the single-element
// upstream path.
func (e *Engine) ImpactPaths(changed []string, roots []string) map[string]*Impact {
	if roots == nil {
		roots = e.g.Roots()
	}

	out := make(map[string]*Impact, len(changed))
	for _, script := range changed {
		impact := &Impact{
			Upstream:   PathSet{Paths: [][]string{}},
			Downstream: e.PathsToLeaves(script),
		}
		for _, root := range roots {
			sub := e.AllPaths(root, script)
			impact.Upstream.Paths = append(impact.Upstream.Paths, sub.Paths...)
			impact.Upstream.CycleEvents += sub.CycleEvents
			impact.Upstream.Truncated = impact.Upstream.Truncated || sub.Truncated
		}
		out[script] = impact
	}
	return out
}

// enumerate walks depth-first from node, collecting every simple path
// whose end satisfies accept. Matching paths of length >= 2 are
// recorded; traversal continues past a match so longer paths through
// it are found too.
func (e *Engine) enumerate(node string, path []string, onPath map[string]bool, ps *PathSet, accept func(string) bool) {
	if ps.Truncated {
		return
	}

	current := make([]string, len(path)+1)
	copy(current, path)
	current[len(path)] = node

	if len(current) > 1 && accept(node) {
		if e.maxPaths > 0 && len(ps.Paths) >= e.maxPaths {
			ps.Truncated = true
			e.log.Warn("path enumeration truncated", map[string]interface{}{
				"budget": e.maxPaths,
			})
			return
		}
		ps.Paths = append(ps.Paths, current)
	}

	onPath[node] = true
	for _, callee := range e.g.Callees(node) {
		if onPath[callee] {
			ps.CycleEvents++
			continue
		}
		e.enumerate(callee, current, onPath, ps, accept)
		if ps.Truncated {
			break
		}
	}
	delete(onPath, node)
}
