package trace

import (
	"reflect"
	"testing"

	"matgraph/internal/graph"
	"matgraph/internal/logging"
	"matgraph/internal/resolver"
	"matgraph/internal/scanner"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})
}

// buildEngine assembles a graph from script -> (definitions, calls)
// fixtures. Every script implicitly defines its own stem; calls list
// the names it invokes.
func buildEngine(t *testing.T, order []string, calls map[string][]string) *Engine {
	t.Helper()

	scan := &scanner.Result{
		Scripts:        make(map[string]*scanner.Script),
		DiscoveryOrder: order,
		DirOrder:       []string{""},
	}
	for _, p := range order {
		stem := p[:len(p)-2] // strip ".m"
		scan.Scripts[p] = &scanner.Script{
			Path: p,
			Definitions: []scanner.FunctionDefinition{
				{Name: stem, Script: p, Kind: scanner.KindImplicitScript},
			},
			Calls: calls[p],
		}
	}

	log := testLogger()
	ix := resolver.Resolve(scan, log)
	g := graph.Build(scan, ix, log)
	return New(g, 0, log)
}

func TestPathsToLeavesSingleChain(t *testing.T) {
	e := buildEngine(t,
		[]string{"helper.m", "main.m"},
		map[string][]string{"main.m": {"helper"}},
	)

	ps := e.PathsToLeaves("main.m")
	want := [][]string{{"main.m", "helper.m"}}
	if !reflect.DeepEqual(ps.Paths, want) {
		t.Errorf("paths = %v, want %v", ps.Paths, want)
	}
}

func TestPathsToLeavesLeafStart(t *testing.T) {
	e := buildEngine(t,
		[]string{"helper.m", "main.m"},
		map[string][]string{"main.m": {"helper"}},
	)

	ps := e.PathsToLeaves("helper.m")
	if len(ps.Paths) != 0 {
		t.Errorf("leaf start must yield no paths, got %v", ps.Paths)
	}
}

func TestDescendMutualRecursion(t *testing.T) {
	// a.m calls b, b.m calls a. The walk must terminate, visit each
	// node once, and record exactly one pruned cycle.
	e := buildEngine(t,
		[]string{"a.m", "b.m"},
		map[string][]string{"a.m": {"b"}, "b.m": {"a"}},
	)

	rep := e.Descend("a.m")

	if rep.NodesReached != 2 {
		t.Fatalf("NodesReached = %d, want 2", rep.NodesReached)
	}
	if rep.CycleEvents != 1 {
		t.Errorf("CycleEvents = %d, want 1", rep.CycleEvents)
	}

	a, b := rep.Nodes["a.m"], rep.Nodes["b.m"]
	if a.Visits != 1 || b.Visits != 1 {
		t.Errorf("visits = %d/%d, want 1/1", a.Visits, b.Visits)
	}
	if a.Depth != 0 || b.Depth != 1 {
		t.Errorf("depths = %d/%d, want 0/1", a.Depth, b.Depth)
	}
	if !reflect.DeepEqual(b.Path, []string{"a.m", "b.m"}) {
		t.Errorf("b.Path = %v", b.Path)
	}
	if a.IsLeaf || b.IsLeaf {
		t.Error("neither node is a leaf")
	}
}

func TestDescendDiamondStats(t *testing.T) {
	// root -> a -> leaf, root -> b -> leaf: leaf is entered twice via
	// distinct paths.
	e := buildEngine(t,
		[]string{"a.m", "b.m", "leaf.m", "root.m"},
		map[string][]string{
			"root.m": {"a", "b"},
			"a.m":    {"leaf"},
			"b.m":    {"leaf"},
		},
	)

	rep := e.Descend("root.m")

	if rep.NodesReached != 4 {
		t.Fatalf("NodesReached = %d, want 4", rep.NodesReached)
	}
	if rep.Nodes["leaf.m"].Visits != 2 {
		t.Errorf("leaf visits = %d, want 2", rep.Nodes["leaf.m"].Visits)
	}
	if rep.TotalVisits != 5 {
		t.Errorf("TotalVisits = %d, want 5", rep.TotalVisits)
	}
	if rep.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", rep.MaxDepth)
	}
	if got := rep.AverageVisits(); got != 1.25 {
		t.Errorf("AverageVisits = %v, want 1.25", got)
	}
	if !rep.Nodes["leaf.m"].IsLeaf {
		t.Error("leaf.m must be flagged as leaf")
	}

	// Callees sort a.m before b.m, so leaf.m is last reached through
	// b.m.
	if !reflect.DeepEqual(rep.Nodes["leaf.m"].Path, []string{"root.m", "b.m", "leaf.m"}) {
		t.Errorf("leaf path = %v", rep.Nodes["leaf.m"].Path)
	}

	if !reflect.DeepEqual(rep.ReachedScripts(), []string{"a.m", "b.m", "leaf.m", "root.m"}) {
		t.Errorf("ReachedScripts = %v", rep.ReachedScripts())
	}
}

func TestDescendUnknownStart(t *testing.T) {
	e := buildEngine(t, []string{"a.m"}, nil)

	rep := e.Descend("ghost.m")
	if rep.NodesReached != 0 || len(rep.Nodes) != 0 {
		t.Errorf("unknown start must yield an empty report, got %+v", rep)
	}
}

func TestShortestPath(t *testing.T) {
	// root -> mid -> leaf plus a direct shortcut root -> leaf.
	e := buildEngine(t,
		[]string{"leaf.m", "mid.m", "root.m"},
		map[string][]string{
			"root.m": {"mid", "leaf"},
			"mid.m":  {"leaf"},
		},
	)

	if got := e.ShortestPath("root.m", "leaf.m"); !reflect.DeepEqual(got, []string{"root.m", "leaf.m"}) {
		t.Errorf("ShortestPath = %v, want the direct edge", got)
	}
	if got := e.ShortestPath("root.m", "root.m"); !reflect.DeepEqual(got, []string{"root.m"}) {
		t.Errorf("ShortestPath(X, X) = %v, want [X]", got)
	}
	if got := e.ShortestPath("leaf.m", "root.m"); got != nil {
		t.Errorf("unreachable target must return nil, got %v", got)
	}
	if got := e.ShortestPath("root.m", "ghost.m"); got != nil {
		t.Errorf("unknown target must return nil, got %v", got)
	}
}

func TestAllPathsDiamond(t *testing.T) {
	e := buildEngine(t,
		[]string{"a.m", "b.m", "leaf.m", "root.m"},
		map[string][]string{
			"root.m": {"a", "b"},
			"a.m":    {"leaf"},
			"b.m":    {"leaf"},
		},
	)

	ps := e.AllPaths("root.m", "leaf.m")
	want := [][]string{
		{"root.m", "a.m", "leaf.m"},
		{"root.m", "b.m", "leaf.m"},
	}
	if !reflect.DeepEqual(ps.Paths, want) {
		t.Errorf("paths = %v, want %v", ps.Paths, want)
	}
	if ps.Truncated {
		t.Error("no truncation expected without a budget")
	}
}

func TestAllPathsTruncation(t *testing.T) {
	e := buildEngine(t,
		[]string{"a.m", "b.m", "leaf.m", "root.m"},
		map[string][]string{
			"root.m": {"a", "b"},
			"a.m":    {"leaf"},
			"b.m":    {"leaf"},
		},
	)
	e.maxPaths = 1

	ps := e.AllPaths("root.m", "leaf.m")
	if !ps.Truncated {
		t.Error("enumeration past the budget must report truncation")
	}
	if len(ps.Paths) != 1 {
		t.Errorf("got %d paths, want the 1 within budget", len(ps.Paths))
	}
}

func TestAllPathsCyclePruning(t *testing.T) {
	// root -> a -> b -> a would loop; the only path to b goes through
	// the cycle once.
	e := buildEngine(t,
		[]string{"a.m", "b.m", "root.m"},
		map[string][]string{
			"root.m": {"a"},
			"a.m":    {"b"},
			"b.m":    {"a"},
		},
	)

	ps := e.AllPaths("root.m", "b.m")
	want := [][]string{{"root.m", "a.m", "b.m"}}
	if !reflect.DeepEqual(ps.Paths, want) {
		t.Errorf("paths = %v, want %v", ps.Paths, want)
	}
	if ps.CycleEvents != 1 {
		t.Errorf("CycleEvents = %d, want 1", ps.CycleEvents)
	}
}

func TestImpactPathsChain(t *testing.T) {
	e := buildEngine(t,
		[]string{"leaf.m", "mid.m", "root.m"},
		map[string][]string{
			"root.m": {"mid"},
			"mid.m":  {"leaf"},
		},
	)

	impacts := e.ImpactPaths([]string{"mid.m"}, nil)

	mid := impacts["mid.m"]
	if mid == nil {
		t.Fatal("no impact entry for mid.m")
	}
	if !reflect.DeepEqual(mid.Upstream.Paths, [][]string{{"root.m", "mid.m"}}) {
		t.Errorf("upstream = %v", mid.Upstream.Paths)
	}
	if !reflect.DeepEqual(mid.Downstream.Paths, [][]string{{"mid.m", "leaf.m"}}) {
		t.Errorf("downstream = %v", mid.Downstream.Paths)
	}
}

func TestImpactPathsChangedIsRoot(t *testing.T) {
	e := buildEngine(t,
		[]string{"leaf.m", "root.m"},
		map[string][]string{"root.m": {"leaf"}},
	)

	impacts := e.ImpactPaths([]string{"root.m"}, nil)

	root := impacts["root.m"]
	if !reflect.DeepEqual(root.Upstream.Paths, [][]string{{"root.m"}}) {
		t.Errorf("upstream for a root must be the single-element path, got %v", root.Upstream.Paths)
	}
	if !reflect.DeepEqual(root.Downstream.Paths, [][]string{{"root.m", "leaf.m"}}) {
		t.Errorf("downstream = %v", root.Downstream.Paths)
	}
}

func TestImpactPathsExplicitRoots(t *testing.T) {
	// entry.m and other.m both reach shared.m; restricting roots to
	// entry.m must exclude other.m's paths.
	e := buildEngine(t,
		[]string{"entry.m", "other.m", "shared.m"},
		map[string][]string{
			"entry.m": {"shared"},
			"other.m": {"shared"},
		},
	)

	impacts := e.ImpactPaths([]string{"shared.m"}, []string{"entry.m"})
	up := impacts["shared.m"].Upstream.Paths
	if !reflect.DeepEqual(up, [][]string{{"entry.m", "shared.m"}}) {
		t.Errorf("upstream = %v, want only the entry.m path", up)
	}
}

func TestSimplePathInvariants(t *testing.T) {
	e := buildEngine(t,
		[]string{"a.m", "b.m", "c.m", "root.m"},
		map[string][]string{
			"root.m": {"a", "b"},
			"a.m":    {"b", "c"},
			"b.m":    {"a", "c"},
		},
	)

	ps := e.PathsToLeaves("root.m")
	for _, p := range ps.Paths {
		seen := make(map[string]bool)
		for _, node := range p {
			if seen[node] {
				t.Errorf("path %v repeats %s", p, node)
			}
			seen[node] = true
		}
		if p[len(p)-1] != "c.m" {
			t.Errorf("path %v does not end at the only leaf", p)
		}
	}
	if len(ps.Paths) == 0 {
		t.Fatal("expected paths to the leaf")
	}
}
