package resolver

import (
	"reflect"
	"testing"

	"matgraph/internal/logging"
	"matgraph/internal/scanner"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})
}

// buildScan assembles a scan result by hand: scripts maps path to
// definitions; discovery order is the sorted key order callers pass in.
func buildScan(order []string, defs map[string][]scanner.FunctionDefinition) *scanner.Result {
	result := &scanner.Result{
		Scripts:        make(map[string]*scanner.Script),
		DiscoveryOrder: order,
	}
	for _, p := range order {
		result.Scripts[p] = &scanner.Script{Path: p, Definitions: defs[p]}
	}
	// mirror the scanner's dir-order derivation
	seen := map[string]bool{"": true}
	result.DirOrder = []string{""}
	for _, p := range order {
		dir := ""
		for i := len(p) - 1; i >= 0; i-- {
			if p[i] == '/' {
				dir = p[:i]
				break
			}
		}
		if !seen[dir] {
			seen[dir] = true
			result.DirOrder = append(result.DirOrder, dir)
		}
	}
	return result
}

func explicit(name, script string) scanner.FunctionDefinition {
	return scanner.FunctionDefinition{Name: name, Script: script, Line: 1, Kind: scanner.KindExplicit}
}

func implicit(name, script string) scanner.FunctionDefinition {
	return scanner.FunctionDefinition{Name: name, Script: script, Kind: scanner.KindImplicitScript}
}

func TestExplicitOutranksImplicit(t *testing.T) {
	// proc.m is an implicit script named "process"; lib/process.m
	// explicitly defines process. Explicit must win even though the
	// implicit one is in the project root.
	scan := buildScan(
		[]string{"lib/process.m", "process.m"},
		map[string][]scanner.FunctionDefinition{
			"lib/process.m": {explicit("process", "lib/process.m")},
			"process.m":     {implicit("process", "process.m")},
		},
	)

	ix := Resolve(scan, testLogger())

	primary, ok := ix.PrimaryDefinition("process")
	if !ok {
		t.Fatal("process should be indexed")
	}
	if primary.Script != "lib/process.m" {
		t.Errorf("primary = %s, want lib/process.m", primary.Script)
	}
	if primary.Kind != scanner.KindExplicit {
		t.Error("primary definition must be explicit when any explicit definition exists")
	}
}

func TestRootOutranksSubdirectory(t *testing.T) {
	scan := buildScan(
		[]string{"helper.m", "lib/helper.m"},
		map[string][]scanner.FunctionDefinition{
			"helper.m":     {explicit("helper", "helper.m")},
			"lib/helper.m": {explicit("helper", "lib/helper.m")},
		},
	)

	ix := Resolve(scan, testLogger())

	primary, _ := ix.PrimaryDefinition("helper")
	if primary.Script != "helper.m" {
		t.Errorf("primary = %s, want root-level helper.m", primary.Script)
	}
}

func TestSearchPathOrderBreaksSubdirTies(t *testing.T) {
	// aa/ is discovered before zz/, so aa/util.m outranks zz/util.m.
	scan := buildScan(
		[]string{"aa/util.m", "zz/util.m"},
		map[string][]scanner.FunctionDefinition{
			"aa/util.m": {explicit("util", "aa/util.m")},
			"zz/util.m": {explicit("util", "zz/util.m")},
		},
	)

	ix := Resolve(scan, testLogger())

	primary, _ := ix.PrimaryDefinition("util")
	if primary.Script != "aa/util.m" {
		t.Errorf("primary = %s, want aa/util.m", primary.Script)
	}

	// All definitions stay queryable, primary first.
	defs := ix.Definitions("util")
	if len(defs) != 2 || defs[0].Script != "aa/util.m" || defs[1].Script != "zz/util.m" {
		t.Errorf("Definitions = %+v", defs)
	}
}

func TestDefinitionForCallerShadowing(t *testing.T) {
	// util.m defines process locally and also calls it; an external
	// process.m exists and would otherwise outrank. The caller's own
	// explicit definition must win.
	scan := buildScan(
		[]string{"process.m", "util.m"},
		map[string][]scanner.FunctionDefinition{
			"process.m": {explicit("process", "process.m")},
			"util.m":    {explicit("process", "util.m"), implicit("util", "util.m")},
		},
	)

	ix := Resolve(scan, testLogger())

	res, ok := ix.DefinitionForCaller("process", "util.m")
	if !ok {
		t.Fatal("process should resolve")
	}
	if !res.IsInternal || res.Script != "util.m" {
		t.Errorf("resolution = %+v, want internal util.m", res)
	}

	// For any other caller, the primary wins and is not internal.
	res, _ = ix.DefinitionForCaller("process", "main.m")
	if res.IsInternal || res.Script != "process.m" {
		t.Errorf("resolution for other caller = %+v", res)
	}
}

func TestImplicitSelfDefinitionIsNotInternal(t *testing.T) {
	// A script calling its own implicit name is not local shadowing:
	// only explicit definitions shadow.
	scan := buildScan(
		[]string{"run.m"},
		map[string][]scanner.FunctionDefinition{
			"run.m": {implicit("run", "run.m")},
		},
	)

	ix := Resolve(scan, testLogger())

	res, ok := ix.DefinitionForCaller("run", "run.m")
	if !ok {
		t.Fatal("run should resolve")
	}
	if res.IsInternal {
		t.Error("implicit self-definition must not be flagged internal")
	}
}

func TestUnknownNameIsNegativeResult(t *testing.T) {
	ix := Resolve(buildScan(nil, nil), testLogger())

	if _, ok := ix.PrimaryDefinition("ghost"); ok {
		t.Error("unknown name should report not found")
	}
	if _, ok := ix.DefinitionForCaller("ghost", "a.m"); ok {
		t.Error("unknown name should report not found for callers too")
	}
	if defs := ix.Definitions("ghost"); defs != nil {
		t.Errorf("Definitions(ghost) = %v, want nil", defs)
	}
}

func TestDefinitionsReturnsCopy(t *testing.T) {
	scan := buildScan(
		[]string{"a.m"},
		map[string][]scanner.FunctionDefinition{
			"a.m": {explicit("fn", "a.m")},
		},
	)
	ix := Resolve(scan, testLogger())

	defs := ix.Definitions("fn")
	defs[0].Script = "mutated.m"

	again := ix.Definitions("fn")
	if again[0].Script != "a.m" {
		t.Error("Definitions must return a copy, not the cached slice")
	}
}

func TestFunctionToScripts(t *testing.T) {
	scan := buildScan(
		[]string{"a.m", "b.m"},
		map[string][]scanner.FunctionDefinition{
			"a.m": {explicit("shared", "a.m")},
			"b.m": {explicit("shared", "b.m"), explicit("only_b", "b.m")},
		},
	)
	ix := Resolve(scan, testLogger())

	got := ix.FunctionToScripts()
	if !reflect.DeepEqual(got["shared"], []string{"a.m", "b.m"}) {
		t.Errorf("shared = %v", got["shared"])
	}
	if !reflect.DeepEqual(got["only_b"], []string{"b.m"}) {
		t.Errorf("only_b = %v", got["only_b"])
	}

	names := ix.Names()
	if !reflect.DeepEqual(names, []string{"only_b", "shared"}) {
		t.Errorf("Names = %v", names)
	}
}
