// Package resolver aggregates scanner output into a project-wide
// function-name index and applies MATLAB-style disambiguation when a
// name is defined in more than one script: explicit definitions outrank
// the script-as-function fallback, the simulated search path breaks
// ties between directories, and a caller's own local definition always
// shadows external ones.
package resolver

import (
	"sort"

	"matgraph/internal/logging"
	"matgraph/internal/paths"
	"matgraph/internal/scanner"
)

// Resolution is the outcome of resolving a called name for a specific
// caller.
type Resolution struct {
	// Script is the defining script the name resolves to.
	Script string `json:"script"`
	// IsInternal is true when the caller itself defines the name
	// explicitly; MATLAB gives such local definitions precedence over
	// any external definition.
	IsInternal bool `json:"isInternal"`
}

// Index maps function names to their defining scripts in resolution
// priority order (primary definition first). Built once per scan; all
// definitions of a multi-defined name remain queryable.
type Index struct {
	byName  map[string][]scanner.FunctionDefinition
	dirRank map[string]int
}

// Resolve builds the name index from a scan result.
func Resolve(scan *scanner.Result, logger *logging.Logger) *Index {
	log := logger.With("resolver")

	ix := &Index{
		byName:  make(map[string][]scanner.FunctionDefinition),
		dirRank: make(map[string]int, len(scan.DirOrder)),
	}
	for i, dir := range scan.DirOrder {
		ix.dirRank[dir] = i
	}

	// Append in discovery order so the raw lists are reproducible
	// before ranking.
	multi := 0
	for _, path := range scan.DiscoveryOrder {
		for _, def := range scan.Scripts[path].Definitions {
			ix.byName[def.Name] = append(ix.byName[def.Name], def)
		}
	}

	for name, defs := range ix.byName {
		if len(defs) > 1 {
			multi++
			ix.rank(name)
		}
	}

	log.Debug("name index built", map[string]interface{}{
		"names":        len(ix.byName),
		"multiDefined": multi,
	})

	return ix
}

// rank stably reorders a name's definition list by resolution
// priority: explicit before implicit, then earlier search-path
// directory, then lexicographic script path.
func (ix *Index) rank(name string) {
	defs := ix.byName[name]
	sort.SliceStable(defs, func(i, j int) bool {
		a, b := defs[i], defs[j]

		aExplicit := a.Kind == scanner.KindExplicit
		bExplicit := b.Kind == scanner.KindExplicit
		if aExplicit != bExplicit {
			return aExplicit
		}

		ar, br := ix.rankOfDir(paths.Dir(a.Script)), ix.rankOfDir(paths.Dir(b.Script))
		if ar != br {
			return ar < br
		}

		return a.Script < b.Script
	})
}

// rankOfDir returns a directory's search-path position; directories
// outside the recorded order sort last.
func (ix *Index) rankOfDir(dir string) int {
	if r, ok := ix.dirRank[dir]; ok {
		return r
	}
	return len(ix.dirRank)
}

// Definitions returns a copy of the priority-ordered definition list
// for a name; nil when the name is unknown.
func (ix *Index) Definitions(name string) []scanner.FunctionDefinition {
	defs, ok := ix.byName[name]
	if !ok {
		return nil
	}
	out := make([]scanner.FunctionDefinition, len(defs))
	copy(out, defs)
	return out
}

// PrimaryDefinition returns the top-ranked definition of a name. The
// second return is false when the name has no known definition; this
// is a negative result, not an error.
func (ix *Index) PrimaryDefinition(name string) (scanner.FunctionDefinition, bool) {
	defs, ok := ix.byName[name]
	if !ok || len(defs) == 0 {
		return scanner.FunctionDefinition{}, false
	}
	return defs[0], true
}

// DefinitionForCaller resolves a name in the context of a specific
// caller script. The caller's own explicit definition of the name wins
// over every external definition regardless of rank.
func (ix *Index) DefinitionForCaller(name, callerScript string) (Resolution, bool) {
	defs, ok := ix.byName[name]
	if !ok || len(defs) == 0 {
		return Resolution{}, false
	}

	for _, d := range defs {
		if d.Script == callerScript && d.Kind == scanner.KindExplicit {
			return Resolution{Script: callerScript, IsInternal: true}, true
		}
	}

	return Resolution{Script: defs[0].Script}, true
}

// Names returns all indexed function names, sorted.
func (ix *Index) Names() []string {
	names := make([]string, 0, len(ix.byName))
	for name := range ix.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FunctionToScripts returns the name -> defining-scripts view, each
// list in priority order.
func (ix *Index) FunctionToScripts() map[string][]string {
	out := make(map[string][]string, len(ix.byName))
	for name, defs := range ix.byName {
		scripts := make([]string, 0, len(defs))
		for _, d := range defs {
			scripts = append(scripts, d.Script)
		}
		out[name] = scripts
	}
	return out
}
