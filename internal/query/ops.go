package query

import (
	"time"

	"matgraph/internal/storage"
	"matgraph/internal/trace"
)

// ScanSummary is the result of a project scan: the three index views
// plus derived structure.
type ScanSummary struct {
	Meta              ScanMeta            `json:"meta"`
	ScriptToFunctions map[string][]string `json:"scriptToFunctions"`
	FunctionToScripts map[string][]string `json:"functionToScripts"`
	ScriptToCalls     map[string][]string `json:"scriptToCalls"`
	Adjacency         map[string][]string `json:"adjacency"`
	Roots             []string            `json:"roots"`
	Leaves            []string            `json:"leaves"`
	UnreadableFiles   []string            `json:"unreadableFiles,omitempty"`
}

// Scan scans (or re-serves the cached scan of) a project and returns
// the index views.
func (e *Engine) Scan(projectPath string, force bool) (result *ScanSummary, err error) {
	defer e.guard("scan", map[string]interface{}{"projectPath": projectPath}, &err)

	root, err := e.resolveRoot(projectPath)
	if err != nil {
		return nil, err
	}
	snap, err := e.snapshot(root, force)
	if err != nil {
		return nil, err
	}

	summary := &ScanSummary{
		Meta:              snap.Meta(),
		ScriptToFunctions: make(map[string][]string, len(snap.Scan.Scripts)),
		FunctionToScripts: snap.Index.FunctionToScripts(),
		ScriptToCalls:     make(map[string][]string, len(snap.Scan.Scripts)),
		Adjacency:         snap.Graph.Adjacency(),
		Roots:             snap.Graph.Roots(),
		Leaves:            snap.Graph.Leaves(),
		UnreadableFiles:   snap.Scan.UnreadableFiles,
	}
	for path, script := range snap.Scan.Scripts {
		summary.ScriptToFunctions[path] = script.DefinitionNames()
		summary.ScriptToCalls[path] = append([]string{}, script.Calls...)
	}
	return summary, nil
}

// AnalyzeResult is a recursive descent report with scan metadata.
type AnalyzeResult struct {
	Meta    ScanMeta             `json:"meta"`
	Entry   string               `json:"entry"`
	Report  *trace.DescentReport `json:"report"`
	QueryMs int64                `json:"queryMs"`
}

// Analyze runs a full recursive descent from an entry script.
func (e *Engine) Analyze(projectPath, entry string, force bool) (result *AnalyzeResult, err error) {
	defer e.guard("analyze", map[string]interface{}{"projectPath": projectPath, "entry": entry}, &err)

	root, err := e.resolveRoot(projectPath)
	if err != nil {
		return nil, err
	}
	snap, err := e.snapshot(root, force)
	if err != nil {
		return nil, err
	}
	script, err := e.requireScript(snap, entry)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	report := snap.Trace.Descend(script)
	return &AnalyzeResult{
		Meta:    snap.Meta(),
		Entry:   script,
		Report:  report,
		QueryMs: time.Since(started).Milliseconds(),
	}, nil
}

// PathResult is the outcome of a shortest-path query. Path is nil and
// Found is false when the target is unreachable.
type PathResult struct {
	Meta  ScanMeta `json:"meta"`
	From  string   `json:"from"`
	To    string   `json:"to"`
	Found bool     `json:"found"`
	Path  []string `json:"path,omitempty"`
}

// PathBetween returns the shortest call path between two scripts.
func (e *Engine) PathBetween(projectPath, from, to string, force bool) (result *PathResult, err error) {
	defer e.guard("pathBetween", map[string]interface{}{
		"projectPath": projectPath, "from": from, "to": to,
	}, &err)

	root, err := e.resolveRoot(projectPath)
	if err != nil {
		return nil, err
	}
	snap, err := e.snapshot(root, force)
	if err != nil {
		return nil, err
	}
	fromScript, err := e.requireScript(snap, from)
	if err != nil {
		return nil, err
	}
	toScript, err := e.requireScript(snap, to)
	if err != nil {
		return nil, err
	}

	path := snap.Trace.ShortestPath(fromScript, toScript)
	return &PathResult{
		Meta:  snap.Meta(),
		From:  fromScript,
		To:    toScript,
		Found: path != nil,
		Path:  path,
	}, nil
}

// LeafPathsResult is the enumeration of paths from one script to all
// reachable leaves.
type LeafPathsResult struct {
	Meta        ScanMeta   `json:"meta"`
	From        string     `json:"from"`
	Paths       [][]string `json:"paths"`
	Truncated   bool       `json:"truncated,omitempty"`
	CycleEvents int        `json:"cycleEvents,omitempty"`
}

// PathsToLeaves enumerates every simple path from a script to every
// leaf it can reach. A leaf entry yields an empty list.
func (e *Engine) PathsToLeaves(projectPath, from string, force bool) (result *LeafPathsResult, err error) {
	defer e.guard("pathsToLeaves", map[string]interface{}{
		"projectPath": projectPath, "from": from,
	}, &err)

	root, err := e.resolveRoot(projectPath)
	if err != nil {
		return nil, err
	}
	snap, err := e.snapshot(root, force)
	if err != nil {
		return nil, err
	}
	script, err := e.requireScript(snap, from)
	if err != nil {
		return nil, err
	}

	ps := snap.Trace.PathsToLeaves(script)
	return &LeafPathsResult{
		Meta:        snap.Meta(),
		From:        script,
		Paths:       ps.Paths,
		Truncated:   ps.Truncated,
		CycleEvents: ps.CycleEvents,
	}, nil
}

// ImpactResult maps each changed script to its upstream and downstream
// blast radius.
type ImpactResult struct {
	Meta      ScanMeta                 `json:"meta"`
	Roots     []string                 `json:"roots"`
	PerScript map[string]*trace.Impact `json:"perScript"`
}

// Impact computes upstream and downstream paths for a set of changed
// scripts. Roots default to declared entrypoints when the project has
// a declaration file, otherwise to auto-detected graph roots.
func (e *Engine) Impact(projectPath string, changed, roots []string, force bool) (result *ImpactResult, err error) {
	defer e.guard("impact", map[string]interface{}{
		"projectPath": projectPath, "changed": changed, "roots": roots,
	}, &err)

	root, err := e.resolveRoot(projectPath)
	if err != nil {
		return nil, err
	}
	snap, err := e.snapshot(root, force)
	if err != nil {
		return nil, err
	}

	changedScripts := make([]string, 0, len(changed))
	for _, c := range changed {
		script, err := e.requireScript(snap, c)
		if err != nil {
			return nil, err
		}
		changedScripts = append(changedScripts, script)
	}

	effectiveRoots := roots
	if effectiveRoots == nil && len(snap.Entrypoints) > 0 {
		effectiveRoots = snap.Entrypoints
	}
	if effectiveRoots == nil {
		effectiveRoots = snap.Graph.Roots()
	} else {
		validated := make([]string, 0, len(effectiveRoots))
		for _, r := range effectiveRoots {
			script, err := e.requireScript(snap, r)
			if err != nil {
				return nil, err
			}
			validated = append(validated, script)
		}
		effectiveRoots = validated
	}

	return &ImpactResult{
		Meta:      snap.Meta(),
		Roots:     effectiveRoots,
		PerScript: snap.Trace.ImpactPaths(changedScripts, effectiveRoots),
	}, nil
}

// CombinedResult is the four-case entry/target analysis: a descent
// report for the effective entry, optionally the shortest entry-to-
// target path, and the downstream paths of the focus script.
type CombinedResult struct {
	Meta       ScanMeta             `json:"meta"`
	Entry      string               `json:"entry,omitempty"`
	Target     string               `json:"target,omitempty"`
	Report     *trace.DescentReport `json:"report,omitempty"`
	TargetPath *PathResult          `json:"targetPath,omitempty"`
	LeafPaths  *LeafPathsResult     `json:"leafPaths,omitempty"`
	Empty      bool                 `json:"empty,omitempty"`
}

// AnalyzeEntryToTarget serves the combined analysis contract:
// entry+target, entry only, target only (the target doubles as its
// own entry), or neither, which is an empty result rather than an
// error.
func (e *Engine) AnalyzeEntryToTarget(projectPath, entry, target string, force bool) (result *CombinedResult, err error) {
	defer e.guard("analyzeEntryToTarget", map[string]interface{}{
		"projectPath": projectPath, "entry": entry, "target": target,
	}, &err)

	if entry == "" && target == "" {
		return &CombinedResult{Empty: true}, nil
	}

	effectiveEntry, focus := entry, target
	if entry == "" {
		effectiveEntry = target
	}
	if target == "" {
		focus = entry
	}

	analysis, err := e.Analyze(projectPath, effectiveEntry, force)
	if err != nil {
		return nil, err
	}

	out := &CombinedResult{
		Meta:   analysis.Meta,
		Entry:  analysis.Entry,
		Report: analysis.Report,
	}

	if entry != "" && target != "" {
		out.Target = target
		pathResult, err := e.PathBetween(projectPath, entry, target, false)
		if err != nil {
			return nil, err
		}
		out.TargetPath = pathResult
	}

	leafPaths, err := e.PathsToLeaves(projectPath, focus, false)
	if err != nil {
		return nil, err
	}
	out.LeafPaths = leafPaths
	return out, nil
}

// StatusResult reports what the engine knows about a project without
// forcing a scan.
type StatusResult struct {
	ProjectRoot string              `json:"projectRoot"`
	Cached      bool                `json:"cached"`
	Persisted   bool                `json:"persisted"`
	Meta        *ScanMeta           `json:"meta,omitempty"`
	Roots       []string            `json:"roots,omitempty"`
	Entrypoints []string            `json:"entrypoints,omitempty"`
	LastScan    *storage.ScanRecord `json:"lastScan,omitempty"`
}

// Status reports the cache and persistence state for a project. It
// never triggers a scan: an unscanned project reports empty status.
func (e *Engine) Status(projectPath string) (result *StatusResult, err error) {
	defer e.guard("status", map[string]interface{}{"projectPath": projectPath}, &err)

	root, err := e.resolveRoot(projectPath)
	if err != nil {
		return nil, err
	}

	status := &StatusResult{ProjectRoot: root}

	st := e.state(root)
	st.mu.Lock()
	snap := st.snap
	st.mu.Unlock()

	if snap != nil {
		meta := snap.Meta()
		status.Cached = true
		status.Meta = &meta
		status.Roots = snap.Graph.Roots()
		status.Entrypoints = snap.Entrypoints
		return status, nil
	}

	if e.cfg.Storage.PersistSnapshots {
		db, openErr := storage.Open(root, e.log)
		if openErr == nil {
			defer db.Close()
			if rec, ok, loadErr := db.LatestScan(); loadErr == nil && ok {
				status.Persisted = true
				status.LastScan = &rec
			}
		}
	}
	return status, nil
}
