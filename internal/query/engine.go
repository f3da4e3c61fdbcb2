// Package query is the façade over scanning, name resolution, graph
// construction and path tracing. It owns a bounded cache of per-project
// snapshots: at most one parsed representation per project root is
// retained, concurrent queries share it read-only, and a reset or
// force-rescan replaces it wholesale.
package query

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"matgraph/internal/config"
	"matgraph/internal/declaration"
	"matgraph/internal/errors"
	"matgraph/internal/graph"
	"matgraph/internal/logging"
	"matgraph/internal/paths"
	"matgraph/internal/resolver"
	"matgraph/internal/scanner"
	"matgraph/internal/storage"
	"matgraph/internal/trace"
)

// Snapshot is one immutable parsed representation of a project. It is
// replaced, never mutated, on rescan.
type Snapshot struct {
	ScanID      string
	ScannedAt   time.Time
	ProjectRoot string
	Scan        *scanner.Result
	Index       *resolver.Index
	Graph       *graph.CallGraph
	Trace       *trace.Engine
	Entrypoints []string
	ScanTime    time.Duration
}

// Meta returns the snapshot's identifying metadata for responses.
func (s *Snapshot) Meta() ScanMeta {
	return ScanMeta{
		ScanID:          s.ScanID,
		ScannedAt:       s.ScannedAt,
		ScriptCount:     s.Graph.NodeCount(),
		EdgeCount:       s.Graph.EdgeCount(),
		UnreadableCount: s.Scan.UnreadableCount(),
		ScanMs:          s.ScanTime.Milliseconds(),
	}
}

// ScanMeta identifies the scan a result was computed from.
type ScanMeta struct {
	ScanID          string    `json:"scanId"`
	ScannedAt       time.Time `json:"scannedAt"`
	ScriptCount     int       `json:"scriptCount"`
	EdgeCount       int       `json:"edgeCount"`
	UnreadableCount int       `json:"unreadableCount,omitempty"`
	ScanMs          int64     `json:"scanMs,omitempty"`
}

type projectState struct {
	mu   sync.Mutex
	snap *Snapshot
}

// Engine serves queries for any number of projects, caching one
// snapshot per project root.
type Engine struct {
	cfg   *config.Config
	log   *logging.Logger
	mu    sync.Mutex
	cache *lru.Cache[string, *projectState]
}

// NewEngine creates a query engine with the configured snapshot cache
// size.
func NewEngine(cfg *config.Config, logger *logging.Logger) (*Engine, error) {
	cache, err := lru.New[string, *projectState](cfg.Engine.MaxCachedProjects)
	if err != nil {
		return nil, fmt.Errorf("failed to create project cache: %w", err)
	}
	return &Engine{
		cfg:   cfg,
		log:   logger.With("query"),
		cache: cache,
	}, nil
}

// resolveRoot validates and canonicalizes a project path.
func (e *Engine) resolveRoot(projectPath string) (string, error) {
	if projectPath == "" {
		return "", errors.NewInvalidParameter("projectPath", "must not be empty")
	}
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		return "", errors.NewInvalidProjectPath(projectPath)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", errors.NewInvalidProjectPath(projectPath)
	}
	return filepath.Clean(abs), nil
}

func (e *Engine) state(root string) *projectState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok := e.cache.Get(root); ok {
		return st
	}
	st := &projectState{}
	e.cache.Add(root, st)
	return st
}

// snapshot returns the cached snapshot for a project, building one
// when absent or when force is set. Callers hold no lock; exclusive
// access per project root is enforced here.
func (e *Engine) snapshot(root string, force bool) (*Snapshot, error) {
	st := e.state(root)
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.snap != nil && !force {
		return st.snap, nil
	}

	if !force {
		if snap := e.restoreSnapshot(root); snap != nil {
			st.snap = snap
			return snap, nil
		}
	}

	snap, err := e.buildSnapshot(root)
	if err != nil {
		return nil, err
	}
	st.snap = snap
	return snap, nil
}

// restoreSnapshot rebuilds a snapshot from the persisted scan records
// on a cold cache, skipping the file reads and parsing of a full
// rescan. Returns nil when nothing usable is persisted or the tree
// has changed since the stored scan; callers then rescan.
func (e *Engine) restoreSnapshot(root string) *Snapshot {
	if !e.cfg.Storage.PersistSnapshots {
		return nil
	}
	if _, err := os.Stat(storage.DBPath(root)); err != nil {
		return nil
	}

	started := time.Now()
	db, err := storage.Open(root, e.log)
	if err != nil {
		return nil
	}
	defer db.Close()

	stored, ok, err := db.LoadSnapshot()
	if err != nil || !ok {
		return nil
	}

	decl, err := declaration.Load(root)
	if err != nil {
		return nil
	}
	scanCfg := decl.Apply(e.cfg.Scanner)

	if !e.persistedFresh(root, scanCfg, stored) {
		e.log.Debug("persisted snapshot stale, rescanning", map[string]interface{}{
			"root":   root,
			"scanId": stored.Scan.ScanID,
		})
		return nil
	}

	scan := scanFromRecords(root, stored)
	ix := resolver.Resolve(scan, e.log)
	g := graph.Build(scan, ix, e.log)

	snap := &Snapshot{
		ScanID:      stored.Scan.ScanID,
		ScannedAt:   stored.Scan.ScannedAt,
		ProjectRoot: root,
		Scan:        scan,
		Index:       ix,
		Graph:       g,
		Trace:       trace.New(g, e.cfg.Engine.MaxPathsPerQuery, e.log),
		ScanTime:    time.Since(started),
	}
	if decl != nil {
		snap.Entrypoints = decl.Entrypoints
	}

	e.log.Info("snapshot restored from store", map[string]interface{}{
		"root":       root,
		"scanId":     snap.ScanID,
		"scripts":    g.NodeCount(),
		"edges":      g.EdgeCount(),
		"durationMs": snap.ScanTime.Milliseconds(),
	})
	return snap
}

// persistedFresh checks the stored snapshot still describes the tree:
// the same script set is discovered and no script or the declaration
// file was modified after the stored scan. Stat-only; no file reads.
func (e *Engine) persistedFresh(root string, scanCfg config.ScannerConfig, stored *storage.Snapshot) bool {
	since := stored.Scan.ScannedAt

	declPath := filepath.Join(root, declaration.DeclarationFile)
	if info, err := os.Stat(declPath); err == nil && info.ModTime().After(since) {
		return false
	}

	discovered, err := scanner.New(scanCfg, e.log).Discover(root)
	if err != nil || len(discovered) != len(stored.Scripts) {
		return false
	}

	persisted := make(map[string]bool, len(stored.Scripts))
	for _, rec := range stored.Scripts {
		persisted[rec.Path] = true
	}
	for _, rel := range discovered {
		if !persisted[rel] {
			return false
		}
		info, err := os.Stat(paths.Join(root, rel))
		if err != nil || info.ModTime().After(since) {
			return false
		}
	}
	return true
}

// scanFromRecords reconstructs a scan result from persisted records.
// Discovery order is stored verbatim, so resolution tie-breaks come
// out identical to the original scan's.
func scanFromRecords(root string, stored *storage.Snapshot) *scanner.Result {
	res := &scanner.Result{
		ProjectRoot: root,
		Scripts:     make(map[string]*scanner.Script, len(stored.Scripts)),
	}
	for _, rec := range stored.Scripts {
		script := &scanner.Script{
			Path:       rec.Path,
			Calls:      rec.Calls,
			Unreadable: rec.Unreadable,
		}
		for _, def := range rec.Definitions {
			script.Definitions = append(script.Definitions, scanner.FunctionDefinition{
				Name:   def.Name,
				Script: rec.Path,
				Line:   def.Line,
				Raw:    def.Raw,
				Kind:   scanner.DefinitionKind(def.Kind),
			})
		}
		res.Scripts[rec.Path] = script
		res.DiscoveryOrder = append(res.DiscoveryOrder, rec.Path)
		if rec.Unreadable {
			res.UnreadableFiles = append(res.UnreadableFiles, rec.Path)
		}
	}
	res.DirOrder = scanner.DirOrder(res.DiscoveryOrder)
	return res
}

func (e *Engine) buildSnapshot(root string) (*Snapshot, error) {
	started := time.Now()

	decl, err := declaration.Load(root)
	if err != nil {
		return nil, err
	}
	scanCfg := decl.Apply(e.cfg.Scanner)

	scan, err := scanner.New(scanCfg, e.log).Scan(root)
	if err != nil {
		return nil, err
	}

	ix := resolver.Resolve(scan, e.log)
	g := graph.Build(scan, ix, e.log)

	snap := &Snapshot{
		ScanID:      uuid.NewString(),
		ScannedAt:   time.Now().UTC(),
		ProjectRoot: root,
		Scan:        scan,
		Index:       ix,
		Graph:       g,
		Trace:       trace.New(g, e.cfg.Engine.MaxPathsPerQuery, e.log),
		ScanTime:    time.Since(started),
	}
	if decl != nil {
		snap.Entrypoints = decl.Entrypoints
	}

	e.log.Info("project scanned", map[string]interface{}{
		"root":       root,
		"scanId":     snap.ScanID,
		"scripts":    g.NodeCount(),
		"edges":      g.EdgeCount(),
		"unreadable": scan.UnreadableCount(),
		"durationMs": snap.ScanTime.Milliseconds(),
	})

	if e.cfg.Storage.PersistSnapshots {
		e.persist(root, snap)
	}
	return snap, nil
}

// persist writes the snapshot to the project-local store. Failure to
// persist never fails the query.
func (e *Engine) persist(root string, snap *Snapshot) {
	db, err := storage.Open(root, e.log)
	if err != nil {
		e.log.Warn("snapshot persistence unavailable", map[string]interface{}{
			"root":  root,
			"error": err.Error(),
		})
		return
	}
	defer db.Close()

	if err := db.SaveSnapshot(snapshotRecord(snap)); err != nil {
		e.log.Warn("failed to persist snapshot", map[string]interface{}{
			"root":  root,
			"error": err.Error(),
		})
	}
}

func snapshotRecord(snap *Snapshot) *storage.Snapshot {
	rec := &storage.Snapshot{
		Scan: storage.ScanRecord{
			ScanID:          snap.ScanID,
			ScannedAt:       snap.ScannedAt,
			ScriptCount:     snap.Graph.NodeCount(),
			EdgeCount:       snap.Graph.EdgeCount(),
			UnreadableCount: snap.Scan.UnreadableCount(),
		},
	}
	for _, path := range snap.Scan.DiscoveryOrder {
		script := snap.Scan.Scripts[path]
		sr := storage.ScriptRecord{
			Path:       path,
			Unreadable: script.Unreadable,
			Calls:      script.Calls,
		}
		for _, def := range script.Definitions {
			sr.Definitions = append(sr.Definitions, storage.DefinitionRecord{
				Name: def.Name,
				Line: def.Line,
				Raw:  def.Raw,
				Kind: string(def.Kind),
			})
		}
		rec.Scripts = append(rec.Scripts, sr)
	}
	for caller, callees := range snap.Graph.Adjacency() {
		for _, callee := range callees {
			rec.Edges = append(rec.Edges, storage.EdgeRecord{Caller: caller, Callee: callee})
		}
	}
	return rec
}

// requireScript normalizes a script identifier and checks it is part
// of the scanned project. Absolute paths are accepted and mapped onto
// their project-relative form; paths outside the project are rejected.
func (e *Engine) requireScript(snap *Snapshot, script string) (string, error) {
	if script == "" {
		return "", errors.NewInvalidParameter("script", "must not be empty")
	}

	normalized := paths.Normalize(script)
	if filepath.IsAbs(script) {
		if !paths.IsWithinProject(script, snap.ProjectRoot) {
			return "", errors.NewScriptNotFound(normalized)
		}
		canonical, err := paths.Canonicalize(script, snap.ProjectRoot)
		if err != nil {
			return "", errors.NewScriptNotFound(normalized)
		}
		normalized = paths.Normalize(canonical)
	}

	if _, ok := snap.Scan.Scripts[normalized]; !ok {
		return "", errors.NewScriptNotFound(normalized)
	}
	return normalized, nil
}

// guard converts a panic during one query into a structured internal
// error, so a single bad query cannot take down a long-lived server.
func (e *Engine) guard(query string, params map[string]interface{}, err *error) {
	if r := recover(); r != nil {
		e.log.Error("query panicked", map[string]interface{}{
			"query": query,
			"panic": fmt.Sprint(r),
		})
		*err = errors.NewInternal(query, params, fmt.Errorf("panic: %v", r))
	}
}

// Reset drops the cached snapshot for a project and the persisted
// snapshot row, forcing the next query to rescan.
func (e *Engine) Reset(projectPath string) error {
	root, err := e.resolveRoot(projectPath)
	if err != nil {
		return err
	}

	st := e.state(root)
	st.mu.Lock()
	st.snap = nil
	st.mu.Unlock()

	if e.cfg.Storage.PersistSnapshots {
		e.dropPersisted(root)
	}

	e.log.Info("project cache reset", map[string]interface{}{"root": root})
	return nil
}

// dropPersisted clears the stored snapshot. Like persist, store
// trouble is logged but never fails the operation.
func (e *Engine) dropPersisted(root string) {
	if _, err := os.Stat(storage.DBPath(root)); err != nil {
		return
	}
	db, err := storage.Open(root, e.log)
	if err != nil {
		e.log.Warn("snapshot store unavailable for reset", map[string]interface{}{
			"root":  root,
			"error": err.Error(),
		})
		return
	}
	defer db.Close()

	if err := db.DeleteSnapshot(); err != nil {
		e.log.Warn("failed to drop persisted snapshot", map[string]interface{}{
			"root":  root,
			"error": err.Error(),
		})
	}
}
