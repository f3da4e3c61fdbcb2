package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// ScanRecord is the metadata row of a persisted scan.
type ScanRecord struct {
	ScanID          string    `json:"scanId"`
	ScannedAt       time.Time `json:"scannedAt"`
	ScriptCount     int       `json:"scriptCount"`
	EdgeCount       int       `json:"edgeCount"`
	UnreadableCount int       `json:"unreadableCount"`
}

// DefinitionRecord is one persisted function definition.
type DefinitionRecord struct {
	Name string `json:"name"`
	Line int    `json:"line"`
	Raw  string `json:"raw"`
	Kind string `json:"kind"`
}

// ScriptRecord is one persisted script with its definitions and calls.
type ScriptRecord struct {
	Path        string             `json:"path"`
	Unreadable  bool               `json:"unreadable"`
	Definitions []DefinitionRecord `json:"definitions"`
	Calls       []string           `json:"calls"`
}

// EdgeRecord is one persisted call-graph edge.
type EdgeRecord struct {
	Caller string `json:"caller"`
	Callee string `json:"callee"`
}

// Snapshot is one complete persisted scan.
type Snapshot struct {
	Scan    ScanRecord     `json:"scan"`
	Scripts []ScriptRecord `json:"scripts"`
	Edges   []EdgeRecord   `json:"edges"`
}

// SaveSnapshot replaces the stored snapshot with the given one; only
// the most recent scan is retained.
func (db *DB) SaveSnapshot(snap *Snapshot) error {
	return db.WithTx(func(tx *sql.Tx) error {
		for _, table := range []string{"scans", "definitions", "calls", "scripts", "edges"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		if _, err := tx.Exec(`
			INSERT INTO scans (scan_id, scanned_at, script_count, edge_count, unreadable_count)
			VALUES (?, ?, ?, ?, ?)`,
			snap.Scan.ScanID, snap.Scan.ScannedAt.UTC(), snap.Scan.ScriptCount,
			snap.Scan.EdgeCount, snap.Scan.UnreadableCount,
		); err != nil {
			return fmt.Errorf("failed to insert scan: %w", err)
		}

		for ordinal, script := range snap.Scripts {
			if _, err := tx.Exec(
				"INSERT INTO scripts (path, unreadable, ordinal) VALUES (?, ?, ?)",
				script.Path, script.Unreadable, ordinal,
			); err != nil {
				return fmt.Errorf("failed to insert script %s: %w", script.Path, err)
			}
			for i, def := range script.Definitions {
				if _, err := tx.Exec(`
					INSERT INTO definitions (script, name, line, raw, kind, ordinal)
					VALUES (?, ?, ?, ?, ?, ?)`,
					script.Path, def.Name, def.Line, def.Raw, def.Kind, i,
				); err != nil {
					return fmt.Errorf("failed to insert definition: %w", err)
				}
			}
			for i, name := range script.Calls {
				if _, err := tx.Exec(
					"INSERT INTO calls (script, name, ordinal) VALUES (?, ?, ?)",
					script.Path, name, i,
				); err != nil {
					return fmt.Errorf("failed to insert call: %w", err)
				}
			}
		}

		for _, edge := range snap.Edges {
			if _, err := tx.Exec(
				"INSERT INTO edges (caller, callee) VALUES (?, ?)",
				edge.Caller, edge.Callee,
			); err != nil {
				return fmt.Errorf("failed to insert edge: %w", err)
			}
		}
		return nil
	})
}

// DeleteSnapshot removes the stored snapshot, reverting the project to
// a never-persisted state.
func (db *DB) DeleteSnapshot() error {
	return db.WithTx(func(tx *sql.Tx) error {
		for _, table := range []string{"scans", "definitions", "calls", "scripts", "edges"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// LoadSnapshot returns the stored snapshot in original discovery
// order, or ok=false when nothing has been persisted yet.
func (db *DB) LoadSnapshot() (*Snapshot, bool, error) {
	scan, ok, err := db.LatestScan()
	if err != nil || !ok {
		return nil, false, err
	}

	snap := &Snapshot{Scan: scan}

	scripts := make(map[string]*ScriptRecord)
	var order []string
	rows, err := db.Query("SELECT path, unreadable FROM scripts ORDER BY ordinal, path")
	if err != nil {
		return nil, false, fmt.Errorf("failed to load scripts: %w", err)
	}
	for rows.Next() {
		var rec ScriptRecord
		if err := rows.Scan(&rec.Path, &rec.Unreadable); err != nil {
			rows.Close()
			return nil, false, err
		}
		scripts[rec.Path] = &rec
		order = append(order, rec.Path)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, false, err
	}
	rows.Close()

	rows, err = db.Query("SELECT script, name, line, raw, kind FROM definitions ORDER BY script, ordinal")
	if err != nil {
		return nil, false, fmt.Errorf("failed to load definitions: %w", err)
	}
	for rows.Next() {
		var script string
		var def DefinitionRecord
		if err := rows.Scan(&script, &def.Name, &def.Line, &def.Raw, &def.Kind); err != nil {
			rows.Close()
			return nil, false, err
		}
		if rec, ok := scripts[script]; ok {
			rec.Definitions = append(rec.Definitions, def)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, false, err
	}
	rows.Close()

	rows, err = db.Query("SELECT script, name FROM calls ORDER BY script, ordinal")
	if err != nil {
		return nil, false, fmt.Errorf("failed to load calls: %w", err)
	}
	for rows.Next() {
		var script, name string
		if err := rows.Scan(&script, &name); err != nil {
			rows.Close()
			return nil, false, err
		}
		if rec, ok := scripts[script]; ok {
			rec.Calls = append(rec.Calls, name)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, false, err
	}
	rows.Close()

	rows, err = db.Query("SELECT caller, callee FROM edges ORDER BY caller, callee")
	if err != nil {
		return nil, false, fmt.Errorf("failed to load edges: %w", err)
	}
	for rows.Next() {
		var edge EdgeRecord
		if err := rows.Scan(&edge.Caller, &edge.Callee); err != nil {
			rows.Close()
			return nil, false, err
		}
		snap.Edges = append(snap.Edges, edge)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, false, err
	}
	rows.Close()

	for _, path := range order {
		snap.Scripts = append(snap.Scripts, *scripts[path])
	}
	return snap, true, nil
}

// LatestScan returns the metadata of the stored scan, ok=false when
// the store is empty.
func (db *DB) LatestScan() (ScanRecord, bool, error) {
	var rec ScanRecord
	err := db.QueryRow(`
		SELECT scan_id, scanned_at, script_count, edge_count, unreadable_count
		FROM scans ORDER BY scanned_at DESC LIMIT 1
	`).Scan(&rec.ScanID, &rec.ScannedAt, &rec.ScriptCount, &rec.EdgeCount, &rec.UnreadableCount)
	if err == sql.ErrNoRows {
		return ScanRecord{}, false, nil
	}
	if err != nil {
		return ScanRecord{}, false, fmt.Errorf("failed to load scan metadata: %w", err)
	}
	return rec, true, nil
}
