package storage

import (
	"database/sql"
)

const currentSchemaVersion = 2

func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		statements := []string{
			`CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS scans (
				scan_id TEXT PRIMARY KEY,
				scanned_at TIMESTAMP NOT NULL,
				script_count INTEGER NOT NULL,
				edge_count INTEGER NOT NULL,
				unreadable_count INTEGER NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS scripts (
				path TEXT PRIMARY KEY,
				unreadable INTEGER NOT NULL DEFAULT 0,
				ordinal INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS definitions (
				script TEXT NOT NULL REFERENCES scripts(path) ON DELETE CASCADE,
				name TEXT NOT NULL,
				line INTEGER NOT NULL,
				raw TEXT NOT NULL,
				kind TEXT NOT NULL,
				ordinal INTEGER NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_definitions_name ON definitions(name)`,
			`CREATE TABLE IF NOT EXISTS calls (
				script TEXT NOT NULL REFERENCES scripts(path) ON DELETE CASCADE,
				name TEXT NOT NULL,
				ordinal INTEGER NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS edges (
				caller TEXT NOT NULL,
				callee TEXT NOT NULL,
				PRIMARY KEY (caller, callee)
			)`,
		}
		for _, stmt := range statements {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}
		return setSchemaVersion(tx, currentSchemaVersion)
	})
}

func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}
	if version == currentSchemaVersion {
		return nil
	}

	db.logger.Info("migrating snapshot database", map[string]interface{}{
		"from_version": version,
		"to_version":   currentSchemaVersion,
	})

	// Migrations run sequentially as the schema evolves; a version-0
	// file predates versioning and is rebuilt from scratch.
	if version == 0 {
		return db.initializeSchema()
	}
	if version == 1 {
		if err := db.migrateV1toV2(); err != nil {
			return err
		}
	}
	return nil
}

// v2 adds discovery-order ordinals to scripts. Existing rows keep
// ordinal 0 and fall back to path order, matching the v1 loader.
func (db *DB) migrateV1toV2() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			"ALTER TABLE scripts ADD COLUMN ordinal INTEGER NOT NULL DEFAULT 0",
		); err != nil {
			return err
		}
		return setSchemaVersion(tx, 2)
	})
}

func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}
