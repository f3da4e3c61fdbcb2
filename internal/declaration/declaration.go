// Package declaration reads the optional per-project matgraph.toml,
// which lets a project declare entrypoints and tune scanner behavior
// without touching .matgraph/config.json.
package declaration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"matgraph/internal/config"
	"matgraph/internal/paths"
)

// DeclarationFile is the default filename for project declarations
const DeclarationFile = "matgraph.toml"

// Declaration represents the root structure of matgraph.toml
type Declaration struct {
	// Version is the schema version
	Version int `toml:"version"`

	// Entrypoints are declared root scripts (project-relative paths).
	// When present, impact analysis uses these instead of auto-detected
	// roots.
	Entrypoints []string `toml:"entrypoints"`

	Scanner ScannerDeclaration `toml:"scanner"`
}

// ScannerDeclaration tunes lexical scanning for this project.
type ScannerDeclaration struct {
	// IgnoreDirs are extra directory names skipped during the walk.
	IgnoreDirs []string `toml:"ignore_dirs"`

	// DenylistAdd are extra identifiers excluded from call sets.
	DenylistAdd []string `toml:"denylist_add"`

	// DenylistRemove re-enables identifiers the default denylist excludes,
	// for projects that shadow built-ins with their own scripts.
	DenylistRemove []string `toml:"denylist_remove"`
}

// Load reads matgraph.toml from the project root. A missing file is
// not an error; it returns (nil, nil).
func Load(projectRoot string) (*Declaration, error) {
	filePath := filepath.Join(projectRoot, DeclarationFile)
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", DeclarationFile, err)
	}

	var decl Declaration
	if err := toml.Unmarshal(data, &decl); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", DeclarationFile, err)
	}

	for i, e := range decl.Entrypoints {
		decl.Entrypoints[i] = paths.Normalize(e)
	}

	return &decl, nil
}

// Apply merges the declaration over a scanner configuration, returning
// a new config; the input is not mutated.
func (d *Declaration) Apply(sc config.ScannerConfig) config.ScannerConfig {
	if d == nil {
		return sc
	}

	out := sc
	out.IgnoreDirs = append(append([]string{}, sc.IgnoreDirs...), d.Scanner.IgnoreDirs...)

	remove := make(map[string]bool, len(d.Scanner.DenylistRemove))
	for _, w := range d.Scanner.DenylistRemove {
		remove[w] = true
	}

	denylist := make([]string, 0, len(sc.Denylist)+len(d.Scanner.DenylistAdd))
	for _, w := range sc.Denylist {
		if !remove[w] {
			denylist = append(denylist, w)
		}
	}
	denylist = append(denylist, d.Scanner.DenylistAdd...)
	out.Denylist = denylist

	return out
}
