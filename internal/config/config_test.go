package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scanner.MinIdentifierLength != 2 {
		t.Errorf("MinIdentifierLength = %d, want 2", cfg.Scanner.MinIdentifierLength)
	}
	if len(cfg.Scanner.Extensions) == 0 || cfg.Scanner.Extensions[0] != ".m" {
		t.Errorf("Extensions = %v, want [.m]", cfg.Scanner.Extensions)
	}
	if cfg.Engine.MaxPathsPerQuery <= 0 {
		t.Error("MaxPathsPerQuery must be positive")
	}
	if len(cfg.Scanner.Denylist) == 0 {
		t.Error("default denylist must not be empty")
	}
}

func TestDenylistContainsKeywords(t *testing.T) {
	set := make(map[string]bool)
	for _, w := range DefaultDenylist() {
		set[w] = true
	}

	for _, kw := range []string{"if", "end", "function", "while", "fprintf"} {
		if !set[kw] {
			t.Errorf("denylist missing keyword %q", kw)
		}
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	root := t.TempDir()

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Engine.MaxPathsPerQuery != DefaultConfig().Engine.MaxPathsPerQuery {
		t.Error("missing config file should yield defaults")
	}
}

func TestLoadConfigOverride(t *testing.T) {
	root := t.TempDir()
	dir := ConfigDir(root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `{"engine": {"maxPathsPerQuery": 50}, "scanner": {"minIdentifierLength": 3}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Engine.MaxPathsPerQuery != 50 {
		t.Errorf("MaxPathsPerQuery = %d, want 50", cfg.Engine.MaxPathsPerQuery)
	}
	if cfg.Scanner.MinIdentifierLength != 3 {
		t.Errorf("MinIdentifierLength = %d, want 3", cfg.Scanner.MinIdentifierLength)
	}
	// Untouched sections keep defaults
	if !cfg.Storage.PersistSnapshots {
		t.Error("storage defaults should survive a partial override")
	}
}

func TestSaveAndReloadConfig(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.Engine.MaxPathsPerQuery = 123
	if err := SaveConfig(root, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Engine.MaxPathsPerQuery != 123 {
		t.Errorf("round-trip MaxPathsPerQuery = %d, want 123", loaded.Engine.MaxPathsPerQuery)
	}
}

func TestApplyFloors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.MaxPathsPerQuery = -5
	cfg.Scanner.MinIdentifierLength = 0
	cfg.Scanner.Extensions = nil
	applyFloors(cfg)

	if cfg.Engine.MaxPathsPerQuery != 10000 {
		t.Errorf("MaxPathsPerQuery floor = %d", cfg.Engine.MaxPathsPerQuery)
	}
	if cfg.Scanner.MinIdentifierLength != 2 {
		t.Errorf("MinIdentifierLength floor = %d", cfg.Scanner.MinIdentifierLength)
	}
	if len(cfg.Scanner.Extensions) == 0 {
		t.Error("Extensions floor not applied")
	}
}
