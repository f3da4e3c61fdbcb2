package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// discover walks the project tree and returns script paths
// (project-relative, forward slashes) in sorted order. The order is
// recorded as discovery order and reused for search-path tie-breaks,
// so it must be reproducible across runs.
func (s *Scanner) discover(root string) ([]string, error) {
	skip := make(map[string]struct{}, len(s.cfg.IgnoreDirs))
	for _, d := range s.cfg.IgnoreDirs {
		skip[d] = struct{}{}
	}

	extSet := make(map[string]struct{}, len(s.cfg.Extensions))
	for _, e := range s.cfg.Extensions {
		extSet[strings.ToLower(e)] = struct{}{}
	}

	var gi *ignore.GitIgnore
	if s.cfg.UseGitignore {
		gi = loadGitignore(root)
	}

	var results []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree: skip, never abort the scan
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, ok := skip[name]; ok || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := extSet[ext]; !ok {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		results = append(results, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(results)
	return results, nil
}

// loadGitignore reads the project-level .gitignore if present.
func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}

// Discover returns the script paths a scan of root would visit, in
// discovery order, without reading any file contents. Warm-start
// freshness checks use it to compare the tree against a persisted
// snapshot.
func (s *Scanner) Discover(root string) ([]string, error) {
	return s.discover(root)
}

// DirOrder derives the simulated search-path order from discovery
// order: project root first, then one entry per unique script
// directory as its first file is discovered.
func DirOrder(discovery []string) []string {
	order := []string{""}
	seen := map[string]bool{"": true}
	for _, p := range discovery {
		dir := ""
		if i := strings.LastIndex(p, "/"); i >= 0 {
			dir = p[:i]
		}
		if !seen[dir] {
			seen[dir] = true
			order = append(order, dir)
		}
	}
	return order
}
