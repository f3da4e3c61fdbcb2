// Package paths normalizes script identifiers to canonical
// project-relative forward-slash paths. Every query input passes
// through here so "dir\sub\f.m", "./dir/sub/f.m" and "dir/sub/f.m"
// name the same script.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Canonicalize converts an absolute path to a project-relative canonical path:
// symlinks resolved, relative to the project root, forward slashes.
func Canonicalize(absolutePath string, projectRoot string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		// If the file doesn't exist yet, use the path as-is
		if os.IsNotExist(err) {
			resolved = absolutePath
		} else {
			return "", err
		}
	}

	rootResolved, err := filepath.EvalSymlinks(projectRoot)
	if err != nil {
		if os.IsNotExist(err) {
			rootResolved = projectRoot
		} else {
			return "", err
		}
	}

	relativePath, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(relativePath), nil
}

// IsWithinProject checks if a path is within the project root
func IsWithinProject(path string, projectRoot string) bool {
	canonical, err := Canonicalize(path, projectRoot)
	if err != nil {
		return false
	}
	return !strings.HasPrefix(canonical, "..")
}

// Normalize normalizes a script identifier that is already relative:
// backslashes to forward slashes, leading "./" stripped.
func Normalize(script string) string {
	s := filepath.ToSlash(strings.TrimSpace(script))
	s = strings.ReplaceAll(s, "\\", "/")
	for strings.HasPrefix(s, "./") {
		s = s[2:]
	}
	return s
}

// Join joins a project root with a canonical script path using
// OS-specific separators.
func Join(projectRoot string, canonicalPath string) string {
	parts := strings.Split(Normalize(canonicalPath), "/")
	return filepath.Join(append([]string{projectRoot}, parts...)...)
}

// Stem returns the file name without its extension; the implicit
// function name of a definition-less script.
func Stem(script string) string {
	base := script
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}

// Dir returns the canonical directory of a script path, "" for the
// project root.
func Dir(script string) string {
	s := Normalize(script)
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[:i]
	}
	return ""
}
