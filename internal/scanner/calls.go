package scanner

import (
	"regexp"
	"sort"
	"strings"
)

// Call-site line shapes. Matching is heuristic: there is no grammar, so
// the scanner looks for identifiers positioned where an invocation
// would be and filters the result through the denylist and the set of
// assigned variable names (to tell indexing apart from invocation).
var (
	assignPattern   = regexp.MustCompile(`^\s*([A-Za-z]\w*)\s*=`)
	callLineStart   = regexp.MustCompile(`^\s*([A-Za-z]\w*)\s*\(.*\)\s*;?\s*$`)
	callAssignedRHS = regexp.MustCompile(`=\s*([A-Za-z]\w*)\s*\(`)
	callBareSemi    = regexp.MustCompile(`^\s*([A-Za-z]\w*)\s*;\s*$`)
	callBareNoPunct = regexp.MustCompile(`^\s*([A-Za-z]\w*)\s*$`)
)

// extractCalls returns the sorted set of call-like identifiers in the
// script content.
func (s *Scanner) extractCalls(content string) []string {
	lines := strings.Split(content, "\n")

	// Strip comments first so commented-out code is never read as calls.
	codeLines := make([]string, len(lines))
	for i, line := range lines {
		if idx := strings.Index(line, "%"); idx >= 0 {
			line = line[:idx]
		}
		codeLines[i] = line
	}

	// Collect assigned variable names across the whole file; a name that
	// is assigned somewhere and later appears as `name(...)` is more
	// likely array indexing than a call.
	assigned := make(map[string]bool)
	for _, line := range codeLines {
		if m := assignPattern.FindStringSubmatch(line); m != nil {
			assigned[m[1]] = true
		}
	}

	calls := make(map[string]bool)
	add := func(name string, checkAssigned bool) {
		if len(name) < s.cfg.MinIdentifierLength {
			return
		}
		if s.denied[name] {
			return
		}
		if checkAssigned && assigned[name] {
			return
		}
		calls[name] = true
	}

	for _, line := range codeLines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		// Member/field access continuation lines are never call sites.
		if strings.HasPrefix(stripped, ".") {
			continue
		}

		if m := callLineStart.FindStringSubmatch(line); m != nil {
			add(m[1], true)
			continue
		}

		for _, m := range callAssignedRHS.FindAllStringSubmatch(line, -1) {
			add(m[1], true)
		}

		if m := callBareSemi.FindStringSubmatch(line); m != nil {
			add(m[1], false)
			continue
		}

		if m := callBareNoPunct.FindStringSubmatch(line); m != nil {
			add(m[1], true)
		}
	}

	out := make([]string, 0, len(calls))
	for name := range calls {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
