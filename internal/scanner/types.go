package scanner

// DefinitionKind distinguishes declared functions from the
// script-as-function fallback.
type DefinitionKind string

const (
	// KindExplicit is a `function ...` declaration found in the source.
	KindExplicit DefinitionKind = "explicit"
	// KindImplicitScript is the synthesized definition named after the
	// file stem, for scripts with no function declarations. MATLAB
	// makes any script invokable by its filename.
	KindImplicitScript DefinitionKind = "implicit-script"
)

// FunctionDefinition records one callable name introduced by a script.
type FunctionDefinition struct {
	Name   string         `json:"name"`
	Script string         `json:"script"` // project-relative path
	Line   int            `json:"line"`   // 1-based; 0 for implicit definitions
	Raw    string         `json:"raw,omitempty"`
	Kind   DefinitionKind `json:"kind"`
}

// Script is one scanned source file.
type Script struct {
	// Path is project-relative with forward slashes.
	Path string `json:"path"`
	// Definitions lists the functions this script defines, in source order.
	Definitions []FunctionDefinition `json:"definitions"`
	// Calls is the sorted set of call-like identifiers referenced.
	Calls []string `json:"calls"`
	// Unreadable marks a script recorded with empty records after an
	// I/O or decode failure.
	Unreadable bool `json:"unreadable,omitempty"`
}

// DefinitionNames returns the set of names this script defines.
func (s *Script) DefinitionNames() []string {
	names := make([]string, 0, len(s.Definitions))
	seen := make(map[string]bool, len(s.Definitions))
	for _, d := range s.Definitions {
		if !seen[d.Name] {
			seen[d.Name] = true
			names = append(names, d.Name)
		}
	}
	return names
}

// DefinesExplicitly reports whether the script has an explicit
// definition of name.
func (s *Script) DefinesExplicitly(name string) bool {
	for _, d := range s.Definitions {
		if d.Name == name && d.Kind == KindExplicit {
			return true
		}
	}
	return false
}

// Result is the outcome of scanning one project tree.
type Result struct {
	// ProjectRoot is the absolute root that was scanned.
	ProjectRoot string `json:"projectRoot"`
	// Scripts maps project-relative path to script record.
	Scripts map[string]*Script `json:"scripts"`
	// DiscoveryOrder lists script paths in deterministic (sorted) walk
	// order; resolution tie-breaks reuse it verbatim.
	DiscoveryOrder []string `json:"discoveryOrder"`
	// DirOrder simulates the MATLAB search path: project root first
	// ("" entry), then one entry per unique script directory in
	// file-discovery order.
	DirOrder []string `json:"dirOrder"`
	// UnreadableFiles lists scripts recorded with empty records after
	// read/decode failures.
	UnreadableFiles []string `json:"unreadableFiles,omitempty"`
}

// UnreadableCount returns the number of scripts that could not be read.
func (r *Result) UnreadableCount() int {
	return len(r.UnreadableFiles)
}
