// Package scanner discovers MATLAB scripts under a project root and
// extracts, per script, the function names it defines and the
// call-like identifiers it references. It is a best-effort lexical
// heuristic, not a parser: recognition is line-oriented and the
// exclusion list is hand-maintained.
package scanner

import (
	"strings"

	"matgraph/internal/config"
	"matgraph/internal/logging"
	"matgraph/internal/paths"
)

// Scanner performs one-project lexical scans.
type Scanner struct {
	cfg    config.ScannerConfig
	denied map[string]bool
	logger *logging.Logger
}

// New creates a Scanner with the given configuration.
func New(cfg config.ScannerConfig, logger *logging.Logger) *Scanner {
	denied := make(map[string]bool, len(cfg.Denylist))
	for _, w := range cfg.Denylist {
		denied[w] = true
	}
	return &Scanner{
		cfg:    cfg,
		denied: denied,
		logger: logger.With("scanner"),
	}
}

// Scan enumerates every script under root and extracts definitions and
// calls. One bad file never aborts the scan: it is recorded with empty
// records and counted as unreadable.
func (s *Scanner) Scan(root string) (*Result, error) {
	discovery, err := s.discover(root)
	if err != nil {
		return nil, err
	}

	s.logger.Info("scanning project", map[string]interface{}{
		"root":    root,
		"scripts": len(discovery),
	})

	result := &Result{
		ProjectRoot:    root,
		Scripts:        make(map[string]*Script, len(discovery)),
		DiscoveryOrder: discovery,
		DirOrder:       DirOrder(discovery),
	}

	for _, rel := range discovery {
		script := s.scanFile(root, rel)
		result.Scripts[rel] = script
		if script.Unreadable {
			result.UnreadableFiles = append(result.UnreadableFiles, rel)
		}
	}

	s.logger.Info("scan complete", map[string]interface{}{
		"scripts":    len(result.Scripts),
		"unreadable": len(result.UnreadableFiles),
	})

	return result, nil
}

func (s *Scanner) scanFile(root, rel string) *Script {
	script := &Script{Path: rel}

	content, err := readScript(paths.Join(root, rel), s.cfg.MaxFileSizeBytes)
	if err != nil {
		s.logger.Warn("unreadable script", map[string]interface{}{
			"script": rel,
			"error":  err.Error(),
		})
		script.Unreadable = true
		script.Calls = []string{}
		return script
	}

	script.Definitions = extractDefinitions(rel, content)
	script.Calls = s.extractCalls(content)

	// A definition-less script with non-blank content is invokable by
	// its filename: synthesize the implicit script-as-function record.
	if len(script.Definitions) == 0 && strings.TrimSpace(content) != "" {
		script.Definitions = []FunctionDefinition{{
			Name:   paths.Stem(rel),
			Script: rel,
			Kind:   KindImplicitScript,
		}}
	}

	return script
}
