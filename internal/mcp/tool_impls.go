package mcp

import (
	"strconv"

	"matgraph/internal/envelope"
	"matgraph/internal/errors"
	"matgraph/internal/query"
)

func stringParam(params map[string]interface{}, key string) string {
	v, _ := params[key].(string)
	return v
}

func boolParam(params map[string]interface{}, key string) bool {
	v, _ := params[key].(bool)
	return v
}

func stringSliceParam(params map[string]interface{}, key string) ([]string, bool) {
	raw, ok := params[key].([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func requireString(params map[string]interface{}, key string) (string, error) {
	v := stringParam(params, key)
	if v == "" {
		return "", errors.NewInvalidParameter(key, "must be a non-empty string")
	}
	return v, nil
}

func scanEnvelope(meta query.ScanMeta) envelope.ScanInfo {
	return envelope.ScanInfo{
		ScanID:          meta.ScanID,
		ScannedAt:       meta.ScannedAt,
		ScriptCount:     meta.ScriptCount,
		EdgeCount:       meta.EdgeCount,
		UnreadableCount: meta.UnreadableCount,
	}
}

func (s *Server) toolScanProject(params map[string]interface{}) (*envelope.Response, error) {
	projectPath, err := requireString(params, "projectPath")
	if err != nil {
		return nil, err
	}

	summary, err := s.engine.Scan(projectPath, boolParam(params, "forceRescan"))
	if err != nil {
		return nil, err
	}

	b := envelope.New().Data(summary).Scan(scanEnvelope(summary.Meta))
	if n := len(summary.UnreadableFiles); n > 0 {
		b.Warn(string(errors.UnreadableFile), unreadableWarning(n))
	}
	b.Suggest("analyzeEntry", map[string]interface{}{
		"projectPath": projectPath,
	}, "trace the call structure from one of the roots")
	return b.Build(), nil
}

func (s *Server) toolAnalyzeEntry(params map[string]interface{}) (*envelope.Response, error) {
	projectPath, err := requireString(params, "projectPath")
	if err != nil {
		return nil, err
	}
	entry, err := requireString(params, "entryScript")
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Analyze(projectPath, entry, boolParam(params, "forceRescan"))
	if err != nil {
		return nil, err
	}

	b := envelope.New().Data(result).Scan(scanEnvelope(result.Meta))
	b.Timing(result.Meta.ScanMs, result.QueryMs)
	return b.Build(), nil
}

func (s *Server) toolGetCallPath(params map[string]interface{}) (*envelope.Response, error) {
	projectPath, err := requireString(params, "projectPath")
	if err != nil {
		return nil, err
	}
	from, err := requireString(params, "fromScript")
	if err != nil {
		return nil, err
	}
	to, err := requireString(params, "toScript")
	if err != nil {
		return nil, err
	}

	result, err := s.engine.PathBetween(projectPath, from, to, boolParam(params, "forceRescan"))
	if err != nil {
		return nil, err
	}

	b := envelope.New().Data(result).Scan(scanEnvelope(result.Meta))
	if !result.Found {
		b.Warn("NO_PATH", result.To+" is not reachable from "+result.From)
	}
	return b.Build(), nil
}

func (s *Server) toolGetPathsToLeaves(params map[string]interface{}) (*envelope.Response, error) {
	projectPath, err := requireString(params, "projectPath")
	if err != nil {
		return nil, err
	}
	from, err := requireString(params, "fromScript")
	if err != nil {
		return nil, err
	}

	result, err := s.engine.PathsToLeaves(projectPath, from, boolParam(params, "forceRescan"))
	if err != nil {
		return nil, err
	}

	b := envelope.New().Data(result).Scan(scanEnvelope(result.Meta))
	if result.Truncated {
		b.Truncated(len(result.Paths), "maxPathsPerQuery")
	}
	return b.Build(), nil
}

func (s *Server) toolAnalyzeImpact(params map[string]interface{}) (*envelope.Response, error) {
	projectPath, err := requireString(params, "projectPath")
	if err != nil {
		return nil, err
	}
	changed, ok := stringSliceParam(params, "changedScripts")
	if !ok || len(changed) == 0 {
		return nil, errors.NewInvalidParameter("changedScripts", "must be a non-empty array of strings")
	}
	roots, _ := stringSliceParam(params, "roots")

	result, err := s.engine.Impact(projectPath, changed, roots, boolParam(params, "forceRescan"))
	if err != nil {
		return nil, err
	}

	b := envelope.New().Data(result).Scan(scanEnvelope(result.Meta))
	for script, impact := range result.PerScript {
		if impact.Upstream.Truncated || impact.Downstream.Truncated {
			b.Truncated(impact.Upstream.Count()+impact.Downstream.Count(), "maxPathsPerQuery")
			b.Warn("TRUNCATED", "impact paths for "+script+" were cut off by the path budget")
		}
	}
	return b.Build(), nil
}

func (s *Server) toolResetProject(params map[string]interface{}) (*envelope.Response, error) {
	projectPath, err := requireString(params, "projectPath")
	if err != nil {
		return nil, err
	}

	if err := s.engine.Reset(projectPath); err != nil {
		return nil, err
	}

	return envelope.New().Data(map[string]interface{}{
		"projectPath": projectPath,
		"reset":       true,
	}).Build(), nil
}

func (s *Server) toolGetStatus(params map[string]interface{}) (*envelope.Response, error) {
	projectPath, err := requireString(params, "projectPath")
	if err != nil {
		return nil, err
	}

	status, err := s.engine.Status(projectPath)
	if err != nil {
		return nil, err
	}

	b := envelope.New().Data(status)
	if status.Meta != nil {
		b.Scan(scanEnvelope(*status.Meta))
	}
	if !status.Cached {
		b.Suggest("scanProject", map[string]interface{}{
			"projectPath": projectPath,
		}, "no cached scan; scan the project first")
	}
	return b.Build(), nil
}

// toolRecursiveAnalyze serves the combined entry/target contract. Both
// identifiers are optional; with neither the result is empty rather
// than an error.
func (s *Server) toolRecursiveAnalyze(params map[string]interface{}) (*envelope.Response, error) {
	projectPath, err := requireString(params, "project_path")
	if err != nil {
		return nil, err
	}
	entry := stringParam(params, "entry_script")
	target := stringParam(params, "target_script")

	result, err := s.engine.AnalyzeEntryToTarget(projectPath, entry, target, boolParam(params, "force_rescan"))
	if err != nil {
		return nil, err
	}

	b := envelope.New().Data(result)
	if !result.Empty {
		b.Scan(scanEnvelope(result.Meta))
	} else {
		b.Warn("EMPTY_QUERY", "neither entry_script nor target_script was provided")
	}
	if result.TargetPath != nil && !result.TargetPath.Found {
		b.Warn("NO_PATH", result.TargetPath.To+" is not reachable from "+result.TargetPath.From)
	}
	return b.Build(), nil
}

func unreadableWarning(n int) string {
	if n == 1 {
		return "1 file could not be read and was scanned as empty"
	}
	return strconv.Itoa(n) + " files could not be read and were scanned as empty"
}
