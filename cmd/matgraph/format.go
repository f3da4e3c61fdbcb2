package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"matgraph/internal/query"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *query.ScanSummary:
		return formatScanHuman(v)
	case *query.AnalyzeResult:
		return formatAnalyzeHuman(v)
	case *query.PathResult:
		return formatPathHuman(v), nil
	case *query.LeafPathsResult:
		return formatLeavesHuman(v), nil
	case *query.ImpactResult:
		return formatImpactHuman(v), nil
	case *query.StatusResult:
		return formatStatusHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func writeMetaHeader(b *strings.Builder, meta query.ScanMeta) {
	b.WriteString(fmt.Sprintf("Scan %s (%s)\n", meta.ScanID, meta.ScannedAt.Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("  Scripts: %d  Edges: %d  Unreadable: %d  (%dms)\n\n",
		meta.ScriptCount, meta.EdgeCount, meta.UnreadableCount, meta.ScanMs))
}

func formatScanHuman(s *query.ScanSummary) (string, error) {
	var b strings.Builder

	writeMetaHeader(&b, s.Meta)

	b.WriteString(fmt.Sprintf("Roots (%d):\n", len(s.Roots)))
	for _, r := range s.Roots {
		b.WriteString("  " + r + "\n")
	}
	b.WriteString(fmt.Sprintf("Leaves (%d):\n", len(s.Leaves)))
	for _, l := range s.Leaves {
		b.WriteString("  " + l + "\n")
	}

	callers := make([]string, 0, len(s.Adjacency))
	for caller := range s.Adjacency {
		callers = append(callers, caller)
	}
	sort.Strings(callers)

	b.WriteString("\nCall edges:\n")
	for _, caller := range callers {
		for _, callee := range s.Adjacency[caller] {
			b.WriteString(fmt.Sprintf("  %s -> %s\n", caller, callee))
		}
	}

	if len(s.UnreadableFiles) > 0 {
		b.WriteString(fmt.Sprintf("\nUnreadable files (%d):\n", len(s.UnreadableFiles)))
		for _, f := range s.UnreadableFiles {
			b.WriteString("  " + f + "\n")
		}
	}
	return b.String(), nil
}

func formatAnalyzeHuman(a *query.AnalyzeResult) (string, error) {
	var b strings.Builder

	writeMetaHeader(&b, a.Meta)
	b.WriteString(fmt.Sprintf("Recursive descent from %s\n", a.Entry))
	b.WriteString(fmt.Sprintf("  Reached: %d  Max depth: %d  Visits: %d  Cycles cut: %d\n\n",
		a.Report.NodesReached, a.Report.MaxDepth, a.Report.TotalVisits, a.Report.CycleEvents))

	for _, script := range a.Report.ReachedScripts() {
		node := a.Report.Nodes[script]
		marker := ""
		if node.IsLeaf {
			marker = "  [leaf]"
		}
		b.WriteString(fmt.Sprintf("  %s%s depth=%d visits=%d\n",
			strings.Repeat("  ", node.Depth)+script, marker, node.Depth, node.Visits))
	}
	return b.String(), nil
}

func formatPathHuman(p *query.PathResult) string {
	var b strings.Builder

	writeMetaHeader(&b, p.Meta)
	if !p.Found {
		b.WriteString(fmt.Sprintf("No call path from %s to %s\n", p.From, p.To))
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Shortest call path (%d hops):\n", len(p.Path)-1))
	b.WriteString("  " + strings.Join(p.Path, " -> ") + "\n")
	return b.String()
}

func formatLeavesHuman(l *query.LeafPathsResult) string {
	var b strings.Builder

	writeMetaHeader(&b, l.Meta)
	b.WriteString(fmt.Sprintf("Paths from %s to leaves: %d\n", l.From, len(l.Paths)))
	if l.Truncated {
		b.WriteString("  (truncated by maxPathsPerQuery)\n")
	}
	for _, path := range l.Paths {
		b.WriteString("  " + strings.Join(path, " -> ") + "\n")
	}
	return b.String()
}

func formatImpactHuman(im *query.ImpactResult) string {
	var b strings.Builder

	writeMetaHeader(&b, im.Meta)
	b.WriteString("Roots: " + strings.Join(im.Roots, ", ") + "\n\n")

	scripts := make([]string, 0, len(im.PerScript))
	for script := range im.PerScript {
		scripts = append(scripts, script)
	}
	sort.Strings(scripts)

	for _, script := range scripts {
		impact := im.PerScript[script]
		b.WriteString(script + "\n")
		b.WriteString(fmt.Sprintf("  Upstream (%d):\n", len(impact.Upstream.Paths)))
		for _, path := range impact.Upstream.Paths {
			b.WriteString("    " + strings.Join(path, " -> ") + "\n")
		}
		b.WriteString(fmt.Sprintf("  Downstream (%d):\n", len(impact.Downstream.Paths)))
		for _, path := range impact.Downstream.Paths {
			b.WriteString("    " + strings.Join(path, " -> ") + "\n")
		}
	}
	return b.String()
}

func formatStatusHuman(s *query.StatusResult) string {
	var b strings.Builder

	b.WriteString("Project: " + s.ProjectRoot + "\n")
	b.WriteString(fmt.Sprintf("  Cached: %v  Persisted: %v\n", s.Cached, s.Persisted))
	if s.Meta != nil {
		b.WriteString(fmt.Sprintf("  Scan %s: %d scripts, %d edges\n",
			s.Meta.ScanID, s.Meta.ScriptCount, s.Meta.EdgeCount))
	}
	if s.LastScan != nil {
		b.WriteString(fmt.Sprintf("  Last persisted scan %s at %s: %d scripts, %d edges\n",
			s.LastScan.ScanID, s.LastScan.ScannedAt.Format(time.RFC3339),
			s.LastScan.ScriptCount, s.LastScan.EdgeCount))
	}
	if len(s.Entrypoints) > 0 {
		b.WriteString("  Declared entrypoints: " + strings.Join(s.Entrypoints, ", ") + "\n")
	}
	if len(s.Roots) > 0 {
		b.WriteString("  Roots: " + strings.Join(s.Roots, ", ") + "\n")
	}
	if !s.Cached && s.LastScan == nil {
		b.WriteString("  Not scanned yet. Run: matgraph scan\n")
	}
	return b.String()
}
