package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"matgraph/internal/export"
	"matgraph/internal/query"
)

var (
	exportFormat string
	exportOutput string
	exportGzip   bool
	exportForce  bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the call graph to an interchange format",
	Long: `Export the scanned call graph for use by other tools.

Formats:
  json     One document with scripts, adjacency, roots and leaves
  jsonl    One record per line: scan header, scripts, edges
  yaml     Same document as json, rendered as YAML
  mermaid  Mermaid flowchart source for docs and PRs

Examples:
  matgraph export --format=mermaid
  matgraph export --format=jsonl --output=graph.jsonl
  matgraph export --format=json --output=graph.json.gz`,
	Run: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format (json, jsonl, yaml, mermaid)")
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "Output file (default: stdout)")
	exportCmd.Flags().BoolVar(&exportGzip, "gzip", false, "Compress output with gzip")
	exportCmd.Flags().BoolVar(&exportForce, "force", false, "Rescan before exporting")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	logger := newLogger("json")

	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	projectRoot := mustGetProjectRoot()
	engine := mustGetEngine(projectRoot, logger)

	summary, err := engine.Scan(projectRoot, exportForce)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning project: %v\n", err)
		os.Exit(1)
	}

	graph := exportGraph(projectRoot, summary)

	if exportOutput == "" {
		if err := export.Write(os.Stdout, graph, format); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing export: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := export.WriteFile(exportOutput, graph, format, exportGzip); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing export: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Export written", map[string]interface{}{
		"path":    exportOutput,
		"format":  string(format),
		"scripts": len(graph.Scripts),
		"edges":   graph.EdgeCount(),
	})
}

// exportGraph flattens a scan summary into the exportable view.
func exportGraph(projectRoot string, s *query.ScanSummary) *export.Graph {
	scripts := make([]string, 0, len(s.ScriptToCalls))
	for script := range s.ScriptToCalls {
		scripts = append(scripts, script)
	}
	sort.Strings(scripts)

	return &export.Graph{
		ProjectRoot: projectRoot,
		ScanID:      s.Meta.ScanID,
		Scripts:     scripts,
		Adjacency:   s.Adjacency,
		Roots:       s.Roots,
		Leaves:      s.Leaves,
	}
}
