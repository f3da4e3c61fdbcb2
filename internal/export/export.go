// Package export renders a scanned call graph to interchange formats:
// json, jsonl (one record per line), yaml, and mermaid flowchart
// source. Output can be gzip-compressed for large projects.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"
)

// Format selects the output rendering.
type Format string

const (
	FormatJSON    Format = "json"
	FormatJSONL   Format = "jsonl"
	FormatYAML    Format = "yaml"
	FormatMermaid Format = "mermaid"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatJSON, FormatJSONL, FormatYAML, FormatMermaid:
		return Format(name), nil
	default:
		return "", fmt.Errorf("unknown export format %q (json, jsonl, yaml, mermaid)", name)
	}
}

// Graph is the exportable view of one scanned project.
type Graph struct {
	ProjectRoot string              `json:"projectRoot" yaml:"projectRoot"`
	ScanID      string              `json:"scanId" yaml:"scanId"`
	Scripts     []string            `json:"scripts" yaml:"scripts"`
	Adjacency   map[string][]string `json:"adjacency" yaml:"adjacency"`
	Roots       []string            `json:"roots" yaml:"roots"`
	Leaves      []string            `json:"leaves" yaml:"leaves"`
}

// EdgeCount returns the number of edges in the graph view.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, callees := range g.Adjacency {
		total += len(callees)
	}
	return total
}

// Write renders the graph to w in the given format.
func Write(w io.Writer, g *Graph, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	case FormatJSONL:
		return writeJSONL(w, g)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(g)
	case FormatMermaid:
		return writeMermaid(w, g)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteFile renders the graph to a file. A path ending in .gz, or
// compress=true, wraps the output in gzip.
func WriteFile(path string, g *Graph, format Format, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	var w io.Writer = f
	if compress || strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		w = gz
	}
	return Write(w, g, format)
}

// jsonl stream: one scan header, then one record per script and edge.
type jsonlRecord struct {
	Type    string   `json:"type"`
	ScanID  string   `json:"scanId,omitempty"`
	Root    string   `json:"projectRoot,omitempty"`
	Path    string   `json:"path,omitempty"`
	IsRoot  bool     `json:"isRoot,omitempty"`
	IsLeaf  bool     `json:"isLeaf,omitempty"`
	Caller  string   `json:"caller,omitempty"`
	Callee  string   `json:"callee,omitempty"`
	Scripts int      `json:"scripts,omitempty"`
	Edges   int      `json:"edges,omitempty"`
	Callees []string `json:"callees,omitempty"`
}

func writeJSONL(w io.Writer, g *Graph) error {
	enc := json.NewEncoder(w)

	if err := enc.Encode(jsonlRecord{
		Type:    "scan",
		ScanID:  g.ScanID,
		Root:    g.ProjectRoot,
		Scripts: len(g.Scripts),
		Edges:   g.EdgeCount(),
	}); err != nil {
		return err
	}

	roots := toSet(g.Roots)
	leaves := toSet(g.Leaves)
	for _, script := range g.Scripts {
		if err := enc.Encode(jsonlRecord{
			Type:    "script",
			Path:    script,
			IsRoot:  roots[script],
			IsLeaf:  leaves[script],
			Callees: g.Adjacency[script],
		}); err != nil {
			return err
		}
	}

	for _, caller := range sortedKeys(g.Adjacency) {
		for _, callee := range g.Adjacency[caller] {
			if err := enc.Encode(jsonlRecord{
				Type:   "edge",
				Caller: caller,
				Callee: callee,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeMermaid(w io.Writer, g *Graph) error {
	if _, err := fmt.Fprintln(w, "graph LR"); err != nil {
		return err
	}

	for _, script := range g.Scripts {
		if _, err := fmt.Fprintf(w, "    %s[\"%s\"]\n", safeID(script), script); err != nil {
			return err
		}
	}

	for _, caller := range sortedKeys(g.Adjacency) {
		for _, callee := range g.Adjacency[caller] {
			if _, err := fmt.Fprintf(w, "    %s --> %s\n", safeID(caller), safeID(callee)); err != nil {
				return err
			}
		}
	}
	return nil
}

// safeID maps a script path onto Mermaid's node ID grammar.
func safeID(id string) string {
	r := strings.NewReplacer(".", "_", "/", "_", "-", "_", "\\", "_", ":", "_", "@", "_", " ", "_")
	return "n_" + r.Replace(id)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
