package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"
)

func sampleGraph() *Graph {
	return &Graph{
		ProjectRoot: "/proj",
		ScanID:      "scan-1",
		Scripts:     []string{"helper.m", "main.m", "mid.m"},
		Adjacency: map[string][]string{
			"main.m": {"mid.m"},
			"mid.m":  {"helper.m"},
		},
		Roots:  []string{"main.m"},
		Leaves: []string{"helper.m"},
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"json", "jsonl", "yaml", "mermaid"} {
		if _, err := ParseFormat(name); err != nil {
			t.Errorf("ParseFormat(%q): %v", name, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("unknown format must be rejected")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleGraph(), FormatJSON); err != nil {
		t.Fatal(err)
	}

	var decoded Graph
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if decoded.ScanID != "scan-1" || len(decoded.Scripts) != 3 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.EdgeCount() != 2 {
		t.Errorf("EdgeCount = %d, want 2", decoded.EdgeCount())
	}
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleGraph(), FormatJSONL); err != nil {
		t.Fatal(err)
	}

	// 1 scan header + 3 scripts + 2 edges
	var types []string
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var rec map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("line %q: %v", scanner.Text(), err)
		}
		types = append(types, rec["type"].(string))
	}
	want := []string{"scan", "script", "script", "script", "edge", "edge"}
	if len(types) != len(want) {
		t.Fatalf("got %d records %v, want %v", len(types), types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("record %d type = %s, want %s", i, types[i], want[i])
		}
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleGraph(), FormatYAML); err != nil {
		t.Fatal(err)
	}

	var decoded Graph
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid yaml output: %v", err)
	}
	if decoded.ProjectRoot != "/proj" || len(decoded.Adjacency) != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteMermaid(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleGraph(), FormatMermaid); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "graph LR\n") {
		t.Errorf("missing header: %q", out)
	}
	for _, want := range []string{
		`n_main_m["main.m"]`,
		"n_main_m --> n_mid_m",
		"n_mid_m --> n_helper_m",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteFileGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json.gz")
	if err := WriteFile(path, sampleGraph(), FormatJSON, false); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("output is not gzip: %v", err)
	}
	defer gz.Close()

	var decoded Graph
	if err := json.NewDecoder(gz).Decode(&decoded); err != nil {
		t.Fatalf("decompressed content invalid: %v", err)
	}
	if decoded.ScanID != "scan-1" {
		t.Errorf("ScanID = %s", decoded.ScanID)
	}
}

func TestWriteFilePlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteFile(path, sampleGraph(), FormatJSON, false); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Graph
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("plain output should not be compressed: %v", err)
	}
}
