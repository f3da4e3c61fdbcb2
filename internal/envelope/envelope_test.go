package envelope

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestBuilderDefaults(t *testing.T) {
	resp := New().Data("payload").Build()

	if resp.SchemaVersion != CurrentSchemaVersion {
		t.Errorf("SchemaVersion = %q", resp.SchemaVersion)
	}
	if resp.Data != "payload" {
		t.Errorf("Data = %v", resp.Data)
	}
	if resp.Meta != nil || resp.Error != nil || len(resp.Warnings) != 0 {
		t.Error("unused sections must stay empty")
	}
}

func TestBuilderMeta(t *testing.T) {
	scanned := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	resp := New().
		Data(map[string]int{"n": 1}).
		Scan(ScanInfo{ScanID: "abc", ScannedAt: scanned, ScriptCount: 3, EdgeCount: 2}).
		Truncated(10, "maxPathsPerQuery").
		Timing(120, 4).
		Warn("UNREADABLE_FILE", "1 file could not be read").
		Suggest("getCallPath", map[string]interface{}{"from": "main.m"}, "trace a specific route").
		Build()

	if resp.Meta.Scan.ScanID != "abc" || resp.Meta.Scan.ScriptCount != 3 {
		t.Errorf("scan meta = %+v", resp.Meta.Scan)
	}
	if !resp.Meta.Truncation.IsTruncated || resp.Meta.Truncation.Shown != 10 {
		t.Errorf("truncation = %+v", resp.Meta.Truncation)
	}
	if resp.Meta.Timing.ScanMs != 120 || resp.Meta.Timing.QueryMs != 4 {
		t.Errorf("timing = %+v", resp.Meta.Timing)
	}
	if len(resp.Warnings) != 1 || resp.Warnings[0].Code != "UNREADABLE_FILE" {
		t.Errorf("warnings = %+v", resp.Warnings)
	}
	if len(resp.SuggestedNextCalls) != 1 || resp.SuggestedNextCalls[0].Tool != "getCallPath" {
		t.Errorf("suggestions = %+v", resp.SuggestedNextCalls)
	}
}

func TestEnvelopeJSONShape(t *testing.T) {
	resp := New().Data(map[string]string{"k": "v"}).Build()

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	s := string(raw)

	if !strings.Contains(s, `"schemaVersion":"1.0"`) {
		t.Errorf("missing schema version: %s", s)
	}
	// Optional sections are omitted entirely, not serialized as null.
	for _, absent := range []string{"meta", "warnings", "error", "suggestedNextCalls"} {
		if strings.Contains(s, `"`+absent+`"`) {
			t.Errorf("empty %s should be omitted: %s", absent, s)
		}
	}
}

func TestErrorEnvelope(t *testing.T) {
	resp := New().Error("SCRIPT_NOT_FOUND: ghost.m").Build()

	if resp.Error == nil || *resp.Error != "SCRIPT_NOT_FOUND: ghost.m" {
		t.Errorf("Error = %v", resp.Error)
	}
}
