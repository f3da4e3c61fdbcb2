// Package envelope provides a standardized response wrapper for tool
// and CLI responses. Every response carries the same envelope with
// metadata about the underlying scan, truncation, timing, warnings and
// suggested next calls.
package envelope

import "time"

// CurrentSchemaVersion is the current envelope schema version.
const CurrentSchemaVersion = "1.0"

// ScanInfo identifies the scan snapshot a response was computed from.
type ScanInfo struct {
	ScanID          string    `json:"scanId"`
	ScannedAt       time.Time `json:"scannedAt"`
	ScriptCount     int       `json:"scriptCount"`
	EdgeCount       int       `json:"edgeCount"`
	UnreadableCount int       `json:"unreadableCount,omitempty"`
}

// Truncation describes result trimming.
type Truncation struct {
	IsTruncated bool   `json:"isTruncated"`
	Shown       int    `json:"shown,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Timing holds per-phase durations in milliseconds.
type Timing struct {
	ScanMs  int64 `json:"scanMs,omitempty"`
	QueryMs int64 `json:"queryMs,omitempty"`
}

// Meta holds response metadata.
type Meta struct {
	Scan       *ScanInfo   `json:"scan,omitempty"`
	Truncation *Truncation `json:"truncation,omitempty"`
	Timing     *Timing     `json:"timing,omitempty"`
}

// SuggestedCall represents a recommended follow-up tool call.
type SuggestedCall struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params,omitempty"`
	Reason string                 `json:"reason,omitempty"`
}

// Warning represents a non-fatal issue.
type Warning struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Response is the standard envelope for all tool responses.
type Response struct {
	SchemaVersion      string          `json:"schemaVersion"`
	Data               interface{}     `json:"data"`
	Meta               *Meta           `json:"meta,omitempty"`
	Warnings           []Warning       `json:"warnings,omitempty"`
	Error              *string         `json:"error,omitempty"`
	SuggestedNextCalls []SuggestedCall `json:"suggestedNextCalls,omitempty"`
}
