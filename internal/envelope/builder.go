package envelope

// Builder constructs Response envelopes using a fluent API.
type Builder struct {
	resp *Response
}

// New creates a new envelope builder.
func New() *Builder {
	return &Builder{
		resp: &Response{
			SchemaVersion: CurrentSchemaVersion,
		},
	}
}

// Data sets the tool-specific payload.
func (b *Builder) Data(data interface{}) *Builder {
	b.resp.Data = data
	return b
}

func (b *Builder) meta() *Meta {
	if b.resp.Meta == nil {
		b.resp.Meta = &Meta{}
	}
	return b.resp.Meta
}

// Scan records the scan snapshot the response was computed from.
func (b *Builder) Scan(info ScanInfo) *Builder {
	b.meta().Scan = &info
	return b
}

// Truncated marks the response as trimmed by a budget.
func (b *Builder) Truncated(shown int, reason string) *Builder {
	b.meta().Truncation = &Truncation{
		IsTruncated: true,
		Shown:       shown,
		Reason:      reason,
	}
	return b
}

// Timing records per-phase durations.
func (b *Builder) Timing(scanMs, queryMs int64) *Builder {
	b.meta().Timing = &Timing{ScanMs: scanMs, QueryMs: queryMs}
	return b
}

// Warn appends a non-fatal warning.
func (b *Builder) Warn(code, message string) *Builder {
	b.resp.Warnings = append(b.resp.Warnings, Warning{Code: code, Message: message})
	return b
}

// Error sets the envelope error string.
func (b *Builder) Error(msg string) *Builder {
	b.resp.Error = &msg
	return b
}

// Suggest appends a recommended follow-up call.
func (b *Builder) Suggest(tool string, params map[string]interface{}, reason string) *Builder {
	b.resp.SuggestedNextCalls = append(b.resp.SuggestedNextCalls, SuggestedCall{
		Tool:   tool,
		Params: params,
		Reason: reason,
	})
	return b
}

// Build returns the completed response.
func (b *Builder) Build() *Response {
	return b.resp
}
