package mcp

import "matgraph/internal/envelope"

// Tool represents an analyzer tool exposed via MCP
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolHandler is a function that handles a tool call and returns an
// envelope response.
type ToolHandler func(params map[string]interface{}) (*envelope.Response, error)

func projectPathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the MATLAB project directory",
	}
}

func forceRescanProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"default":     false,
		"description": "Drop the cached scan and rescan the project before answering",
	}
}

func scriptProperty(role string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": role + " as a project-relative path with forward slashes (e.g. lib/helper.m)",
	}
}

// GetToolDefinitions returns all tool definitions
func (s *Server) GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "scanProject",
			Description: "Scan a MATLAB project tree and return the script/function/call index plus roots and leaves",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"projectPath": projectPathProperty(),
					"forceRescan": forceRescanProperty(),
				},
				"required": []string{"projectPath"},
			},
		},
		{
			Name:        "analyzeEntry",
			Description: "Run a full recursive descent from an entry script: per-script depth, visit counts, call paths and cycle events",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"projectPath": projectPathProperty(),
					"entryScript": scriptProperty("Entry script"),
					"forceRescan": forceRescanProperty(),
				},
				"required": []string{"projectPath", "entryScript"},
			},
		},
		{
			Name:        "getCallPath",
			Description: "Find the shortest call path between two scripts; reports not-found when the target is unreachable",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"projectPath": projectPathProperty(),
					"fromScript":  scriptProperty("Source script"),
					"toScript":    scriptProperty("Target script"),
					"forceRescan": forceRescanProperty(),
				},
				"required": []string{"projectPath", "fromScript", "toScript"},
			},
		},
		{
			Name:        "getPathsToLeaves",
			Description: "Enumerate every simple call path from a script down to the scripts that call nothing else",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"projectPath": projectPathProperty(),
					"fromScript":  scriptProperty("Start script"),
					"forceRescan": forceRescanProperty(),
				},
				"required": []string{"projectPath", "fromScript"},
			},
		},
		{
			Name:        "analyzeImpact",
			Description: "For a set of changed scripts, compute who can reach them (upstream from roots or declared entrypoints) and what they can affect (downstream to leaves)",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"projectPath": projectPathProperty(),
					"changedScripts": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Changed scripts as project-relative paths",
					},
					"roots": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Optional upstream roots; defaults to declared entrypoints or auto-detected roots",
					},
					"forceRescan": forceRescanProperty(),
				},
				"required": []string{"projectPath", "changedScripts"},
			},
		},
		{
			Name:        "resetProject",
			Description: "Drop the cached and persisted scan for a project so the next query rescans from disk",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"projectPath": projectPathProperty(),
				},
				"required": []string{"projectPath"},
			},
		},
		{
			Name:        "getStatus",
			Description: "Report cache and persistence state for a project without triggering a scan",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"projectPath": projectPathProperty(),
				},
				"required": []string{"projectPath"},
			},
		},
		{
			Name:        "matlab_recursive_analyze",
			Description: "Combined analysis: with entry and target, traces the call route between them; with only one of the two, analyzes it as the entry; with neither, returns an empty result",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"project_path": projectPathProperty(),
					"entry_script": scriptProperty("Entry script"),
					"target_script": map[string]interface{}{
						"type":        "string",
						"description": "Target script; when set without entry_script it is analyzed as its own entry",
					},
					"force_rescan": forceRescanProperty(),
				},
				"required": []string{"project_path"},
			},
		},
	}
}

// RegisterTools wires every tool handler into the dispatch table.
func (s *Server) RegisterTools() {
	s.tools["scanProject"] = s.toolScanProject
	s.tools["analyzeEntry"] = s.toolAnalyzeEntry
	s.tools["getCallPath"] = s.toolGetCallPath
	s.tools["getPathsToLeaves"] = s.toolGetPathsToLeaves
	s.tools["analyzeImpact"] = s.toolAnalyzeImpact
	s.tools["resetProject"] = s.toolResetProject
	s.tools["getStatus"] = s.toolGetStatus
	s.tools["matlab_recursive_analyze"] = s.toolRecursiveAnalyze
}
