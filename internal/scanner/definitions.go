package scanner

import (
	"regexp"
	"strings"
)

// Declaration forms recognized, case-insensitively, one per physical line:
//
//	function [out1,out2] = name(args)
//	function out = name(args)
//	function name(args)
//	function name
//
// This is a line heuristic standing in for a grammar; nested and
// anonymous functions are out of scope.
var (
	defWithOutputs = regexp.MustCompile(`(?i)^\s*function\s+(?:\[[^\]]*\]|\w+)\s*=\s*(\w+)(?:\s*\([^)]*\))?\s*$`)
	defPlain       = regexp.MustCompile(`(?i)^\s*function\s+(\w+)(?:\s*\([^)]*\))?\s*$`)
)

// extractDefinitions scans content line by line for function
// declarations. Captured names matching the keywords `function` or
// `end` are rejected.
func extractDefinitions(script, content string) []FunctionDefinition {
	var defs []FunctionDefinition

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		name := matchDefinition(line)
		if name == "" {
			continue
		}
		lower := strings.ToLower(name)
		if lower == "function" || lower == "end" {
			continue
		}
		defs = append(defs, FunctionDefinition{
			Name:   name,
			Script: script,
			Line:   i + 1,
			Raw:    strings.TrimRight(line, "\r"),
			Kind:   KindExplicit,
		})
	}

	return defs
}

func matchDefinition(line string) string {
	if m := defWithOutputs.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	if m := defPlain.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}
