// Package errors defines stable error codes for all matgraph failure modes.
// Queries surface these as structured results rather than crashing the
// process: the engine serves many independent queries over its lifetime.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InvalidProjectPath indicates the project path is missing or not a directory
	InvalidProjectPath ErrorCode = "INVALID_PROJECT_PATH"
	// ScriptNotFound indicates an entry/target/changed script absent from the scanned index
	ScriptNotFound ErrorCode = "SCRIPT_NOT_FOUND"
	// FunctionNotFound indicates a function name with no known definition
	FunctionNotFound ErrorCode = "FUNCTION_NOT_FOUND"
	// UnreadableFile indicates an I/O or decode failure on one script
	UnreadableFile ErrorCode = "UNREADABLE_FILE"
	// InvalidParameter indicates a malformed query parameter
	InvalidParameter ErrorCode = "INVALID_PARAMETER"
	// BudgetExceeded indicates path enumeration hit the configured cutoff
	BudgetExceeded ErrorCode = "BUDGET_EXCEEDED"
	// StorageError indicates the snapshot store failed
	StorageError ErrorCode = "STORAGE_ERROR"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixAction suggests a remediation for an error
type FixAction struct {
	Command     string `json:"command,omitempty"`
	Description string `json:"description,omitempty"`
}

// MatgraphError represents a matgraph error with code, message, and suggestions
type MatgraphError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new MatgraphError
func New(code ErrorCode, message string, cause error) *MatgraphError {
	return &MatgraphError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: suggestedFixes(code),
	}
}

// Error implements the error interface
func (e *MatgraphError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *MatgraphError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *MatgraphError) WithDetails(details interface{}) *MatgraphError {
	e.Details = details
	return e
}

// NewInvalidProjectPath creates an error for a missing or non-directory project path
func NewInvalidProjectPath(path string) *MatgraphError {
	return New(InvalidProjectPath, fmt.Sprintf("project path %q does not exist or is not a directory", path), nil).
		WithDetails(map[string]string{"projectPath": path})
}

// NewScriptNotFound creates an error for a script absent from the scanned index
func NewScriptNotFound(script string) *MatgraphError {
	return New(ScriptNotFound, fmt.Sprintf("script %q not found in project", script), nil).
		WithDetails(map[string]string{"script": script})
}

// NewInvalidParameter creates an error for a malformed query parameter
func NewInvalidParameter(param, reason string) *MatgraphError {
	return New(InvalidParameter, fmt.Sprintf("invalid parameter %s: %s", param, reason), nil)
}

// NewInternal wraps an unexpected failure, retaining the failing query's parameters
func NewInternal(query string, params interface{}, cause error) *MatgraphError {
	return New(InternalError, fmt.Sprintf("query %s failed unexpectedly", query), cause).
		WithDetails(map[string]interface{}{"query": query, "params": params})
}

// errorActions maps error codes to suggested fix actions
var errorActions = map[ErrorCode][]FixAction{
	InvalidProjectPath: {
		{
			Command:     "matgraph scan <project-path>",
			Description: "Pass the MATLAB project root directory as an existing path",
		},
	},
	ScriptNotFound: {
		{
			Command:     "matgraph scan <project-path>",
			Description: "List scanned scripts; identifiers are project-relative with forward slashes",
		},
	},
	BudgetExceeded: {
		{
			Command:     "matgraph scan --max-paths <n>",
			Description: "Raise the path enumeration cutoff in .matgraph/config.json (engine.maxPathsPerQuery)",
		},
	},
}

func suggestedFixes(code ErrorCode) []FixAction {
	return errorActions[code]
}

// CodeOf extracts the error code from an error chain, or InternalError.
func CodeOf(err error) ErrorCode {
	var me *MatgraphError
	if As(err, &me) {
		return me.Code
	}
	return InternalError
}

// As is a thin re-export so callers don't import both error packages.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}
