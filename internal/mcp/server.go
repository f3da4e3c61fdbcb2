// Package mcp serves the analyzer over the Model Context Protocol:
// JSON-RPC 2.0, one message per line on stdio. The server is a thin
// layer over the query engine; every tool takes a projectPath and an
// optional forceRescan, mirroring the engine's per-project cache.
package mcp

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"matgraph/internal/logging"
	"matgraph/internal/query"
)

// Server represents the MCP server
type Server struct {
	stdin   io.Reader
	stdout  io.Writer
	scanner *bufio.Scanner
	logger  *logging.Logger
	version string
	engine  *query.Engine
	tools   map[string]ToolHandler
}

// NewServer creates an MCP server over the given query engine.
func NewServer(version string, engine *query.Engine, logger *logging.Logger) *Server {
	server := &Server{
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		logger:  logger.With("mcp"),
		version: version,
		engine:  engine,
		tools:   make(map[string]ToolHandler),
	}
	server.RegisterTools()
	return server
}

// Start starts the MCP server and begins processing messages
func (s *Server) Start() error {
	s.logger.Info("MCP server starting", map[string]interface{}{
		"version": s.version,
	})

	for {
		msg, err := s.readMessage()
		if err != nil {
			if err == io.EOF {
				s.logger.Info("MCP server shutting down (EOF)", nil)
				return nil
			}
			s.logger.Error("error reading message", map[string]interface{}{
				"error": err.Error(),
			})
			if msg != nil && msg.Id != nil {
				_ = s.writeError(msg.Id, ParseError, fmt.Sprintf("Failed to parse message: %v", err))
			}
			continue
		}

		response := s.handleMessage(msg)

		// Notifications don't generate responses
		if response != nil {
			if err := s.writeMessage(response); err != nil {
				s.logger.Error("error writing response", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}

// SetStdin sets the input stream (for testing)
func (s *Server) SetStdin(r io.Reader) {
	s.stdin = r
	s.scanner = nil // recreate on next read
}

// SetStdout sets the output stream (for testing)
func (s *Server) SetStdout(w io.Writer) {
	s.stdout = w
}
