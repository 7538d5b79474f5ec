package mcp

import (
	"github.com/Mike-Gough/raml-enforcer/internal/domain"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// NewLintMCPServer creates an MCP server exposing the linter as a tool. base
// holds the options each call starts from; tool arguments override them.
func NewLintMCPServer(version string, base domain.Options, log *logrus.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"raml-enforcer",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, base, log)
	registerResources(s, base)

	return s
}
