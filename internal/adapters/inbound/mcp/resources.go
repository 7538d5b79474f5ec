package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Mike-Gough/raml-enforcer/internal/domain"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const optionsURI = "raml-enforcer://options"

func registerResources(s *server.MCPServer, base domain.Options) {
	s.AddResource(
		mcplib.NewResource(
			optionsURI,
			"Lint Options",
			mcplib.WithResourceDescription("Options each lint call starts from"),
			mcplib.WithMIMEType("application/json"),
		),
		handleOptionsResource(base),
	)
}

func handleOptionsResource(base domain.Options) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		data, err := json.MarshalIndent(base, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling options: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      optionsURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
