package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Mike-Gough/raml-enforcer/internal/adapters/outbound/parser"
	"github.com/Mike-Gough/raml-enforcer/internal/adapters/outbound/schemas"
	"github.com/Mike-Gough/raml-enforcer/internal/application"
	"github.com/Mike-Gough/raml-enforcer/internal/domain"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

const lintTool = "raml_enforcer_lint"

func registerTools(s *server.MCPServer, base domain.Options, log *logrus.Logger) {
	s.AddTool(
		mcplib.NewTool(lintTool,
			mcplib.WithDescription("Lint a RAML or OpenAPI contract and return its issues as JSON"),
			mcplib.WithString("file",
				mcplib.Required(),
				mcplib.Description("Path of the contract file to lint"),
			),
			mcplib.WithBoolean("throw_on_warnings",
				mcplib.Description("Fail the verdict when warnings are found"),
			),
			mcplib.WithBoolean("report_includes",
				mcplib.Description("Report issues located in included files"),
			),
			mcplib.WithBoolean("export_schemas",
				mcplib.Description("Write payload schemas to a schemas/ directory next to the file"),
			),
		),
		handleLint(base, log),
	)
}

func handleLint(base domain.Options, log *logrus.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		file, err := request.RequireString("file")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		args := request.GetArguments()
		opts := base
		if v, ok := args["throw_on_warnings"].(bool); ok {
			opts.ThrowOnWarnings = v
		}
		if v, ok := args["report_includes"].(bool); ok {
			opts.ReportIncludes = v
		}

		var writer domain.SchemaWriter
		if export, _ := args["export_schemas"].(bool); export {
			writer = schemas.NewOS()
		}

		svc := application.NewLintService(parser.New(), writer, log)
		result, err := svc.Run(ctx, []string{file}, opts, nil)
		if err != nil {
			return errorResult(fmt.Sprintf("lint failed: %v", err)), nil
		}
		return jsonResult(result)
	}
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
