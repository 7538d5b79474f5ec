package cli

import (
	"fmt"

	mcpadapter "github.com/Mike-Gough/raml-enforcer/internal/adapters/inbound/mcp"
	"github.com/Mike-Gough/raml-enforcer/internal/adapters/outbound/config"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the raml-enforcer MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd())
	return cmd
}

func newMCPServeCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start raml-enforcer MCP server (stdio)",
		Long:  "Start the raml-enforcer MCP server using stdio transport. This lets AI coding assistants lint API contracts while editing them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := config.New().Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			// stdout carries the protocol; logs stay on stderr.
			s := mcpadapter.NewLintMCPServer(version, opts, newLogger(cmd.ErrOrStderr(), verbose))
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultFile, "Path of the config file")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Log debug output to stderr")

	return cmd
}
