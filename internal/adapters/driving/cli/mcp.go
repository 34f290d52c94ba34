package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jdrag/internal/adapters/driving/mcp"
	"github.com/custodia-labs/jdrag/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Tools:
  ask_job_description    answer a question from one job description
  ingest_file            ingest a local file
  list_job_descriptions  list ingested documents
  get_job_description    show one document

Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  jdrag mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  jdrag mcp serve --port 8081

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "jdrag": {
        "command": "/path/to/jdrag",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Query:    queryService,
		Document: documentService,
		Ingest:   ingestService,
	}

	server, err := mcp.NewServer(ports, mcp.WithLogger(logger.L()))
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(commandContext(cmd), addr)
	}

	return server.Run(commandContext(cmd))
}
