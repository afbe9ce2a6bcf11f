package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clusterlink/internal/adapters/driving/mcp"
	"github.com/custodia-labs/clusterlink/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can rebuild
proposals, check link budgets, draft link text and suggest keywords.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Prompt templates in ~/.clusterlink/prompts are reloaded when they change
while the server runs.

Examples:
  # Stdio mode (default)
  clusterlink mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  clusterlink mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "clusterlink": {
        "command": "/path/to/clusterlink",
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

	server, err := mcp.NewServer(&mcp.Ports{
		Proposals: proposalService,
		Links:     linkService,
		Keywords:  keywordService,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()
	startPromptWatcher(ctx)

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

// startPromptWatcher reloads prompt templates in the background until ctx ends.
func startPromptWatcher(ctx context.Context) {
	if promptWatcher == nil {
		return
	}
	go func() {
		if err := promptWatcher.Watch(ctx, nil); err != nil && !errors.Is(err, context.Canceled) {
			// prompts still load from disk on the next cache miss
			logger.Warn("prompt watcher stopped: %v", err)
		}
	}()
}
