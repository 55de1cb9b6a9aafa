package cli

import (
	"errors"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/minirag/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: heredoc.Doc(`
		Start the Model Context Protocol server for AI assistant integration.

		The server holds the collection for as long as it runs. Documents
		named with --docs are loaded at start; --watch keeps them in step
		with the files on disk. Assistants can add more with the
		process_document tool.

		By default the server speaks JSON-RPC over stdio. Use --port to
		serve over HTTP instead, for example to test with MCP Inspector.
	`),
	Example: heredoc.Doc(`
		# Stdio mode
		$ minirag mcp serve -d ~/notes --watch

		# HTTP mode
		$ minirag mcp serve -d ~/notes --port 8080

		# Assistant configuration
		{
		  "mcpServers": {
		    "minirag": {
		      "command": "/path/to/minirag",
		      "args": ["mcp", "serve", "-d", "/path/to/notes"]
		    }
		  }
		}
	`),
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().BoolP("watch", "w", false, "re-ingest --docs paths when files change")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if searchService == nil || documentService == nil {
		return errors.New("search service not configured")
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("getting watch flag: %w", err)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Search:     searchService,
		Document:   documentService,
		Evaluation: evaluationService,
	}, mcp.WithVersion(version))
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if watch {
		stop, err := startWatch(ctx, cmd, docPaths)
		if err != nil {
			return err
		}
		defer stop()
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		// stdout carries the protocol only in stdio mode.
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
