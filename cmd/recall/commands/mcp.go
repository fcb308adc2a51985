// ABOUTME: MCP server command exposing memory tools over stdio
// ABOUTME: Wires the decision engine and session capture into tool handlers
package commands

import (
	"log/slog"

	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcptools "github.com/membridge/recall/internal/mcp"
	"github.com/membridge/recall/internal/session"
)

// NewMCPCmd creates the mcp command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run as a Model Context Protocol server over stdio",
		Long: `Expose the memory pipeline as MCP tools:

  search_long_term_memory  - confidence-gated retrieval for a query
  store_conversation       - record messages in the current session`,
		RunE: runMCP,
	}

	return cmd
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.ensureIndex(cmd.Context()); err != nil {
		slog.Warn("could not ensure memory index", "error", err)
	}

	transcript := session.NewTranscript("mcp-" + uuid.NewString())

	server := mcpserver.NewMCPServer("recall", versionInfo.Version)
	mcptools.RegisterTools(server, a.engine, transcript, a.sessions, a.params())

	slog.Info("starting MCP server", "thread", transcript.ThreadID())
	return mcpserver.ServeStdio(server)
}
