// ABOUTME: MCP tool definitions and registration for the recall agent
// ABOUTME: Exposes memory search and conversation capture over stdio
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/membridge/recall/internal/memory"
	"github.com/membridge/recall/internal/session"
)

// RegisterTools registers the memory tools with the server
func RegisterTools(server *mcpserver.MCPServer, decider Decider, transcript *session.Transcript, checkpoints *session.Store, params memory.Params) *Handlers {
	handlers := &Handlers{
		decider:     decider,
		transcript:  transcript,
		checkpoints: checkpoints,
		params:      params,
	}

	// 1. search_long_term_memory - confidence-gated retrieval
	server.AddTool(mcp.Tool{
		Name: "search_long_term_memory",
		Description: "Search long-term memory for previous conversations and context. " +
			"Use this tool FIRST when you need to recall information from past conversations, " +
			"such as user names, preferences, or previous topics discussed. " +
			"Retrieved context is pruned, summarized, and relevance-checked; the result says " +
			"whether memory can be trusted or the question needs another source.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The question to answer from past conversations",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchLongTermMemory)

	// 2. store_conversation - capture an exchange into the active session
	server.AddTool(mcp.Tool{
		Name: "store_conversation",
		Description: "Record one conversation exchange (user message and optional agent response) " +
			"in the active session so it can be indexed to long-term memory later.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"message": map[string]interface{}{
					"type":        "string",
					"description": "User message to record",
				},
				"response": map[string]interface{}{
					"type":        "string",
					"description": "Optional agent response to record alongside the message",
				},
			},
			Required: []string{"message"},
		},
	}, handlers.StoreConversation)

	return handlers
}
