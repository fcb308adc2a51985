// ABOUTME: MCP tool handler implementations for the recall agent
// ABOUTME: Wraps the decision engine and session capture with tool-call plumbing
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/membridge/recall/internal/memory"
	"github.com/membridge/recall/internal/models"
	"github.com/membridge/recall/internal/session"
)

// Decider runs the confidence decision pipeline for a query.
type Decider interface {
	Decide(ctx context.Context, query string, p memory.Params) models.Decision
}

// Handlers contains the handler functions for the MCP tools
type Handlers struct {
	decider     Decider
	transcript  *session.Transcript
	checkpoints *session.Store
	params      memory.Params
}

// SearchLongTermMemory handles the search_long_term_memory tool
func (h *Handlers) SearchLongTermMemory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	decision := h.decider.Decide(ctx, query, h.params)
	slog.Debug("mcp memory search",
		"query", query, "outcome", decision.Outcome.String(), "max_score", decision.MaxScore)

	return mcp.NewToolResultText(formatDecision(decision)), nil
}

// StoreConversation handles the store_conversation tool
func (h *Handlers) StoreConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("message argument is required and must be a string"), nil
	}
	response := request.GetString("response", "")

	recorded := []models.Message{h.transcript.Record(models.KindHuman, message)}
	if response != "" {
		recorded = append(recorded, h.transcript.Record(models.KindAI, response))
	}

	if h.checkpoints != nil {
		for _, m := range recorded {
			if err := h.checkpoints.Append(ctx, h.transcript.ThreadID(), m); err != nil {
				slog.Warn("failed to checkpoint message", "id", m.ID, "error", err)
			}
		}
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Recorded %d message(s) in session %s (%d total).",
		len(recorded), h.transcript.ThreadID(), h.transcript.Len())), nil
}

// formatDecision renders a decision as tool output with its confidence trail.
func formatDecision(d models.Decision) string {
	switch d.Outcome {
	case models.OutcomeUseMemory:
		return d.Payload
	case models.OutcomeFallBack:
		return fmt.Sprintf(
			"Long-term memory is not confident enough for this query (max similarity %.4f): %s\nAnswer from another source.",
			d.MaxScore, d.Payload)
	default:
		return fmt.Sprintf("Long-term memory is unavailable: %s\nAnswer from another source.", d.Payload)
	}
}
