// ABOUTME: Two-stage context reducer: extractive pruning then summarization
// ABOUTME: Each stage degrades to its input on failure, never aborts
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const summarizePromptTemplate = `You are an expert at summarizing conversation context.

Your task: Analyze the provided conversation context and produce a condensed summary that fully answers or supports the user's specific question.

The summary must:
1. Preserve every fact, detail, and information that directly relates to the question
2. Eliminate redundancy and duplicate information
3. Maintain chronological flow when relevant
4. Focus on information that helps answer: "%s"

Context to summarize:
%s

Provide a concise summary that preserves all relevant information:`

// Reducer condenses retrieved context in two stages: optional extractive
// pruning via a reranker, then mandatory abstractive summarization via the
// language model.
type Reducer struct {
	pruner    Pruner
	completer Completer
}

// NewReducer creates a Reducer. pruner may be nil, which skips the
// extractive stage.
func NewReducer(pruner Pruner, completer Completer) *Reducer {
	return &Reducer{pruner: pruner, completer: completer}
}

// Reduce returns a condensed version of text focused on query. The result
// is never empty for non-empty input: a failing stage falls back to its
// own input.
func (r *Reducer) Reduce(ctx context.Context, query, text string, pruningThreshold float64) string {
	pruned := text
	if r.pruner != nil {
		out, err := r.pruner.Prune(ctx, query, text, pruningThreshold)
		switch {
		case err != nil:
			slog.Warn("context pruning failed, keeping original context", "error", err)
		case strings.TrimSpace(out) == "":
			slog.Warn("context pruning returned nothing, keeping original context")
		default:
			pruned = out
			slog.Debug("pruning stage complete",
				"chars", len(pruned), "original_chars", len(text), "threshold", pruningThreshold)
		}
	}

	prompt := fmt.Sprintf(summarizePromptTemplate, query, pruned)
	summary, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		slog.Warn("context summarization failed, keeping pruned context", "error", err)
		return pruned
	}
	if strings.TrimSpace(summary) == "" {
		slog.Warn("context summarization returned nothing, keeping pruned context")
		return pruned
	}

	slog.Debug("summarization stage complete", "chars", len(summary), "input_chars", len(pruned))
	return summary
}
