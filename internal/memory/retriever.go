// ABOUTME: Candidate retriever for the decision pipeline
// ABOUTME: Embeds the query, runs kNN search, and shapes hits into documents
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/membridge/recall/internal/models"
)

// Retriever issues vector searches against the memory store and shapes the
// raw hits into RetrievedDocuments. Every failure mode returns an empty
// document list and a human-readable message; callers must treat that as
// insufficient evidence, not a fault.
type Retriever struct {
	store SearchStore
	embed Embedder
}

// NewRetriever creates a Retriever. A nil store means long-term memory is
// not configured; Retrieve then reports it as unavailable.
func NewRetriever(store SearchStore, embed Embedder) *Retriever {
	return &Retriever{store: store, embed: embed}
}

// Retrieve fetches up to topK documents drawn from a candidate pool of
// rankWindow, ordered by descending similarity, and the concatenated
// context string built from their contents.
func (r *Retriever) Retrieve(ctx context.Context, query string, rankWindow, topK int) ([]models.RetrievedDocument, string) {
	if r.store == nil {
		return nil, "Long-term memory is not available. Cannot search previous conversations."
	}

	exists, err := r.store.IndexExists(ctx)
	if err != nil {
		return nil, fmt.Sprintf("Error accessing long-term memory: %v", err)
	}
	if !exists {
		return nil, "No previous conversations stored in long-term memory yet."
	}

	count, err := r.store.Count(ctx)
	if err != nil {
		return nil, fmt.Sprintf("Error checking memory: %v", err)
	}
	if count == 0 {
		return nil, "Long-term memory is empty. No previous conversations to search."
	}

	vector, err := r.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Sprintf("Error generating embedding: %v", err)
	}

	hits, err := r.store.Search(ctx, vector, topK, rankWindow)
	if err != nil {
		return nil, fmt.Sprintf("Error searching memory: %v", err)
	}
	if len(hits) == 0 {
		return nil, "No relevant previous conversations found in long-term memory."
	}

	docs := make([]models.RetrievedDocument, 0, len(hits))
	parts := make([]string, 0, len(hits))
	for _, hit := range hits {
		doc := models.DocumentFromHit(hit)
		docs = append(docs, doc)
		parts = append(parts, doc.Content)
	}
	contextText := strings.Join(parts, "\n\n")

	slog.Debug("retrieved candidates",
		"query", query,
		"documents", len(docs),
		"rank_window", rankWindow,
		"context_chars", len(contextText))
	for i, doc := range docs {
		slog.Debug("candidate document",
			"rank", i+1,
			"score", doc.Score,
			"type", doc.MessageType,
			"thread", doc.ThreadID)
	}

	return docs, contextText
}
