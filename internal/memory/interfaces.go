// ABOUTME: Capability interfaces consumed by the decision pipeline
// ABOUTME: Every collaborator is injected; nothing reads ambient globals
package memory

import (
	"context"

	"github.com/membridge/recall/internal/models"
)

// Embedder maps a text string to a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Completer maps a prompt to a text completion.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// SearchStore is the read side of the memory index.
type SearchStore interface {
	IndexExists(ctx context.Context) (bool, error)
	Count(ctx context.Context) (int, error)
	Search(ctx context.Context, vector []float64, k, numCandidates int) ([]models.SearchHit, error)
}

// WriteStore is the write side of the memory index.
type WriteStore interface {
	IndexExists(ctx context.Context) (bool, error)
	HasDocument(ctx context.Context, id string) (bool, error)
	Put(ctx context.Context, id string, rec models.MemoryRecord) error
}

// Pruner reduces a context string to its query-relevant sentences.
type Pruner interface {
	Prune(ctx context.Context, query, text string, threshold float64) (string, error)
}

// ContextRetriever fetches ranked candidate documents for a query.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string, rankWindow, topK int) ([]models.RetrievedDocument, string)
}

// ContextReducer condenses retrieved context for a query.
type ContextReducer interface {
	Reduce(ctx context.Context, query, text string, pruningThreshold float64) string
}

// RelevanceVerifier judges whether reduced context answers the query.
type RelevanceVerifier interface {
	Verify(ctx context.Context, query, text string) models.RelevanceVerdict
}
