// ABOUTME: Confidence decision engine: retrieve, gate, reduce, verify, accept
// ABOUTME: Always returns a well-formed Decision, never lets a fault escape
package memory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/membridge/recall/internal/models"
)

// Params tunes one decision pass.
type Params struct {
	RankWindow          int
	TopK                int
	PruningThreshold    float64
	ConfidenceThreshold float64
}

// DefaultParams mirrors the deployment defaults.
func DefaultParams() Params {
	return Params{
		RankWindow:          10,
		TopK:                5,
		PruningThreshold:    0.3,
		ConfidenceThreshold: 0.7,
	}
}

// Engine decides, per query, whether stored memory is trustworthy enough
// to answer without falling back to an external answering path.
type Engine struct {
	retriever ContextRetriever
	reducer   ContextReducer
	verifier  RelevanceVerifier
}

// NewEngine wires the pipeline stages together.
func NewEngine(retriever ContextRetriever, reducer ContextReducer, verifier RelevanceVerifier) *Engine {
	return &Engine{retriever: retriever, reducer: reducer, verifier: verifier}
}

// Decide runs the linear pipeline: retrieve, score-gate, reduce, verify.
// The outcome is UseMemory only when the max similarity score meets the
// confidence threshold AND the verifier judged the reduced context
// relevant; every other path is FallBack or Unavailable with a reason.
func (e *Engine) Decide(ctx context.Context, query string, p Params) (decision models.Decision) {
	// Whatever goes wrong mid-pipeline, the caller gets a decision,
	// never a fault.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("decision pipeline panicked", "query", query, "panic", r)
			decision = models.Decision{
				Outcome:  models.OutcomeUnavailable,
				Payload:  fmt.Sprintf("Error accessing long-term memory: %v", r),
				MaxScore: 0.0,
			}
		}
	}()

	docs, contextText := e.retriever.Retrieve(ctx, query, p.RankWindow, p.TopK)
	if len(docs) == 0 {
		// contextText carries the retriever's reason
		return models.Decision{
			Outcome:  models.OutcomeUnavailable,
			Payload:  contextText,
			MaxScore: 0.0,
		}
	}

	maxScore := docs[0].Score
	for _, doc := range docs[1:] {
		if doc.Score > maxScore {
			maxScore = doc.Score
		}
	}

	if maxScore < p.ConfidenceThreshold {
		slog.Debug("similarity below threshold, falling back",
			"max_score", maxScore, "threshold", p.ConfidenceThreshold)
		return models.Decision{
			Outcome:  models.OutcomeFallBack,
			Payload:  fmt.Sprintf("similarity score (%.4f) below threshold (%g)", maxScore, p.ConfidenceThreshold),
			MaxScore: maxScore,
		}
	}

	reduced := e.reducer.Reduce(ctx, query, contextText, p.PruningThreshold)

	verdict := e.verifier.Verify(ctx, query, reduced)
	if !verdict.IsRelevant {
		slog.Debug("context not relevant, falling back",
			"relevance_score", verdict.RelevanceScore, "reason", verdict.Reason)
		return models.Decision{
			Outcome:  models.OutcomeFallBack,
			Payload:  fmt.Sprintf("retrieved context is not relevant to the question (relevance score: %.2f)", verdict.RelevanceScore),
			MaxScore: maxScore,
		}
	}

	slog.Debug("memory accepted",
		"documents", len(docs), "max_score", maxScore, "relevance_score", verdict.RelevanceScore)
	return models.Decision{
		Outcome: models.OutcomeUseMemory,
		Payload: fmt.Sprintf("Found %d relevant previous conversation(s) (similarity: %.4f, relevance: %.2f):\n\nContext Summary:\n%s",
			len(docs), maxScore, verdict.RelevanceScore, reduced),
		MaxScore: maxScore,
	}
}
