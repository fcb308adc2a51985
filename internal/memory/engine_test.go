// ABOUTME: Tests for the confidence decision engine
// ABOUTME: Scenario coverage plus the randomized UseMemory invariant
package memory

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/membridge/recall/internal/models"
)

func docWithScore(score float64) models.RetrievedDocument {
	return models.RetrievedDocument{
		Content:     "Alice lives in Bangalore.",
		MessageType: models.MessageTypeHuman,
		Timestamp:   "2026-01-01T00:00:00Z",
		ThreadID:    "t1",
		Score:       score,
	}
}

func TestDecide_EmptyStoreIsUnavailable(t *testing.T) {
	// Scenario A: wire the real retriever over an empty store
	fs := newFakeStore()
	fs.count = 0
	engine := NewEngine(
		NewRetriever(fs, &fakeEmbedder{}),
		&stubReducer{},
		&stubVerifier{verdict: models.RelevanceVerdict{IsRelevant: true, RelevanceScore: 1.0}},
	)

	d := engine.Decide(context.Background(), "x", DefaultParams())

	if d.Outcome != models.OutcomeUnavailable {
		t.Errorf("Outcome = %v, want Unavailable", d.Outcome)
	}
	if !strings.Contains(d.Payload, "empty") {
		t.Errorf("Payload = %q, want mention of empty memory", d.Payload)
	}
	if d.MaxScore != 0.0 {
		t.Errorf("MaxScore = %v, want 0.0", d.MaxScore)
	}
}

func TestDecide_AcceptsRelevantHighScore(t *testing.T) {
	// Scenario B: score 0.9 >= 0.7, verifier relevant at 0.85
	engine := NewEngine(
		&stubRetriever{docs: []models.RetrievedDocument{docWithScore(0.9)}},
		&stubReducer{out: "Alice lives in Bangalore."},
		&stubVerifier{verdict: models.RelevanceVerdict{IsRelevant: true, RelevanceScore: 0.85}},
	)

	p := DefaultParams()
	p.ConfidenceThreshold = 0.7
	d := engine.Decide(context.Background(), "where does Alice live?", p)

	if d.Outcome != models.OutcomeUseMemory {
		t.Fatalf("Outcome = %v, want UseMemory", d.Outcome)
	}
	if !strings.Contains(d.Payload, "similarity: 0.9000") {
		t.Errorf("Payload = %q, want similarity: 0.9000", d.Payload)
	}
	if !strings.Contains(d.Payload, "relevance: 0.85") {
		t.Errorf("Payload = %q, want relevance: 0.85", d.Payload)
	}
	if !strings.Contains(d.Payload, "Alice lives in Bangalore.") {
		t.Errorf("Payload = %q, want the reduced context", d.Payload)
	}
	if d.MaxScore != 0.9 {
		t.Errorf("MaxScore = %v, want 0.9", d.MaxScore)
	}
}

func TestDecide_ScoreBelowThresholdFallsBack(t *testing.T) {
	// Scenario C: score 0.5 < threshold 0.7
	engine := NewEngine(
		&stubRetriever{docs: []models.RetrievedDocument{docWithScore(0.5)}},
		&stubReducer{},
		&stubVerifier{verdict: models.RelevanceVerdict{IsRelevant: true, RelevanceScore: 1.0}},
	)

	p := DefaultParams()
	p.ConfidenceThreshold = 0.7
	d := engine.Decide(context.Background(), "q", p)

	if d.Outcome != models.OutcomeFallBack {
		t.Fatalf("Outcome = %v, want FallBack", d.Outcome)
	}
	if !strings.Contains(d.Payload, "0.5000") {
		t.Errorf("Payload = %q, want the score 0.5000", d.Payload)
	}
	if !strings.Contains(d.Payload, "0.7") {
		t.Errorf("Payload = %q, want the threshold 0.7", d.Payload)
	}
	if d.MaxScore != 0.5 {
		t.Errorf("MaxScore = %v, want 0.5", d.MaxScore)
	}
}

func TestDecide_NotRelevantFallsBack(t *testing.T) {
	// Scenario D: score passes the gate, verifier says no at 0.2
	engine := NewEngine(
		&stubRetriever{docs: []models.RetrievedDocument{docWithScore(0.95)}},
		&stubReducer{},
		&stubVerifier{verdict: models.RelevanceVerdict{IsRelevant: false, RelevanceScore: 0.2}},
	)

	d := engine.Decide(context.Background(), "q", DefaultParams())

	if d.Outcome != models.OutcomeFallBack {
		t.Fatalf("Outcome = %v, want FallBack", d.Outcome)
	}
	if !strings.Contains(d.Payload, "0.20") {
		t.Errorf("Payload = %q, want the relevance score 0.20", d.Payload)
	}
	if d.MaxScore != 0.95 {
		t.Errorf("MaxScore = %v, want 0.95 even on fallback", d.MaxScore)
	}
}

func TestDecide_MaxScoreIsMaxAcrossDocuments(t *testing.T) {
	engine := NewEngine(
		&stubRetriever{docs: []models.RetrievedDocument{
			docWithScore(0.72), docWithScore(0.91), docWithScore(0.64),
		}},
		&stubReducer{},
		&stubVerifier{verdict: models.RelevanceVerdict{IsRelevant: true, RelevanceScore: 0.8}},
	)

	d := engine.Decide(context.Background(), "q", DefaultParams())
	if d.MaxScore != 0.91 {
		t.Errorf("MaxScore = %v, want 0.91", d.MaxScore)
	}
}

func TestDecide_PanicBecomesUnavailable(t *testing.T) {
	engine := NewEngine(
		&stubRetriever{docs: []models.RetrievedDocument{docWithScore(0.9)}},
		panicReducer{},
		&stubVerifier{verdict: models.RelevanceVerdict{IsRelevant: true, RelevanceScore: 1.0}},
	)

	d := engine.Decide(context.Background(), "q", DefaultParams())

	if d.Outcome != models.OutcomeUnavailable {
		t.Errorf("Outcome = %v, want Unavailable after a panic", d.Outcome)
	}
	if d.MaxScore != 0.0 {
		t.Errorf("MaxScore = %v, want 0.0 after a panic", d.MaxScore)
	}
	if !strings.Contains(d.Payload, "reducer exploded") {
		t.Errorf("Payload = %q, want the fault description", d.Payload)
	}
}

func TestDecide_UseMemoryInvariant(t *testing.T) {
	// UseMemory iff maxScore >= threshold AND the verifier said relevant,
	// across randomized (threshold, score, verdict) triples.
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 500; i++ {
		threshold := rng.Float64()
		score := rng.Float64()
		relevant := rng.IntN(2) == 0

		engine := NewEngine(
			&stubRetriever{docs: []models.RetrievedDocument{docWithScore(score)}},
			&stubReducer{},
			&stubVerifier{verdict: models.RelevanceVerdict{IsRelevant: relevant, RelevanceScore: 0.5}},
		)

		p := DefaultParams()
		p.ConfidenceThreshold = threshold
		d := engine.Decide(context.Background(), "q", p)

		wantUse := score >= threshold && relevant
		gotUse := d.Outcome == models.OutcomeUseMemory
		if gotUse != wantUse {
			t.Fatalf("threshold=%v score=%v relevant=%v: outcome = %v, want UseMemory=%v",
				threshold, score, relevant, d.Outcome, wantUse)
		}
	}
}
