// ABOUTME: Evaluation scenario definitions for the confidence decision pipeline
// ABOUTME: Each scenario seeds retrieval results and an expected outcome

package decisioneval

import "github.com/membridge/recall/internal/models"

// SeededHit is one retrieval candidate a scenario injects.
type SeededHit struct {
	Text  string
	Score float64
}

// Scenario represents one end-to-end evaluation of the decision engine.
type Scenario struct {
	ID          string
	Name        string
	Description string
	Query       string

	// Retrieval fixture. Empty Hits with a Reason simulates an
	// unavailable memory backend.
	Hits   []SeededHit
	Reason string

	// Verifier fixture
	Relevant       bool
	RelevanceScore float64

	// Ground truth
	ExpectedOutcome    models.Outcome
	ExpectedInPayload  []string
	ForbiddenInPayload []string
}

// GetHighConfidenceScenario returns the accept path: strong similarity
// and a relevant verdict must surface the context summary.
func GetHighConfidenceScenario() Scenario {
	return Scenario{
		ID:          "accept",
		Name:        "High confidence, relevant context",
		Description: "Similarity above threshold and verifier agreement should answer from memory",
		Query:       "Where does Alice live?",
		Hits: []SeededHit{
			{Text: "Alice mentioned she moved to Bangalore last spring.", Score: 0.91},
			{Text: "Alice enjoys the food scene in her city.", Score: 0.74},
		},
		Relevant:           true,
		RelevanceScore:     0.85,
		ExpectedOutcome:    models.OutcomeUseMemory,
		ExpectedInPayload:  []string{"Bangalore", "similarity: 0.9100", "relevance: 0.85"},
		ForbiddenInPayload: []string{"below threshold"},
	}
}

// GetLowSimilarityScenario returns the score-gate path: weak similarity
// must fall back before the verifier is ever consulted.
func GetLowSimilarityScenario() Scenario {
	return Scenario{
		ID:          "gate",
		Name:        "Similarity below threshold",
		Description: "Weak nearest-neighbor scores should fall back with the score in the reason",
		Query:       "What is Bob's favorite color?",
		Hits: []SeededHit{
			{Text: "Bob once talked about the weather.", Score: 0.42},
		},
		Relevant:          true,
		RelevanceScore:    0.9,
		ExpectedOutcome:   models.OutcomeFallBack,
		ExpectedInPayload: []string{"0.4200", "below threshold"},
	}
}

// GetIrrelevantContextScenario returns the verifier-reject path: high
// similarity but off-topic context must fall back.
func GetIrrelevantContextScenario() Scenario {
	return Scenario{
		ID:          "verify",
		Name:        "High similarity, irrelevant context",
		Description: "Lexically close but off-topic context should be rejected by the verifier",
		Query:       "When is the quarterly report due?",
		Hits: []SeededHit{
			{Text: "The team discussed quarterly planning rituals.", Score: 0.88},
		},
		Relevant:          false,
		RelevanceScore:    0.2,
		ExpectedOutcome:   models.OutcomeFallBack,
		ExpectedInPayload: []string{"not relevant", "0.20"},
	}
}

// GetEmptyMemoryScenario returns the unavailable path: no stored
// conversations means the engine must report memory as unusable.
func GetEmptyMemoryScenario() Scenario {
	return Scenario{
		ID:              "empty",
		Name:            "Empty long-term memory",
		Description:     "An empty index should yield Unavailable with the retriever's reason",
		Query:             "What did we talk about yesterday?",
		Reason:            "Long-term memory is empty. No previous conversations to search.",
		ExpectedOutcome:   models.OutcomeUnavailable,
		ExpectedInPayload: []string{"empty"},
	}
}

// AllScenarios returns every evaluation scenario in execution order.
func AllScenarios() []Scenario {
	return []Scenario{
		GetHighConfidenceScenario(),
		GetLowSimilarityScenario(),
		GetIrrelevantContextScenario(),
		GetEmptyMemoryScenario(),
	}
}
