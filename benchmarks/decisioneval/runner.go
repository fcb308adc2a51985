// ABOUTME: Runner executing decision evaluation scenarios against the engine
// ABOUTME: Injects deterministic pipeline stages and collects metric results

package decisioneval

import (
	"context"
	"fmt"
	"strings"

	"github.com/membridge/recall/internal/memory"
	"github.com/membridge/recall/internal/models"
)

// Result is the outcome of one evaluated scenario.
type Result struct {
	ScenarioID   string
	ScenarioName string
	OutcomeScore float64
	PayloadScore float64
	OverallScore float64
	Status       string // "PASS" or "FAIL"
	Details      []string
}

// Runner evaluates the decision engine against fixed scenarios. The
// retrieval, reduction, and verification stages are deterministic so
// the engine's gating logic is the only variable under test.
type Runner struct {
	metrics *MetricsCalculator
	verbose bool
}

// NewRunner creates an evaluation runner
func NewRunner(verbose bool) *Runner {
	return &Runner{metrics: NewMetricsCalculator(), verbose: verbose}
}

// RunScenario executes a single scenario and scores the decision.
func (r *Runner) RunScenario(ctx context.Context, s Scenario) Result {
	if r.verbose {
		fmt.Printf("\nRUNNING: %s\n%s\n", s.Name, s.Description)
	}

	engine := memory.NewEngine(
		&seededRetriever{hits: s.Hits, reason: s.Reason},
		passthroughReducer{},
		&fixedVerifier{relevant: s.Relevant, score: s.RelevanceScore},
	)

	decision := engine.Decide(ctx, s.Query, memory.DefaultParams())

	outcomeScore, outcomeDetail := r.metrics.CalculateOutcomeAccuracy(decision.Outcome, s.ExpectedOutcome)
	payloadScore, payloadDetail := r.metrics.CalculatePayloadFidelity(
		decision.Payload, s.ExpectedInPayload, s.ForbiddenInPayload)
	overall := r.metrics.Overall(outcomeScore, payloadScore)

	status := "FAIL"
	if overall == 1.0 {
		status = "PASS"
	}

	if r.verbose {
		fmt.Printf("  outcome: %s (%.1f)\n  payload: %s (%.1f)\n  %s\n",
			outcomeDetail, outcomeScore, payloadDetail, payloadScore, status)
	}

	return Result{
		ScenarioID:   s.ID,
		ScenarioName: s.Name,
		OutcomeScore: outcomeScore,
		PayloadScore: payloadScore,
		OverallScore: overall,
		Status:       status,
		Details:      []string{outcomeDetail, payloadDetail},
	}
}

// RunAll executes every scenario and returns the results.
func (r *Runner) RunAll(ctx context.Context) []Result {
	scenarios := AllScenarios()
	results := make([]Result, 0, len(scenarios))
	for _, s := range scenarios {
		results = append(results, r.RunScenario(ctx, s))
	}
	return results
}

// Summary renders a one-line-per-scenario report.
func Summary(results []Result) string {
	var b strings.Builder
	passed := 0
	for _, res := range results {
		fmt.Fprintf(&b, "%-8s %-40s %.2f %s\n", res.ScenarioID, res.ScenarioName, res.OverallScore, res.Status)
		if res.Status == "PASS" {
			passed++
		}
	}
	fmt.Fprintf(&b, "passed %d/%d\n", passed, len(results))
	return b.String()
}

// seededRetriever returns the scenario's fixture instead of searching.
type seededRetriever struct {
	hits   []SeededHit
	reason string
}

func (s *seededRetriever) Retrieve(ctx context.Context, query string, rankWindow, topK int) ([]models.RetrievedDocument, string) {
	if len(s.hits) == 0 {
		return nil, s.reason
	}

	docs := make([]models.RetrievedDocument, 0, len(s.hits))
	texts := make([]string, 0, len(s.hits))
	for _, h := range s.hits {
		docs = append(docs, models.RetrievedDocument{Content: h.Text, Score: h.Score})
		texts = append(texts, h.Text)
	}
	return docs, strings.Join(texts, "\n\n")
}

// passthroughReducer keeps reduction out of the variables under test.
type passthroughReducer struct{}

func (passthroughReducer) Reduce(ctx context.Context, query, text string, pruningThreshold float64) string {
	return text
}

type fixedVerifier struct {
	relevant bool
	score    float64
}

func (f *fixedVerifier) Verify(ctx context.Context, query, text string) models.RelevanceVerdict {
	return models.RelevanceVerdict{IsRelevant: f.relevant, RelevanceScore: f.score}
}
