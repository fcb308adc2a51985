// ABOUTME: LLM-based relevance verifier for retrieved context
// ABOUTME: Judges answerability at entity level, distinct from vector similarity
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/membridge/recall/internal/models"
)

const relevancePromptTemplate = `You are an expert at evaluating whether retrieved context actually answers a user's question.

User's Question: "%s"

Retrieved Context:
%s

Evaluate whether the retrieved context actually answers the user's question. Consider:
1. Does the context contain information that directly answers the question?
2. Are there any key details missing (e.g., asking about "Bangalore" but context only mentions "Delhi")?
3. Is the context relevant to the specific question asked?

Respond with ONLY a JSON object in this exact format:
{
    "is_relevant": true or false,
    "relevance_score": 0.0 to 1.0,
    "reason": "brief explanation"
}

Be strict: if the question asks about a specific entity (like "Bangalore") but the context only mentions a different entity (like "Delhi"), it is NOT relevant, even if semantically similar.`

// relevanceJSONPattern matches the first brace-delimited object carrying
// the is_relevant key.
var relevanceJSONPattern = regexp.MustCompile(`\{[^{}]*"is_relevant"[^{}]*\}`)

// Verifier asks the language model whether reduced context answers a
// query. Unverifiable context is judged not relevant: a failed model call
// yields (false, 0.0).
type Verifier struct {
	completer Completer
}

// NewVerifier creates a Verifier backed by the given completer.
func NewVerifier(completer Completer) *Verifier {
	return &Verifier{completer: completer}
}

// Verify returns the model's relevance verdict for (query, text).
func (v *Verifier) Verify(ctx context.Context, query, text string) models.RelevanceVerdict {
	prompt := fmt.Sprintf(relevancePromptTemplate, query, text)

	response, err := v.completer.Complete(ctx, prompt)
	if err != nil {
		// Fail closed: unverifiable context is not trustworthy
		slog.Warn("relevance check failed, judging not relevant", "error", err)
		return models.RelevanceVerdict{IsRelevant: false, RelevanceScore: 0.0}
	}

	verdict, ok := parseVerdict(response)
	if !ok {
		verdict = lenientVerdict(response)
		slog.Warn("could not parse relevance JSON, using lenient fallback",
			"is_relevant", verdict.IsRelevant, "score", verdict.RelevanceScore)
		return verdict
	}

	slog.Debug("relevance verdict",
		"is_relevant", verdict.IsRelevant,
		"score", verdict.RelevanceScore,
		"reason", verdict.Reason)
	return verdict
}

// parseVerdict extracts and decodes the verdict object from a raw model
// response.
func parseVerdict(response string) (models.RelevanceVerdict, bool) {
	match := relevanceJSONPattern.FindString(response)
	if match == "" {
		return models.RelevanceVerdict{}, false
	}

	var verdict models.RelevanceVerdict
	if err := json.Unmarshal([]byte(match), &verdict); err != nil {
		return models.RelevanceVerdict{}, false
	}
	return verdict, true
}

// lenientVerdict guesses a verdict from an unparseable response: a model
// that mentioned is_relevant and true probably meant yes.
func lenientVerdict(response string) models.RelevanceVerdict {
	lower := strings.ToLower(response)
	if strings.Contains(lower, "is_relevant") && strings.Contains(lower, "true") {
		return models.RelevanceVerdict{IsRelevant: true, RelevanceScore: 0.7}
	}
	return models.RelevanceVerdict{IsRelevant: false, RelevanceScore: 0.3}
}
