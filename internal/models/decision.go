// ABOUTME: Decision and verdict types produced by the confidence pipeline
// ABOUTME: Terminal artifacts of a memory-vs-fallback query
package models

// Outcome is the ternary result of a confidence decision.
type Outcome int

const (
	// OutcomeUseMemory means stored memory is authoritative for the query.
	OutcomeUseMemory Outcome = iota
	// OutcomeFallBack means results exist but fail the score or relevance bar.
	OutcomeFallBack
	// OutcomeUnavailable means the store or an upstream capability is absent
	// or failed; the caller should answer by another path.
	OutcomeUnavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUseMemory:
		return "use-memory"
	case OutcomeFallBack:
		return "fall-back"
	case OutcomeUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Decision is the terminal artifact of the decision engine. Payload carries
// the reduced context on OutcomeUseMemory, otherwise a human-readable reason.
type Decision struct {
	Outcome  Outcome `json:"outcome"`
	Payload  string  `json:"payload"`
	MaxScore float64 `json:"max_score"`
}

// RelevanceVerdict is the LLM's judgment on whether reduced context
// actually answers the query. Reason is diagnostic only.
type RelevanceVerdict struct {
	IsRelevant     bool    `json:"is_relevant"`
	RelevanceScore float64 `json:"relevance_score"`
	Reason         string  `json:"reason"`
}
