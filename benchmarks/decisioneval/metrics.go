// ABOUTME: Metrics for evaluating decision pipeline outcomes
// ABOUTME: Scores outcome accuracy and payload fidelity against ground truth

package decisioneval

import (
	"fmt"
	"strings"

	"github.com/membridge/recall/internal/models"
)

// MetricsCalculator scores decisions against scenario ground truth
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateOutcomeAccuracy scores whether the engine chose the expected
// path (1.0 or 0.0, outcomes are not partially correct).
func (m *MetricsCalculator) CalculateOutcomeAccuracy(got, want models.Outcome) (float64, string) {
	if got == want {
		return 1.0, fmt.Sprintf("outcome %s as expected", got)
	}
	return 0.0, fmt.Sprintf("outcome %s, want %s", got, want)
}

// CalculatePayloadFidelity scores whether the payload carries the
// expected evidence and none of the forbidden content.
func (m *MetricsCalculator) CalculatePayloadFidelity(
	payload string,
	expected []string,
	forbidden []string,
) (float64, string) {
	payloadUpper := strings.ToUpper(payload)

	missing := []string{}
	for _, want := range expected {
		if !strings.Contains(payloadUpper, strings.ToUpper(want)) {
			missing = append(missing, want)
		}
	}

	found := []string{}
	for _, banned := range forbidden {
		if strings.Contains(payloadUpper, strings.ToUpper(banned)) {
			found = append(found, banned)
		}
	}

	switch {
	case len(missing) == 0 && len(found) == 0:
		return 1.0, "payload matches ground truth"
	case len(missing) > 0 && len(found) > 0:
		return 0.0, fmt.Sprintf("payload missing %v and contains forbidden %v", missing, found)
	case len(missing) > 0:
		return 0.5, fmt.Sprintf("payload missing expected items: %v", missing)
	default:
		return 0.5, fmt.Sprintf("payload contains forbidden items: %v", found)
	}
}

// Overall combines the two metrics; outcome accuracy dominates because a
// wrong path is a failure no matter how good the payload looks.
func (m *MetricsCalculator) Overall(outcomeScore, payloadScore float64) float64 {
	if outcomeScore == 0 {
		return 0
	}
	return (outcomeScore + payloadScore) / 2
}
