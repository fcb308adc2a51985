// ABOUTME: Retry backoff helper for external API calls
// ABOUTME: Exponential delay with jitter, shared by the OpenAI gateway
package util

import (
	"math/rand/v2"
	"time"
)

// maxBackoff caps the delay between attempts.
const maxBackoff = 30 * time.Second

// Backoff returns the delay before the given retry attempt.
// The base delay doubles each attempt, with -25% to +25% jitter.
// Attempt 0 (the first try) waits nothing.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	// Cap the shift so the multiplication cannot overflow
	if attempt > 30 {
		attempt = 30
	}
	delay := base * time.Duration(1<<uint(attempt))
	if delay > maxBackoff {
		delay = maxBackoff
	}
	jitter := time.Duration(rand.Int64N(int64(delay)/2)) - delay/4
	return delay + jitter
}
