package retry

import (
	"math"
	"time"
)

// NextDelay is the nominal delay before the given attempt's retry, ignoring
// the randomization the backoff implementation adds.
func NextDelay(attempt int, policy Policy) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(float64(policy.InitialInterval) * math.Pow(policy.Multiplier, float64(attempt-1)))
	if policy.MaxInterval > 0 && d > policy.MaxInterval {
		d = policy.MaxInterval
	}
	return d
}
