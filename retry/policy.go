package retry

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/marcelsud/wallet-connector/failure"
)

// jitterFraction bounds the random spread applied to computed delays
const jitterFraction = 0.25

/* Policy configures attempt count and inter-attempt delay
 * Uses value semantics: it is immutable data shared by many invocations
 */
type Policy struct {
	MaxAttempts       int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// NewPolicy creates a validated policy
func NewPolicy(maxAttempts int, baseDelay, maxDelay time.Duration, multiplier float64) (Policy, error) {
	p := Policy{
		MaxAttempts:       maxAttempts,
		BaseDelay:         baseDelay,
		MaxDelay:          maxDelay,
		BackoffMultiplier: multiplier,
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate checks if the policy is usable
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1 (got %d)", p.MaxAttempts)
	}
	if p.BaseDelay < 0 {
		return errors.New("base_delay cannot be negative")
	}
	if p.MaxDelay < p.BaseDelay {
		return fmt.Errorf("max_delay (%s) must be >= base_delay (%s)", p.MaxDelay, p.BaseDelay)
	}
	if p.BackoffMultiplier < 1 {
		return fmt.Errorf("backoff_multiplier must be >= 1 (got %g)", p.BackoffMultiplier)
	}
	return nil
}

// UpstreamPolicy is the default policy for calls to the upstream banking API
func UpstreamPolicy() Policy {
	return Policy{
		MaxAttempts:       3,
		BaseDelay:         1 * time.Second,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2,
	}
}

// CallbackPolicy is the default policy for status callback delivery
func CallbackPolicy() Policy {
	return Policy{
		MaxAttempts:       3,
		BaseDelay:         1 * time.Second,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2,
	}
}

// Backoff returns the un-jittered delay after the given failed attempt (1-based)
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(p.BaseDelay) * math.Pow(p.BackoffMultiplier, float64(attempt-1))
	if d > float64(p.MaxDelay) || math.IsInf(d, 0) || math.IsNaN(d) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

/* Delay computes how long to wait after the given failed attempt
 * An explicit retry-after on the failure is used verbatim
 * Otherwise the backoff is spread by ±25% and floored at zero
 */
func (p Policy) Delay(attempt int, err error) time.Duration {
	if d, ok := failure.RetryAfterOf(err); ok {
		return d
	}
	return jitter(p.Backoff(attempt), rand.Float64())
}

// jitter spreads d uniformly across [0.75d, 1.25d] given u in [0, 1)
func jitter(d time.Duration, u float64) time.Duration {
	factor := 1 + jitterFraction*(2*u-1)
	j := time.Duration(float64(d) * factor)
	if j < 0 {
		return 0
	}
	return j
}
