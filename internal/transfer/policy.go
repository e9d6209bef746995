package transfer

import "time"

// Default linear backoff parameters
const (
	// DefaultRetryStep is the per-attempt backoff increment
	DefaultRetryStep = 2 * time.Second
	// DefaultRetryCap bounds the backoff delay
	DefaultRetryCap = 10 * time.Second
)

// LinearBackoff retries up to MaxRetries times, waiting attempt×Step
// before each retry, capped at Cap. The schedule for the defaults is
// 0s, 2s, 4s, 6s, 8s, 10s, 10s, ...
type LinearBackoff struct {
	MaxRetries int
	Step       time.Duration
	Cap        time.Duration
}

// NewLinearBackoff returns the default bounded linear backoff policy
// with the given retry budget.
func NewLinearBackoff(maxRetries int) LinearBackoff {
	return LinearBackoff{
		MaxRetries: maxRetries,
		Step:       DefaultRetryStep,
		Cap:        DefaultRetryCap,
	}
}

// ShouldRetry reports whether the given attempt is within the budget
func (p LinearBackoff) ShouldRetry(attempt int) bool {
	return attempt <= p.MaxRetries
}

// Delay returns the backoff delay before the given attempt. The first
// attempt retries immediately.
func (p LinearBackoff) Delay(attempt int) time.Duration {
	d := time.Duration(attempt-1) * p.Step
	if d > p.Cap {
		d = p.Cap
	}
	return d
}
