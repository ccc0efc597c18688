package gateway

import (
	"context"
	"time"
)

// RetrySubmitter retries any non-success outcome up to a hard attempt
// cap, with no delay between attempts. The last outcome's error is
// returned once the cap is exhausted. Each attempt gets its own timeout
// so a hung gateway cannot block a request forever.
type RetrySubmitter struct {
	inner       Submitter
	maxAttempts int
	perAttempt  time.Duration
}

// NewRetrySubmitter wraps a Submitter with bounded retries. maxAttempts
// is the total number of calls, not the number of retries.
func NewRetrySubmitter(inner Submitter, maxAttempts int, perAttempt time.Duration) *RetrySubmitter {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetrySubmitter{inner: inner, maxAttempts: maxAttempts, perAttempt: perAttempt}
}

// Submit implements Submitter.
func (r *RetrySubmitter) Submit(ctx context.Context, token string, req ChargeRequest) error {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if r.perAttempt > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, r.perAttempt)
		}

		err := r.inner.Submit(attemptCtx, token, req)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		// The caller gave up; don't burn the remaining attempts.
		if ctx.Err() != nil {
			break
		}
	}
	return lastErr
}
