package scraper

import (
	"log"
	"math/rand"
	"time"
)

// Policy bounds one retried operation. Every invocation of Retry owns its
// own attempt counter; nothing is shared across calls.
type Policy struct {
	MaxAttempts  int
	BaseDelay    time.Duration
	JitterRatio  float64
	BlockedDelay time.Duration

	// OnRetry, when set, observes every follow-up attempt being scheduled.
	OnRetry func(attempt int)
}

// DefaultPolicy mirrors the crawl's operating contract: three attempts,
// exponential backoff from five seconds, and a much longer cool-off after
// an anti-bot block.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		BaseDelay:    5 * time.Second,
		JitterRatio:  0.25,
		BlockedDelay: 15 * time.Second,
	}
}

// Backoff computes the wait before the next attempt after a transient
// failure: BaseDelay * 2^(attempt-1) plus uniform jitter in
// [0, JitterRatio*delay].
func Backoff(p Policy, attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	base := p.BaseDelay
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	delay := base * time.Duration(1<<(attempt-1))
	if p.JitterRatio > 0 {
		delay += time.Duration(rand.Int63n(int64(float64(delay)*p.JitterRatio) + 1))
	}
	return delay
}

// blockedBackoff scales the blocked cool-off linearly with the attempt
// number, the heavier recovery path for 403-like responses.
func blockedBackoff(p Policy, attempt int) time.Duration {
	base := p.BlockedDelay
	if base <= 0 {
		base = p.BaseDelay
	}
	return base * time.Duration(attempt)
}

// Retry runs op until it succeeds, fails fatally, or the attempt budget is
// spent. A blocked attempt waits the blocked cool-off and invokes onBlocked
// (identity rotation) before the next attempt; it still consumes one
// attempt. The returned error is either the fatal error itself or an
// *ExhaustedError wrapping the last failure.
func Retry(p Policy, op func(attempt int) error, onBlocked func()) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := op(attempt)
		if err == nil {
			return nil
		}
		if IsFatal(err) {
			return err
		}
		lastErr = err

		if attempt == p.MaxAttempts {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt + 1)
		}

		if IsBlocked(err) {
			delay := blockedBackoff(p, attempt)
			log.Printf("Attempt %d/%d blocked: %v. Cooling off %s before refreshing identity...", attempt, p.MaxAttempts, err, delay)
			time.Sleep(delay)
			if onBlocked != nil {
				onBlocked()
			}
			continue
		}

		delay := Backoff(p, attempt)
		log.Printf("Attempt %d/%d failed: %v. Retrying in %s...", attempt, p.MaxAttempts, err, delay)
		time.Sleep(delay)
	}

	return &ExhaustedError{
		Attempts:            p.MaxAttempts,
		BlockedPersistently: IsBlocked(lastErr),
		Err:                 lastErr,
	}
}
