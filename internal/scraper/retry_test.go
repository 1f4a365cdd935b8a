package scraper

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		BaseDelay:    time.Millisecond,
		JitterRatio:  0,
		BlockedDelay: time.Millisecond,
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := Retry(fastPolicy(), func(attempt int) error {
		attempts++
		if attempts < 3 {
			return TransientError{Err: errors.New("timeout")}
		}
		return nil
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryStopsAfterMaxAttempts(t *testing.T) {
	attempts := 0
	err := Retry(fastPolicy(), func(attempt int) error {
		attempts++
		return TransientError{Err: errors.New("connection reset")}
	}, nil)

	assert.Equal(t, 3, attempts)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.False(t, exhausted.BlockedPersistently)
}

func TestRetryBlockedPersistently(t *testing.T) {
	rotations := 0
	attempts := 0
	err := Retry(fastPolicy(), func(attempt int) error {
		attempts++
		return BlockedError{URL: "https://simplycodes.com/category/beauty", Err: errors.New("403 forbidden")}
	}, func() { rotations++ })

	assert.Equal(t, 3, attempts)
	// Identity rotates between attempts, not after the final one.
	assert.Equal(t, 2, rotations)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.True(t, exhausted.BlockedPersistently)
}

func TestRetryFatalNotRetried(t *testing.T) {
	attempts := 0
	fatal := FatalError{Err: errors.New("malformed url")}
	err := Retry(fastPolicy(), func(attempt int) error {
		attempts++
		return fatal
	}, nil)

	assert.Equal(t, 1, attempts)
	assert.True(t, IsFatal(err))

	var exhausted *ExhaustedError
	assert.False(t, errors.As(err, &exhausted))
}

func TestBackoffMonotonic(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, JitterRatio: 0}
	prev := time.Duration(0)
	for attempt := 1; attempt <= 5; attempt++ {
		d := Backoff(p, attempt)
		assert.GreaterOrEqual(t, d, prev, "attempt %d", attempt)
		assert.Equal(t, p.BaseDelay*time.Duration(1<<(attempt-1)), d)
		prev = d
	}
}

func TestBackoffJitterBounds(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond, JitterRatio: 0.5}
	base := 200 * time.Millisecond // attempt 2
	for i := 0; i < 100; i++ {
		d := Backoff(p, 2)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+base/2)
	}
}

func TestErrorClassification(t *testing.T) {
	wrapped := TransientError{Err: errors.New("timeout")}
	assert.True(t, IsTransient(wrapped))
	assert.False(t, IsBlocked(wrapped))
	assert.False(t, IsFatal(wrapped))

	blocked := BlockedError{URL: "u", Err: errors.New("403")}
	assert.True(t, IsBlocked(blocked))

	// Classification survives fmt wrapping.
	assert.True(t, IsBlocked(errors.Join(errors.New("outer"), blocked)))
}
