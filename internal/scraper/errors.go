package scraper

import (
	"errors"
	"fmt"
)

// TransientError indicates a recoverable network failure (timeout,
// connection reset). The retry controller backs off and tries again.
type TransientError struct {
	Err error
}

func (e TransientError) Error() string {
	return fmt.Errorf("transient: %w", e.Err).Error()
}

func (e TransientError) Unwrap() error {
	return e.Err
}

// BlockedError indicates an anti-bot signal (403-like page). Recovery goes
// through the heavier blocked path instead of a plain retry.
type BlockedError struct {
	URL string
	Err error
}

func (e BlockedError) Error() string {
	return fmt.Errorf("blocked %s: %w", e.URL, e.Err).Error()
}

func (e BlockedError) Unwrap() error {
	return e.Err
}

// FatalError indicates a malformed target or an unsupported page shape.
// It is never retried.
type FatalError struct {
	Err error
}

func (e FatalError) Error() string {
	return fmt.Errorf("fatal: %w", e.Err).Error()
}

func (e FatalError) Unwrap() error {
	return e.Err
}

// ExhaustedError is returned when the retry budget is spent.
// BlockedPersistently is set when the final attempt was still blocked, so
// callers can report the category as skipped rather than failed.
type ExhaustedError struct {
	Attempts            int
	BlockedPersistently bool
	Err                 error
}

func (e *ExhaustedError) Error() string {
	if e.BlockedPersistently {
		return fmt.Sprintf("blocked persistently after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("exhausted %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is classified as a transient failure.
func IsTransient(err error) bool {
	var t TransientError
	return errors.As(err, &t)
}

// IsBlocked reports whether err is classified as an anti-bot block.
func IsBlocked(err error) bool {
	var b BlockedError
	return errors.As(err, &b)
}

// IsFatal reports whether err must not be retried.
func IsFatal(err error) bool {
	var f FatalError
	return errors.As(err, &f)
}
