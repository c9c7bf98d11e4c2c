package retry

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Backoff yields exponentially growing delays with ±20% jitter.
// It is safe for concurrent use.
type Backoff struct {
	minDelay   time.Duration
	maxDelay   time.Duration
	multiplier float64
	current    time.Duration
	attempts   int
	mu         sync.Mutex
}

// NewBackoff creates a backoff starting at min and capped at max.
// A multiplier below 1 is treated as 2.
func NewBackoff(min, max time.Duration, mult float64) *Backoff {
	if mult < 1 {
		mult = 2
	}
	if max < min {
		max = min
	}
	return &Backoff{
		minDelay:   min,
		maxDelay:   max,
		multiplier: mult,
		current:    min,
	}
}

// Next returns the delay before the next attempt and advances the sequence.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.attempts++

	jitterFactor := rand.Float64()*0.4 - 0.2
	jitter := time.Duration(jitterFactor * float64(b.current))
	wait := max(b.current+jitter, b.minDelay)

	b.current = min(time.Duration(float64(b.current)*b.multiplier), b.maxDelay)

	return wait
}

// Reset returns the sequence to its first delay.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.minDelay
	b.attempts = 0
}

// Attempts returns how many delays have been handed out since the last reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// Do calls fn until it succeeds, attempts are exhausted or ctx is done.
// It sleeps b.Next() between attempts and returns the last error.
func Do(ctx context.Context, attempts int, b *Backoff, fn func(attempt int) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(b.Next())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
