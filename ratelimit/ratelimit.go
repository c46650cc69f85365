// Package ratelimit provides admission control for outbound model calls.
//
// Limiter implements a dual token-bucket scheme: every call must take one
// token from the bucket of the model it targets and one token from a single
// global bucket shared across all models. Per-model buckets are created
// lazily on first acquisition and sized by the requests-per-minute ceiling
// passed on that first call; later calls for the same model reuse the
// existing bucket and ignore the RPM argument.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// ErrZeroRefillRate indicates an empty bucket that can never refill.
// An acquire against such a bucket would block forever, so it fails
// immediately instead. This is a configuration error and is fatal to
// the run.
var ErrZeroRefillRate = errors.New("zero refill rate")

const msPerMinute = 60_000

// bucket is a continuously refilling token bucket.
// Token count never exceeds capacity and never goes negative: tokens are
// only subtracted after availability is verified under the limiter lock.
type bucket struct {
	tokens      float64
	capacity    float64
	refillPerMs float64
	lastRefill  time.Time
}

func newBucket(rpm float64, now time.Time) *bucket {
	return &bucket{
		tokens:      rpm,
		capacity:    rpm,
		refillPerMs: rpm / msPerMinute,
		lastRefill:  now,
	}
}

// refill adds tokens proportional to the time elapsed since the last
// refill, capped at capacity.
func (b *bucket) refill(now time.Time) {
	elapsed := float64(now.Sub(b.lastRefill)) / float64(time.Millisecond)
	if elapsed <= 0 {
		return
	}
	b.tokens = math.Min(b.capacity, b.tokens+elapsed*b.refillPerMs)
	b.lastRefill = now
}

// waitFor returns how long the bucket needs to accumulate one token,
// or zero if a token is already available.
func (b *bucket) waitFor() time.Duration {
	if b.tokens >= 1 {
		return 0
	}
	ms := math.Ceil((1 - b.tokens) / b.refillPerMs)
	return time.Duration(ms) * time.Millisecond
}

// Limiter throttles the rate of calls per model and in aggregate.
//
// The zero value is not usable; construct with NewLimiter. A Limiter is
// safe for concurrent use: the internal lock serializes check-and-decrement
// on every bucket, so two concurrent acquisitions can never both observe a
// token and drive a bucket negative. Waiting happens outside the lock, so
// acquisitions against different models proceed concurrently.
type Limiter struct {
	mu     sync.Mutex
	global *bucket
	models map[string]*bucket
}

// NewLimiter creates a limiter whose global bucket admits globalRPM
// requests per minute across all models.
func NewLimiter(globalRPM int) *Limiter {
	return &Limiter{
		global: newBucket(float64(globalRPM), time.Now()),
		models: make(map[string]*bucket),
	}
}

// Acquire blocks until one token is available in both the bucket for model
// and the global bucket, then consumes one from each.
//
// perModelRPM sizes the model's bucket the first time that model is seen;
// it is ignored on subsequent calls for the same model.
//
// Returns ErrZeroRefillRate (wrapped) when a required bucket is empty and
// configured with an RPM of 0, and the context error if ctx is done while
// waiting.
func (l *Limiter) Acquire(ctx context.Context, model string, perModelRPM int) error {
	l.mu.Lock()
	b, ok := l.models[model]
	if !ok {
		b = newBucket(float64(perModelRPM), time.Now())
		l.models[model] = b
	}
	l.mu.Unlock()

	for {
		l.mu.Lock()
		now := time.Now()
		b.refill(now)
		l.global.refill(now)

		if b.tokens < 1 && b.refillPerMs == 0 {
			l.mu.Unlock()
			return fmt.Errorf("ratelimit: model %q: %w", model, ErrZeroRefillRate)
		}
		if l.global.tokens < 1 && l.global.refillPerMs == 0 {
			l.mu.Unlock()
			return fmt.Errorf("ratelimit: global bucket: %w", ErrZeroRefillRate)
		}

		if b.tokens >= 1 && l.global.tokens >= 1 {
			b.tokens--
			l.global.tokens--
			l.mu.Unlock()
			return nil
		}

		wait := b.waitFor()
		if gw := l.global.waitFor(); gw > wait {
			wait = gw
		}
		l.mu.Unlock()

		// Wait at least until refill makes one token available, then
		// re-verify before consuming.
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
