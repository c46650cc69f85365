// Package budget enforces cost and token ceilings for a consensus run.
//
// A Tracker holds two monotonically non-decreasing counters, cumulative
// estimated cost and cumulative tokens, and vetoes calls whose estimate
// would push either past its configured cap. One Tracker is scoped to a
// single run; callers must not share a Tracker across concurrent unrelated
// runs if isolation is required.
package budget

import "sync"

// Tracker tracks cumulative estimated spend and token usage for one run.
// Safe for concurrent use: analysts complete concurrently and record their
// usage from separate goroutines.
type Tracker struct {
	mu         sync.Mutex
	maxCost    float64
	maxTokens  int
	spent      float64
	tokensUsed int
}

// NewTracker creates a tracker with the given ceilings.
func NewTracker(maxCost float64, maxTokens int) *Tracker {
	return &Tracker{
		maxCost:   maxCost,
		maxTokens: maxTokens,
	}
}

// EstimateCost returns the estimated dollar cost of tokens on model, using
// the blended price table. Pure function of its inputs; returns 0 for 0
// tokens and is linear in the token count.
func EstimateCost(model string, tokens int) float64 {
	return PriceFor(model) * float64(tokens) / 1_000_000
}

// EstimateCost is the method form of the package-level function, kept on
// Tracker so call sites holding a tracker need no second import.
func (t *Tracker) EstimateCost(model string, tokens int) float64 {
	return EstimateCost(model, tokens)
}

// CanAfford reports whether a call estimated at estimatedTokens on model
// fits within both remaining ceilings. Exactly at a limit is affordable;
// one unit over is not. Read-only with respect to the counters.
func (t *Tracker) CanAfford(model string, estimatedTokens int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cost := EstimateCost(model, estimatedTokens)
	return t.spent+cost <= t.maxCost && t.tokensUsed+estimatedTokens <= t.maxTokens
}

// Record irreversibly adds the actual usage of a completed call to the
// cumulative counters. Call once per successful model call with the actual
// token count, not the pre-call estimate.
func (t *Tracker) Record(model string, actualTokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.spent += EstimateCost(model, actualTokens)
	t.tokensUsed += actualTokens
}

// Spent returns the cumulative estimated cost so far.
func (t *Tracker) Spent() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.spent
}

// TokensUsed returns the cumulative token count so far.
func (t *Tracker) TokensUsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tokensUsed
}

// Reset zeroes both counters. Intended for reuse across independent runs
// only, never mid-run.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.spent = 0
	t.tokensUsed = 0
}
