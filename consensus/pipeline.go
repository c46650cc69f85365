package consensus

import (
	"context"
	"time"

	"github.com/randalmurphal/quorum/budget"
	"github.com/randalmurphal/quorum/ratelimit"
)

// Run executes the full pipeline: distribute the prompt across all
// configured analysts, then synthesize their outputs, then aggregate
// totals. A fresh rate limiter and budget tracker are constructed per run
// and never reused across runs.
//
// Run absorbs nothing itself: per-call failures were already folded into
// results by the two phases, and anything that escapes them (a zero-RPM
// configuration error, context cancellation) is fatal and returned.
func (e *Engine) Run(ctx context.Context, prompt string, cfg Config, cb Callbacks) (*Result, error) {
	start := time.Now()

	limiter := ratelimit.NewLimiter(cfg.RateLimits.GlobalRPM)
	tracker := budget.NewTracker(cfg.RateLimits.MaxCostPerCycle, cfg.RateLimits.MaxTokensPerCycle)

	e.logger.Info("consensus run started",
		"analysts", len(cfg.Analysts),
		"synthesizer", cfg.Synthesizer.Model)

	analyses, err := e.Distribute(ctx, prompt, DistributeOptions{
		Analysts:    cfg.Analysts,
		Limiter:     limiter,
		Budget:      tracker,
		PerModelRPM: cfg.RateLimits.PerModelRPM,
		Callbacks:   cb,
	})
	if err != nil {
		return nil, err
	}

	// The full sequence goes in, skipped and errored results included;
	// filtering is the synthesizer's job.
	synthesis, err := e.Synthesize(ctx, prompt, analyses, SynthesizeOptions{
		Config:      cfg.Synthesizer,
		Limiter:     limiter,
		Budget:      tracker,
		PerModelRPM: cfg.RateLimits.PerModelRPM,
		Callbacks:   cb,
	})
	if err != nil {
		return nil, err
	}

	totalTokens := synthesis.TokensUsed
	for _, a := range analyses {
		totalTokens += a.TokensUsed
	}

	result := &Result{
		Prompt:        prompt,
		Analyses:      analyses,
		Synthesis:     synthesis,
		TotalTokens:   totalTokens,
		TotalDuration: time.Since(start),
		EstimatedCost: tracker.Spent(),
	}

	e.logger.Info("consensus run finished",
		"total_tokens", result.TotalTokens,
		"estimated_cost", result.EstimatedCost,
		"duration", result.TotalDuration)

	return result, nil
}
