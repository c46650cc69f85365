package consensus

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/quorum/budget"
	"github.com/randalmurphal/quorum/prompts"
	"github.com/randalmurphal/quorum/provider"
	"github.com/randalmurphal/quorum/ratelimit"
)

// DistributeOptions bundles the per-run collaborators for a fan-out.
// Limiter and Budget are shared with the synthesis step of the same run.
type DistributeOptions struct {
	Analysts    []AnalystConfig
	Limiter     *ratelimit.Limiter
	Budget      *budget.Tracker
	PerModelRPM int
	Callbacks   Callbacks
}

// Distribute runs every configured analyst concurrently against prompt and
// returns one AnalystResult per analyst, in configuration order regardless
// of completion order.
//
// Per-analyst failures never escape: a budget veto yields SentinelSkipped
// and a model-call failure yields an "[Error: ...]" content, both with zero
// tokens. The only returned error is a fatal rate-limiter configuration
// error (see ratelimit.ErrZeroRefillRate) or context cancellation, either
// of which aborts the run.
func (e *Engine) Distribute(ctx context.Context, prompt string, opts DistributeOptions) ([]AnalystResult, error) {
	results := make([]AnalystResult, len(opts.Analysts))

	g, ctx := errgroup.WithContext(ctx)
	for i, a := range opts.Analysts {
		i, a := i, a
		g.Go(func() error {
			res, err := e.runAnalyst(ctx, prompt, a, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runAnalyst executes a single analyst call: admission control, the model
// call, and budget recording. All soft failures are folded into the result.
func (e *Engine) runAnalyst(ctx context.Context, prompt string, a AnalystConfig, opts DistributeOptions) (AnalystResult, error) {
	start := time.Now()
	opts.Callbacks.analystStart(a.Role)

	res := AnalystResult{
		Role:  a.Role,
		Label: a.Label,
		Icon:  a.Icon,
		Model: a.Model,
	}

	if err := opts.Limiter.Acquire(ctx, a.Model, opts.PerModelRPM); err != nil {
		// Configuration errors and cancellation are fatal to the run.
		return AnalystResult{}, err
	}

	if !opts.Budget.CanAfford(a.Model, a.MaxTokens) {
		e.logger.Warn("analyst skipped, budget exceeded",
			"role", a.Role,
			"model", a.Model,
			"max_tokens", a.MaxTokens,
			"spent", opts.Budget.Spent())
		res.Content = SentinelSkipped
		res.Duration = time.Since(start)
		opts.Callbacks.analystDone(a.Role, res.Duration)
		return res, nil
	}

	resp, err := e.client.Complete(ctx, provider.Request{
		Model:        a.Model,
		SystemPrompt: prompts.ForRole(a.Role),
		Prompt:       prompt,
		MaxTokens:    a.MaxTokens,
	})
	if err != nil {
		e.logger.Warn("analyst call failed",
			"role", a.Role,
			"model", a.Model,
			"error", err)
		res.Content = ErrorContent(err.Error())
	} else {
		opts.Budget.Record(a.Model, resp.TokensUsed)
		res.Content = resp.Content
		res.TokensUsed = resp.TokensUsed
	}

	res.Duration = time.Since(start)
	opts.Callbacks.analystDone(a.Role, res.Duration)
	return res, nil
}
