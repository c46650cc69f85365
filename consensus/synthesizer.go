package consensus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/randalmurphal/quorum/budget"
	"github.com/randalmurphal/quorum/prompts"
	"github.com/randalmurphal/quorum/provider"
	"github.com/randalmurphal/quorum/ratelimit"
	"github.com/randalmurphal/quorum/tokens"
)

// SynthesizeOptions bundles the per-run collaborators for the condensation
// step. Limiter and Budget are the same instances the distributor used.
type SynthesizeOptions struct {
	Config      SynthesizerConfig
	Limiter     *ratelimit.Limiter
	Budget      *budget.Tracker
	PerModelRPM int
	Callbacks   Callbacks
}

// Synthesize condenses the analyst outputs into one answer via a single
// model call. Results whose content is empty or sentinel-prefixed are
// filtered out here, not by the caller; when nothing usable remains the
// call degrades to SentinelNoValidAnalyses without touching the rate
// limiter, the budget, or the model client.
//
// Unlike the distributor, synthesis performs no CanAfford pre-check before
// spending; it only records actual usage afterwards. The asymmetry is
// deliberate and load-bearing for budget accounting: do not "fix" it
// without revisiting the budget contract.
//
// The returned error is non-nil only for a fatal rate-limiter configuration
// error or context cancellation; model-call failures are folded into the
// result content. The done callback fires with the elapsed duration on
// every exit path.
func (e *Engine) Synthesize(ctx context.Context, prompt string, analyses []AnalystResult, opts SynthesizeOptions) (SynthesisResult, error) {
	start := time.Now()
	opts.Callbacks.synthesisStart()
	defer func() {
		opts.Callbacks.synthesisDone(time.Since(start))
	}()

	valid := make([]AnalystResult, 0, len(analyses))
	for _, a := range analyses {
		if a.Usable() {
			valid = append(valid, a)
		}
	}
	if len(valid) == 0 {
		e.logger.Warn("no valid analyst responses to synthesize",
			"total", len(analyses))
		return SynthesisResult{
			Content:  SentinelNoValidAnalyses,
			Duration: time.Since(start),
		}, nil
	}

	input := buildSynthesisPrompt(prompt, valid)
	e.logger.Debug("synthesis prompt built",
		"analyses", len(valid),
		"est_tokens", tokens.Estimate(input))

	if err := opts.Limiter.Acquire(ctx, opts.Config.Model, opts.PerModelRPM); err != nil {
		return SynthesisResult{}, err
	}

	var result SynthesisResult
	resp, err := e.client.Complete(ctx, provider.Request{
		Model:        opts.Config.Model,
		SystemPrompt: prompts.Synthesis,
		Prompt:       input,
		MaxTokens:    opts.Config.MaxTokens,
	})
	if err != nil {
		e.logger.Warn("synthesis call failed",
			"model", opts.Config.Model,
			"error", err)
		result.Content = SynthesisErrorContent(err.Error())
	} else {
		opts.Budget.Record(opts.Config.Model, resp.TokensUsed)
		result.Content = resp.Content
		result.TokensUsed = resp.TokensUsed
	}

	result.Duration = time.Since(start)
	return result, nil
}

// buildSynthesisPrompt concatenates the original prompt and every valid
// analysis, in the order given, tagged with icon, label, and source model.
func buildSynthesisPrompt(prompt string, analyses []AnalystResult) string {
	var b strings.Builder

	b.WriteString("Original prompt:\n")
	b.WriteString(prompt)
	b.WriteString("\n\nIndependent analyses:\n")

	for _, a := range analyses {
		fmt.Fprintf(&b, "\n%s %s (%s):\n%s\n", a.Icon, a.Label, a.Model, a.Content)
	}

	return b.String()
}
