package consensus_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/quorum/budget"
	"github.com/randalmurphal/quorum/consensus"
	"github.com/randalmurphal/quorum/provider"
	"github.com/randalmurphal/quorum/ratelimit"
)

func runConfig() consensus.Config {
	return consensus.Config{
		Analysts: []consensus.AnalystConfig{
			{Role: "analyst", Model: "sonnet", MaxTokens: 1000, Label: "Analyst", Icon: "A"},
			{Role: "skeptic", Model: "sonnet", MaxTokens: 1000, Label: "Skeptic", Icon: "S"},
		},
		Synthesizer: consensus.SynthesizerConfig{Model: "opus", MaxTokens: 2000, Label: "Synthesizer"},
		RateLimits: consensus.RateLimits{
			PerModelRPM:       1000,
			GlobalRPM:         1000,
			MaxTokensPerCycle: 1_000_000,
			MaxCostPerCycle:   100.0,
		},
	}
}

func TestRun_TotalsAndOrder(t *testing.T) {
	// Two analysts at 400 and 350 tokens, synthesis at 800: 1550 total.
	client := provider.NewMockClient("").
		WithResponses("analysis one", "analysis two", "the synthesis").
		WithResponseTokens(400, 350, 800)
	engine := consensus.New(client)

	result, err := engine.Run(context.Background(), "the question", runConfig(), consensus.Callbacks{})
	require.NoError(t, err)

	assert.Equal(t, 1550, result.TotalTokens)
	assert.Equal(t, "the question", result.Prompt)
	assert.Equal(t, "the synthesis", result.Synthesis.Content)
	assert.Equal(t, 800, result.Synthesis.TokensUsed)

	require.Len(t, result.Analyses, 2)
	assert.Equal(t, "analyst", result.Analyses[0].Role)
	assert.Equal(t, "skeptic", result.Analyses[1].Role)

	sum := result.Synthesis.TokensUsed
	for _, a := range result.Analyses {
		sum += a.TokensUsed
	}
	assert.Equal(t, result.TotalTokens, sum)

	wantCost := budget.EstimateCost("sonnet", 750) + budget.EstimateCost("opus", 800)
	assert.InDelta(t, wantCost, result.EstimatedCost, 1e-9)

	assert.Greater(t, result.TotalDuration, time.Duration(0))
	assert.Equal(t, 3, client.CallCount())
}

func TestRun_FreshStatePerRun(t *testing.T) {
	// The token ceiling admits one run (1600 tokens) but not two runs'
	// worth; a second run on the same engine must start from zero.
	client := provider.NewMockClient("").
		WithResponses("a", "b", "s").
		WithResponseTokens(400, 400, 800)
	engine := consensus.New(client)

	cfg := runConfig()
	cfg.RateLimits.MaxTokensPerCycle = 2000

	for i := 0; i < 2; i++ {
		result, err := engine.Run(context.Background(), "q", cfg, consensus.Callbacks{})
		require.NoError(t, err)
		for _, a := range result.Analyses {
			assert.NotEqual(t, consensus.SentinelSkipped, a.Content,
				"run %d: budget state leaked across runs", i)
		}
	}
}

func TestRun_ZeroGlobalRPMIsFatal(t *testing.T) {
	client := provider.NewMockClient("never")
	engine := consensus.New(client)

	cfg := runConfig()
	cfg.RateLimits.GlobalRPM = 0

	_, err := engine.Run(context.Background(), "q", cfg, consensus.Callbacks{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ratelimit.ErrZeroRefillRate)
	assert.Equal(t, 0, client.CallCount())
}

func TestRun_CallbackPhases(t *testing.T) {
	client := provider.NewMockClient("content").WithTokens(10)
	engine := consensus.New(client)

	var analystDones atomic.Int32
	var synthesisAfterAnalysts bool
	cb := consensus.Callbacks{
		OnAnalystDone: func(role string, elapsed time.Duration) { analystDones.Add(1) },
		OnSynthesisStart: func() {
			synthesisAfterAnalysts = analystDones.Load() == 2
		},
	}

	_, err := engine.Run(context.Background(), "q", runConfig(), cb)
	require.NoError(t, err)

	assert.Equal(t, int32(2), analystDones.Load())
	assert.True(t, synthesisAfterAnalysts, "synthesis starts only after all analysts settle")
}

func TestRun_SkippedResultsStillReachSynthesizer(t *testing.T) {
	// Budget admits no analyst call; the full (all-sentinel) sequence still
	// flows into the synthesizer, which degrades gracefully.
	client := provider.NewMockClient("never")
	engine := consensus.New(client)

	cfg := runConfig()
	cfg.RateLimits.MaxCostPerCycle = 0.000001
	cfg.RateLimits.MaxTokensPerCycle = 1

	result, err := engine.Run(context.Background(), "q", cfg, consensus.Callbacks{})
	require.NoError(t, err)

	require.Len(t, result.Analyses, 2)
	assert.Equal(t, consensus.SentinelSkipped, result.Analyses[0].Content)
	assert.Equal(t, consensus.SentinelNoValidAnalyses, result.Synthesis.Content)
	assert.Equal(t, 0, result.TotalTokens)
	assert.Equal(t, 0.0, result.EstimatedCost)
	assert.Equal(t, 0, client.CallCount())
}
