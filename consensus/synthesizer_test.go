package consensus_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/quorum/budget"
	"github.com/randalmurphal/quorum/consensus"
	"github.com/randalmurphal/quorum/provider"
	"github.com/randalmurphal/quorum/ratelimit"
)

func synthOpts() consensus.SynthesizeOptions {
	return consensus.SynthesizeOptions{
		Config:      consensus.SynthesizerConfig{Model: "opus", MaxTokens: 2000, Label: "Synthesizer"},
		Limiter:     ratelimit.NewLimiter(1000),
		Budget:      budget.NewTracker(100.0, 1_000_000),
		PerModelRPM: 1000,
	}
}

func TestSynthesize_AllSentinelInputs(t *testing.T) {
	client := provider.NewMockClient("must not be called")
	engine := consensus.New(client)

	analyses := []consensus.AnalystResult{
		{Role: "analyst", Content: consensus.SentinelSkipped},
		{Role: "skeptic", Content: consensus.SentinelSkipped},
	}

	var doneFired bool
	opts := synthOpts()
	opts.Callbacks = consensus.Callbacks{
		OnSynthesisDone: func(elapsed time.Duration) { doneFired = true },
	}

	result, err := engine.Synthesize(context.Background(), "question", analyses, opts)
	require.NoError(t, err)

	assert.Equal(t, consensus.SentinelNoValidAnalyses, result.Content)
	assert.Equal(t, 0, result.TokensUsed)
	assert.Equal(t, 0, client.CallCount(), "degraded synthesis must not call the model")
	assert.True(t, doneFired)
}

func TestSynthesize_EmptyInput(t *testing.T) {
	client := provider.NewMockClient("must not be called")
	engine := consensus.New(client)

	result, err := engine.Synthesize(context.Background(), "question", nil, synthOpts())
	require.NoError(t, err)

	assert.Equal(t, consensus.SentinelNoValidAnalyses, result.Content)
	assert.Equal(t, 0, client.CallCount())
}

func TestSynthesize_FiltersSentinelsAndEmpties(t *testing.T) {
	client := provider.NewMockClient("condensed answer").WithTokens(800)
	engine := consensus.New(client)

	analyses := []consensus.AnalystResult{
		{Role: "analyst", Label: "Analyst", Icon: "A", Model: "model-a", Content: "first valid"},
		{Role: "skeptic", Content: consensus.SentinelSkipped},
		{Role: "creative", Content: "[Error: backend down]"},
		{Role: "pragmatist", Content: ""},
		{Role: "researcher", Label: "Researcher", Icon: "R", Model: "model-r", Content: "second valid"},
	}

	result, err := engine.Synthesize(context.Background(), "the question", analyses, synthOpts())
	require.NoError(t, err)
	assert.Equal(t, "condensed answer", result.Content)
	assert.Equal(t, 800, result.TokensUsed)

	require.Equal(t, 1, client.CallCount(), "exactly one synthesis call")
	call := client.LastCall()
	require.NotNil(t, call)

	assert.Contains(t, call.Prompt, "the question")
	assert.Contains(t, call.Prompt, "A Analyst (model-a):\nfirst valid")
	assert.Contains(t, call.Prompt, "R Researcher (model-r):\nsecond valid")
	assert.NotContains(t, call.Prompt, consensus.SentinelSkipped)
	assert.NotContains(t, call.Prompt, "backend down")

	// Given order is preserved in the built prompt.
	assert.Less(t,
		strings.Index(call.Prompt, "first valid"),
		strings.Index(call.Prompt, "second valid"))
}

func TestSynthesize_RecordsUsage(t *testing.T) {
	client := provider.NewMockClient("answer").WithTokens(500)
	engine := consensus.New(client)

	opts := synthOpts()
	analyses := []consensus.AnalystResult{{Role: "analyst", Content: "valid"}}

	_, err := engine.Synthesize(context.Background(), "q", analyses, opts)
	require.NoError(t, err)

	assert.Equal(t, 500, opts.Budget.TokensUsed())
	assert.InDelta(t, budget.EstimateCost("opus", 500), opts.Budget.Spent(), 1e-12)
}

func TestSynthesize_NoBudgetPreCheck(t *testing.T) {
	// The synthesizer deliberately skips CanAfford: even with the budget
	// already exhausted, the synthesis call still goes out.
	client := provider.NewMockClient("answer").WithTokens(100)
	engine := consensus.New(client)

	opts := synthOpts()
	opts.Budget = budget.NewTracker(0.0001, 10) // nothing is affordable
	analyses := []consensus.AnalystResult{{Role: "analyst", Content: "valid"}}

	result, err := engine.Synthesize(context.Background(), "q", analyses, opts)
	require.NoError(t, err)

	assert.Equal(t, "answer", result.Content)
	assert.Equal(t, 1, client.CallCount())
}

func TestSynthesize_FailureSentinel(t *testing.T) {
	client := provider.NewMockClient("").WithError(errors.New("string error"))
	engine := consensus.New(client)

	var doneFired bool
	opts := synthOpts()
	opts.Callbacks = consensus.Callbacks{
		OnSynthesisDone: func(elapsed time.Duration) { doneFired = true },
	}
	analyses := []consensus.AnalystResult{{Role: "analyst", Content: "valid"}}

	result, err := engine.Synthesize(context.Background(), "q", analyses, opts)
	require.NoError(t, err)

	assert.Equal(t, "[Synthesis error: string error]", result.Content)
	assert.Equal(t, 0, result.TokensUsed)
	assert.True(t, doneFired, "done fires on the failure path too")
	assert.Equal(t, 0.0, opts.Budget.Spent(), "failed synthesis records nothing")
}

func TestSynthesize_StartBeforeDone(t *testing.T) {
	engine := consensus.New(provider.NewMockClient("answer"))

	var order []string
	opts := synthOpts()
	opts.Callbacks = consensus.Callbacks{
		OnSynthesisStart: func() { order = append(order, "start") },
		OnSynthesisDone:  func(elapsed time.Duration) { order = append(order, "done") },
	}

	_, err := engine.Synthesize(context.Background(), "q",
		[]consensus.AnalystResult{{Role: "analyst", Content: "valid"}}, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "done"}, order)
}

func TestSynthesize_ZeroRPMIsFatal(t *testing.T) {
	client := provider.NewMockClient("never")
	engine := consensus.New(client)

	opts := synthOpts()
	opts.PerModelRPM = 0

	_, err := engine.Synthesize(context.Background(), "q",
		[]consensus.AnalystResult{{Role: "analyst", Content: "valid"}}, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, ratelimit.ErrZeroRefillRate)
	assert.Equal(t, 0, client.CallCount())
}
