// Package consensus implements the orchestration engine: it fans one prompt
// out to several independently configured analyst model calls, gates every
// call through shared rate-limit and budget admission control, and condenses
// the valid analyst outputs through a single synthesis call.
//
// The engine takes its model client as an explicit dependency (see New);
// nothing here reads ambient global state. One Engine may serve many runs:
// per-run state (rate limiter, budget tracker) is constructed fresh inside
// Run.
package consensus

import (
	"fmt"
	"strings"
	"time"
)

// AnalystConfig describes one analyst role/model pair.
// Immutable for the duration of a run.
type AnalystConfig struct {
	// Role names the analyst and selects its system prompt.
	Role string `json:"role" yaml:"role" toml:"role"`

	// Model is the backend model identifier for this analyst.
	Model string `json:"model" yaml:"model" toml:"model"`

	// MaxTokens caps the analyst's output and is the estimate used for the
	// pre-call budget check.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`

	Label       string `json:"label" yaml:"label" toml:"label"`
	Icon        string `json:"icon" yaml:"icon" toml:"icon"`
	Description string `json:"description" yaml:"description" toml:"description"`
}

// AnalystResult is the outcome of one analyst call. Exactly one is produced
// per configured analyst per run; failures are absorbed into Content as a
// sentinel string rather than raised.
type AnalystResult struct {
	Role       string        `json:"role"`
	Label      string        `json:"label"`
	Icon       string        `json:"icon"`
	Model      string        `json:"model"`
	Content    string        `json:"content"`
	TokensUsed int           `json:"tokens_used"`
	Duration   time.Duration `json:"duration"`
}

// SynthesizerConfig describes the single condensation call.
type SynthesizerConfig struct {
	Model       string `json:"model" yaml:"model" toml:"model"`
	MaxTokens   int    `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
	Label       string `json:"label" yaml:"label" toml:"label"`
	Description string `json:"description" yaml:"description" toml:"description"`
}

// SynthesisResult is the outcome of the condensation step.
type SynthesisResult struct {
	Content    string        `json:"content"`
	TokensUsed int           `json:"tokens_used"`
	Duration   time.Duration `json:"duration"`
}

// Result is the terminal artifact of a run. It is never mutated after
// construction.
type Result struct {
	// Prompt is the original user prompt.
	Prompt string `json:"prompt"`

	// Analyses holds one result per configured analyst, in configuration
	// order (not completion order).
	Analyses []AnalystResult `json:"analyses"`

	// Synthesis is the condensed answer.
	Synthesis SynthesisResult `json:"synthesis"`

	// TotalTokens is the sum of all analyst tokens plus synthesis tokens.
	TotalTokens int `json:"total_tokens"`

	// TotalDuration is the wall-clock time of the whole pipeline.
	TotalDuration time.Duration `json:"total_duration"`

	// EstimatedCost is the budget tracker's cumulative spend at completion.
	EstimatedCost float64 `json:"estimated_cost"`
}

// RateLimits holds the admission-control ceilings for a run.
type RateLimits struct {
	// PerModelRPM is the requests-per-minute ceiling per distinct model.
	PerModelRPM int `json:"per_model_rpm" yaml:"per_model_rpm" toml:"per_model_rpm"`

	// GlobalRPM is the aggregate requests-per-minute ceiling.
	GlobalRPM int `json:"global_rpm" yaml:"global_rpm" toml:"global_rpm"`

	// MaxTokensPerCycle caps cumulative tokens for one run.
	MaxTokensPerCycle int `json:"max_tokens_per_cycle" yaml:"max_tokens_per_cycle" toml:"max_tokens_per_cycle"`

	// MaxCostPerCycle caps cumulative estimated spend (USD) for one run.
	MaxCostPerCycle float64 `json:"max_cost_per_cycle" yaml:"max_cost_per_cycle" toml:"max_cost_per_cycle"`
}

// Default admission-control ceilings, applied by the config loader to
// unset fields.
const (
	DefaultPerModelRPM       = 10
	DefaultGlobalRPM         = 30
	DefaultMaxTokensPerCycle = 50_000
	DefaultMaxCostPerCycle   = 1.0
)

// ApplyDefaults fills unset (zero) fields with the package defaults.
func (r *RateLimits) ApplyDefaults() {
	if r.PerModelRPM == 0 {
		r.PerModelRPM = DefaultPerModelRPM
	}
	if r.GlobalRPM == 0 {
		r.GlobalRPM = DefaultGlobalRPM
	}
	if r.MaxTokensPerCycle == 0 {
		r.MaxTokensPerCycle = DefaultMaxTokensPerCycle
	}
	if r.MaxCostPerCycle == 0 {
		r.MaxCostPerCycle = DefaultMaxCostPerCycle
	}
}

// OutputConfig holds display-preference flags consumed only by presentation
// layers; the engine never reads them.
type OutputConfig struct {
	ShowAnalyses  bool   `json:"show_analyses" yaml:"show_analyses" toml:"show_analyses"`
	ShowCost      bool   `json:"show_cost" yaml:"show_cost" toml:"show_cost"`
	ShowDurations bool   `json:"show_durations" yaml:"show_durations" toml:"show_durations"`
	Format        string `json:"format" yaml:"format" toml:"format"`
}

// Config is the full configuration for a run.
// Analysts is an ordered slice: result order follows it.
type Config struct {
	Analysts    []AnalystConfig   `json:"analysts" yaml:"analysts" toml:"analysts"`
	Synthesizer SynthesizerConfig `json:"synthesizer" yaml:"synthesizer" toml:"synthesizer"`
	RateLimits  RateLimits        `json:"rate_limits" yaml:"rate_limits" toml:"rate_limits"`
	Output      OutputConfig      `json:"output" yaml:"output" toml:"output"`
}

// Validate checks structural validity. It does not reject unknown roles
// (they fall back to the generic analyst prompt) and does not reject zero
// rate limits (those surface as a fatal configuration error at run time).
func (c *Config) Validate() error {
	for i, a := range c.Analysts {
		if a.Role == "" {
			return fmt.Errorf("analysts[%d]: role is required", i)
		}
		if a.Model == "" {
			return fmt.Errorf("analyst %q: model is required", a.Role)
		}
		if a.MaxTokens <= 0 {
			return fmt.Errorf("analyst %q: max_tokens must be > 0, got %d", a.Role, a.MaxTokens)
		}
	}
	if c.Synthesizer.Model == "" {
		return fmt.Errorf("synthesizer: model is required")
	}
	if c.Synthesizer.MaxTokens <= 0 {
		return fmt.Errorf("synthesizer: max_tokens must be > 0, got %d", c.Synthesizer.MaxTokens)
	}
	if c.RateLimits.PerModelRPM < 0 || c.RateLimits.GlobalRPM < 0 {
		return fmt.Errorf("rate_limits: rpm values must be >= 0")
	}
	if c.RateLimits.MaxCostPerCycle < 0 {
		return fmt.Errorf("rate_limits: max_cost_per_cycle must be >= 0")
	}
	if c.RateLimits.MaxTokensPerCycle < 0 {
		return fmt.Errorf("rate_limits: max_tokens_per_cycle must be >= 0")
	}
	return nil
}

// Sentinel contents. These appear in place of genuine model output and pass
// through unmodified to presentation layers.
const (
	// SentinelSkipped marks an analyst skipped by the budget gate.
	SentinelSkipped = "[Skipped: budget exceeded]"

	// SentinelNoValidAnalyses is the synthesis result when every analyst
	// output was empty, skipped, or errored.
	SentinelNoValidAnalyses = "[Synthesis error: No valid analyst responses to synthesize]"

	skippedPrefix        = "[Skipped:"
	errorPrefix          = "[Error:"
	synthesisErrorPrefix = "[Synthesis error:"
)

// ErrorContent formats a per-analyst failure sentinel, preserving the
// underlying message verbatim.
func ErrorContent(msg string) string {
	return "[Error: " + msg + "]"
}

// SynthesisErrorContent formats a synthesis failure sentinel.
func SynthesisErrorContent(msg string) string {
	return "[Synthesis error: " + msg + "]"
}

// Usable reports whether an analyst result carries genuine content: neither
// empty nor a skip/error sentinel.
func (r AnalystResult) Usable() bool {
	if r.Content == "" {
		return false
	}
	return !strings.HasPrefix(r.Content, skippedPrefix) &&
		!strings.HasPrefix(r.Content, errorPrefix)
}

// Callbacks are optional progress hooks fired synchronously from within a
// run. They are side-effect-free with respect to engine state; nil fields
// are skipped. Analyst callbacks may interleave arbitrarily across analysts
// but start always precedes done within a single analyst.
type Callbacks struct {
	OnAnalystStart   func(role string)
	OnAnalystDone    func(role string, elapsed time.Duration)
	OnSynthesisStart func()
	OnSynthesisDone  func(elapsed time.Duration)
}

func (c Callbacks) analystStart(role string) {
	if c.OnAnalystStart != nil {
		c.OnAnalystStart(role)
	}
}

func (c Callbacks) analystDone(role string, elapsed time.Duration) {
	if c.OnAnalystDone != nil {
		c.OnAnalystDone(role, elapsed)
	}
}

func (c Callbacks) synthesisStart() {
	if c.OnSynthesisStart != nil {
		c.OnSynthesisStart()
	}
}

func (c Callbacks) synthesisDone(elapsed time.Duration) {
	if c.OnSynthesisDone != nil {
		c.OnSynthesisDone(elapsed)
	}
}
