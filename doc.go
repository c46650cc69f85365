// Package quorum provides building blocks for multi-model consensus runs.
//
// quorum fans a single prompt out to several independently configured
// "analyst" model calls, collects their answers under rate and budget
// constraints, and condenses them through one synthesis call into a single
// result. Each subpackage can be used independently:
//
//   - consensus: the orchestration engine (distributor, synthesizer, pipeline)
//   - ratelimit: dual token-bucket admission control (per-model + global)
//   - budget: run-scoped cost and token ceilings with a static price table
//   - provider: the outbound model-call interface and provider registry
//   - openai: provider.Client for OpenAI-compatible HTTP endpoints
//   - prompts: analyst role prompts and the synthesis prompt
//   - tokens: token counting and model context limits
//   - config: TOML/YAML run configuration loading and watching
//
// # Quick Start
//
//	import (
//	    "github.com/randalmurphal/quorum/consensus"
//	    "github.com/randalmurphal/quorum/openai"
//	)
//
//	client := openai.NewClient(openai.WithBaseURL("https://api.example.com"))
//	engine := consensus.New(client)
//	result, err := engine.Run(ctx, "Should we rewrite the scheduler?", cfg, consensus.Callbacks{})
//
// # Design Philosophy
//
//   - Explicit dependencies: the model client is passed in, never ambient
//   - Each package usable independently
//   - Interfaces for extensibility, concrete types for simplicity
//   - Sensible defaults with full configurability
package quorum
