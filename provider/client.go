// Package provider defines the outbound model-call interface consumed by the
// consensus engine.
//
// The engine never talks to a model endpoint directly; every completion goes
// through a Client passed in explicitly at construction time. This keeps the
// engine testable (see MockClient) and avoids hidden initialization-order
// dependencies on ambient global state.
//
// # Usage
//
// Create a client using the registry:
//
//	client, err := provider.New("openai", provider.Config{
//	    BaseURL: "https://api.example.com",
//	    APIKey:  os.Getenv("QUORUM_API_KEY"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Or construct a concrete client directly and hand it to the engine.
package provider

import (
	"context"
	"time"
)

// Client is the unified interface for model completion backends.
// Implementations must be safe for concurrent use: the consensus engine
// issues completions for all analysts concurrently against one Client.
type Client interface {
	// Complete sends a request and returns the full response.
	// The context controls cancellation and timeouts.
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request configures a single completion call.
type Request struct {
	// Model specifies which model to use (backend-specific name).
	// Examples: "claude-sonnet-4", "gpt-5-mini", "deepseek-v3"
	Model string `json:"model"`

	// SystemPrompt sets the system message that guides the model's behavior.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Prompt is the user message to complete.
	Prompt string `json:"prompt"`

	// MaxTokens limits the response length.
	MaxTokens int `json:"max_tokens,omitempty"`
}

// Response is the output of a completion call.
type Response struct {
	// Content is the text response from the model.
	Content string `json:"content"`

	// TokensUsed is the total token consumption for this request
	// (input plus output, as reported by the backend).
	TokensUsed int `json:"tokens_used"`

	// Model is the actual model used (may differ from requested when the
	// backend maps aliases).
	Model string `json:"model"`

	// Duration is the time taken for the completion.
	Duration time.Duration `json:"duration"`
}
