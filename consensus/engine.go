package consensus

import (
	"log/slog"

	"github.com/randalmurphal/quorum/provider"
)

// Engine orchestrates consensus runs against one model client.
// The client is the only long-lived dependency; everything run-scoped is
// created inside Run.
type Engine struct {
	client provider.Client
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine that performs all model calls through client.
func New(client provider.Client, opts ...Option) *Engine {
	e := &Engine{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
