// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
)

// Generator produces text from a prompt using one backend.
//
// Implementations include:
//   - OpenAI (chat, legacy completion and responses request shapes)
//   - Gemini (generateContent)
//   - Local OpenAI-compatible servers (LM Studio, Ollama, llama.cpp)
//
// Generate performs exactly one outbound call and never retries. On failure
// the returned error is a *domain.GenerationError, or the context's error
// if ctx was cancelled before a response arrived.
type Generator interface {
	// Provider returns the backend this generator talks to.
	Provider() domain.AIProvider

	// ModelName returns the model identifier sent on the wire.
	ModelName() string

	// Generate produces a completion for prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Ping validates the backend is reachable with a minimal request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 2.0 = most random).
	Temperature float64

	// System is the system instruction. Empty sends the prompt alone.
	System string
}

// GeneratorFactory selects and builds a Generator for the given settings.
type GeneratorFactory interface {
	// NewGenerator returns the generator for settings.EffectiveProvider().
	NewGenerator(settings domain.Settings) (Generator, error)
}
