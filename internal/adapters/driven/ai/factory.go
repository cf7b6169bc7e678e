// Package ai provides factory functions for creating text-generation adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	geminillm "github.com/custodia-labs/vaultqa/internal/adapters/driven/llm/gemini"
	localllm "github.com/custodia-labs/vaultqa/internal/adapters/driven/llm/local"
	openaillm "github.com/custodia-labs/vaultqa/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Ensure Factory implements the interface.
var _ driven.GeneratorFactory = (*Factory)(nil)

// Factory builds the generator for the effective provider of a settings
// record. Credentials are read from the secret store on every build so a
// changed key takes effect on the next request.
type Factory struct {
	secrets  driven.SecretStore
	baseURLs map[domain.AIProvider]string
}

// NewFactory creates a generator factory.
func NewFactory(secrets driven.SecretStore) *Factory {
	return &Factory{
		secrets:  secrets,
		baseURLs: make(map[domain.AIProvider]string),
	}
}

// SetBaseURL overrides the API origin for a hosted provider, for proxies and
// compatible gateways.
func (f *Factory) SetBaseURL(provider domain.AIProvider, baseURL string) {
	f.baseURLs[provider] = baseURL
}

// NewGenerator returns the generator for settings.EffectiveProvider().
func (f *Factory) NewGenerator(settings domain.Settings) (driven.Generator, error) {
	provider := settings.EffectiveProvider()
	if provider == domain.AIProviderLocal {
		return CreateGenerator(provider, settings.LocalModel, "", settings.LocalBaseURL)
	}

	apiKey, err := f.APIKey(provider)
	if err != nil {
		return nil, err
	}
	return CreateGenerator(provider, settings.Model, apiKey, f.baseURLs[provider])
}

// APIKey reads the credential for a hosted provider.
func (f *Factory) APIKey(provider domain.AIProvider) (string, error) {
	if f.secrets == nil {
		return "", fmt.Errorf("no credential store configured")
	}
	key, err := f.secrets.Get(provider)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("read %s credential: %w", provider, err)
	}
	if key == "" {
		return "", fmt.Errorf("no API key configured for %s. Run 'vaultqa settings key %s' to fix",
			provider.DisplayName(), provider)
	}
	return key, nil
}

// Validate builds the generator for settings and pings it.
// This is intended for the settings command to check credentials.
func (f *Factory) Validate(ctx context.Context, settings domain.Settings) error {
	gen, err := f.NewGenerator(settings)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	defer gen.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return gen.Ping(ctx)
}

// CreateGenerator creates the adapter for a provider.
func CreateGenerator(provider domain.AIProvider, model, apiKey, baseURL string) (driven.Generator, error) {
	switch provider {
	case domain.AIProviderOpenAI:
		return openaillm.NewGenerator(openaillm.Config{
			APIKey:  apiKey,
			BaseURL: baseURL,
			Model:   model,
		})

	case domain.AIProviderGemini:
		return geminillm.NewGenerator(geminillm.Config{
			APIKey:  apiKey,
			BaseURL: baseURL,
			Model:   model,
		})

	case domain.AIProviderLocal:
		return localllm.NewGenerator(localllm.Config{
			BaseURL: baseURL,
			Model:   model,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
