package ai

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driven"
	"github.com/custodia-labs/vaultqa/internal/logger"
)

// Ensure CatalogValidator implements the interface.
var _ driven.CatalogValidator = (*CatalogValidator)(nil)

// checkPrompt is the minimal request sent to each model.
const checkPrompt = "Reply with OK."

// RateLimitConfig paces validation requests per provider.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimit stays well below free-tier quotas of both hosted providers.
var DefaultRateLimit = RateLimitConfig{RequestsPerSecond: 1.0, BurstSize: 2}

// CatalogValidator sends a one-token request to every catalog model of the
// requested providers and reports pass or fail per model. Requests are paced
// by a token bucket per provider; failures are never retried.
type CatalogValidator struct {
	factory  *Factory
	keys     map[domain.AIProvider]string
	limiters map[domain.AIProvider]*rate.Limiter
	cfg      RateLimitConfig
	now      func() time.Time
}

// NewCatalogValidator creates a validator that reads credentials through
// factory unless overridden with SetKey.
func NewCatalogValidator(factory *Factory, cfg RateLimitConfig) *CatalogValidator {
	if cfg.RequestsPerSecond <= 0 {
		cfg = DefaultRateLimit
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	return &CatalogValidator{
		factory:  factory,
		keys:     make(map[domain.AIProvider]string),
		limiters: make(map[domain.AIProvider]*rate.Limiter),
		cfg:      cfg,
		now:      time.Now,
	}
}

// SetKey supplies a credential for a provider, taking precedence over the
// stored one.
func (v *CatalogValidator) SetKey(provider domain.AIProvider, key string) {
	if key != "" {
		v.keys[provider] = key
	}
}

// ValidateCatalog tests each model of each provider in catalog order.
func (v *CatalogValidator) ValidateCatalog(
	ctx context.Context,
	providers []domain.AIProvider,
	report func(domain.ModelCheck),
) ([]domain.ModelCheck, error) {
	var results []domain.ModelCheck

	for _, provider := range providers {
		models := domain.ModelsFor(provider)
		logger.Debug("Validating %d %s models", len(models), provider)

		key, keyErr := v.key(provider)
		for _, model := range models {
			var check domain.ModelCheck
			if keyErr != nil {
				check = domain.ModelCheck{
					Model:   model,
					Kind:    domain.ErrorKindAuthentication,
					Message: keyErr.Error(),
				}
			} else {
				if err := v.limiter(provider).Wait(ctx); err != nil {
					return results, err
				}
				check = v.checkModel(ctx, model, key)
				if ctx.Err() != nil {
					return results, ctx.Err()
				}
			}

			results = append(results, check)
			if report != nil {
				report(check)
			}
		}
	}

	return results, nil
}

// checkModel sends one minimal request and classifies the outcome.
func (v *CatalogValidator) checkModel(ctx context.Context, model domain.ModelDescriptor, key string) domain.ModelCheck {
	check := domain.ModelCheck{Model: model}

	gen, err := CreateGenerator(model.Provider, model.ID, key, v.factory.baseURLs[model.Provider])
	if err != nil {
		check.Kind = domain.ErrorKindUnclassified
		check.Message = err.Error()
		return check
	}
	defer gen.Close()

	start := v.now()
	_, err = gen.Generate(ctx, checkPrompt, driven.GenerateOptions{MaxTokens: 1})
	check.Latency = v.now().Sub(start)

	if err == nil {
		check.Passed = true
		return check
	}

	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		check.Kind = genErr.Kind
		check.Message = genErr.Message
	} else {
		check.Kind = domain.ErrorKindUnclassified
		check.Message = err.Error()
	}
	logger.Debug("Model %s failed: %s", model.ID, check.Message)
	return check
}

func (v *CatalogValidator) key(provider domain.AIProvider) (string, error) {
	if key, ok := v.keys[provider]; ok {
		return key, nil
	}
	return v.factory.APIKey(provider)
}

func (v *CatalogValidator) limiter(provider domain.AIProvider) *rate.Limiter {
	l, ok := v.limiters[provider]
	if !ok {
		l = rate.NewLimiter(rate.Limit(v.cfg.RequestsPerSecond), v.cfg.BurstSize)
		v.limiters[provider] = l
	}
	return l
}
