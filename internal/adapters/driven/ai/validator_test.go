package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
)

var fastRate = RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 10}

// geminiServer answers every model except those listed in missing.
func geminiServer(t *testing.T, missing ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, m := range missing {
			if strings.Contains(r.URL.Path, "/"+m+":") {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":{"code":404,"message":"model retired"}}`))
				return
			}
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"OK"}]}}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewCatalogValidator_Defaults(t *testing.T) {
	v := NewCatalogValidator(NewFactory(nil), RateLimitConfig{})

	assert.Equal(t, DefaultRateLimit, v.cfg)
}

func TestValidateCatalog(t *testing.T) {
	srv := geminiServer(t, "gemini-2.0-flash")
	f := NewFactory(newSecrets("gemini", "g-key"))
	f.SetBaseURL(domain.AIProviderGemini, srv.URL)
	v := NewCatalogValidator(f, fastRate)

	var reported []string
	results, err := v.ValidateCatalog(context.Background(),
		[]domain.AIProvider{domain.AIProviderGemini},
		func(c domain.ModelCheck) { reported = append(reported, c.Model.ID) })

	require.NoError(t, err)
	models := domain.ModelsFor(domain.AIProviderGemini)
	require.Len(t, results, len(models))
	assert.Len(t, reported, len(models))

	for i, check := range results {
		assert.Equal(t, models[i].ID, check.Model.ID)
		if check.Model.ID == "gemini-2.0-flash" {
			assert.False(t, check.Passed)
			assert.Equal(t, domain.ErrorKindNotFound, check.Kind)
			assert.Equal(t, "model retired", check.Message)
			continue
		}
		assert.True(t, check.Passed, check.Model.ID)
	}
}

func TestValidateCatalog_ThinkingModelsPass(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model"},"finishReason":"MAX_TOKENS"}]}`))
	}))
	t.Cleanup(srv.Close)
	f := NewFactory(newSecrets("gemini", "g-key"))
	f.SetBaseURL(domain.AIProviderGemini, srv.URL)
	v := NewCatalogValidator(f, fastRate)

	results, err := v.ValidateCatalog(context.Background(), []domain.AIProvider{domain.AIProviderGemini}, nil)

	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, check := range results {
		assert.True(t, check.Passed, check.Model.ID)
		assert.Empty(t, check.Message)
	}
}

func TestValidateCatalog_MissingKey(t *testing.T) {
	v := NewCatalogValidator(NewFactory(newSecrets()), fastRate)

	results, err := v.ValidateCatalog(context.Background(), []domain.AIProvider{domain.AIProviderOpenAI}, nil)

	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, check := range results {
		assert.False(t, check.Passed)
		assert.Equal(t, domain.ErrorKindAuthentication, check.Kind)
	}
}

func TestValidateCatalog_KeyOverride(t *testing.T) {
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"OK"}]}}]}`))
	}))
	defer srv.Close()

	f := NewFactory(newSecrets("gemini", "stored"))
	f.SetBaseURL(domain.AIProviderGemini, srv.URL)
	v := NewCatalogValidator(f, fastRate)
	v.SetKey(domain.AIProviderGemini, "override")
	v.SetKey(domain.AIProviderOpenAI, "")

	_, err := v.ValidateCatalog(context.Background(), []domain.AIProvider{domain.AIProviderGemini}, nil)

	require.NoError(t, err)
	require.NotEmpty(t, keys)
	for _, k := range keys {
		assert.Equal(t, "override", k)
	}
	_, ok := v.keys[domain.AIProviderOpenAI]
	assert.False(t, ok)
}

func TestValidateCatalog_Cancelled(t *testing.T) {
	srv := geminiServer(t)
	f := NewFactory(newSecrets("gemini", "g-key"))
	f.SetBaseURL(domain.AIProviderGemini, srv.URL)
	v := NewCatalogValidator(f, fastRate)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := v.ValidateCatalog(ctx, []domain.AIProvider{domain.AIProviderGemini}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}
