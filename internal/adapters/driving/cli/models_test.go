package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
)

func TestModelsList(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	require.NoError(t, ts.settings.SetModel("gpt-4.1"))

	out, err := executeCommand(t, "", "models", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "OpenAI (cloud)")
	assert.Contains(t, out, "Gemini (cloud)")
	assert.Contains(t, out, "* gpt-4.1 ")
	assert.Contains(t, out, "gpt-3.5-turbo-instruct")
	assert.Contains(t, out, "completion")
	assert.Contains(t, out, "responses")
}

func TestModelsList_ProviderFilter(t *testing.T) {
	out, err := executeCommand(t, "", "models", "list", "--provider", "gemini")

	require.NoError(t, err)
	assert.Contains(t, out, "gemini-2.5-pro")
	assert.NotContains(t, out, "gpt-4o")
}

func TestModelsValidate(t *testing.T) {
	t.Run("all pass", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.validator.checks = []domain.ModelCheck{
			{Model: domain.ModelDescriptor{ID: "gpt-4o"}, Passed: true, Latency: 320 * time.Millisecond},
			{Model: domain.ModelDescriptor{ID: "gemini-2.5-flash"}, Passed: true},
		}

		out, err := executeCommand(t, "", "models", "validate")

		require.NoError(t, err)
		assert.Contains(t, out, "PASS")
		assert.Contains(t, out, "gpt-4o")
		assert.Contains(t, out, "(320ms)")
		assert.Contains(t, out, "2 passed, 0 failed")
		assert.Equal(t, []domain.AIProvider{domain.AIProviderOpenAI, domain.AIProviderGemini}, ts.validator.providers)
	})

	t.Run("failure reported with kind", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.validator.checks = []domain.ModelCheck{
			{Model: domain.ModelDescriptor{ID: "gemini-2.0-flash"}, Kind: domain.ErrorKindNotFound, Message: "model retired"},
		}

		out, err := executeCommand(t, "", "models", "validate", "-p", "gemini", "--gemini-key", "AIza-override")

		require.ErrorIs(t, err, errReported)
		assert.Contains(t, out, "FAIL not_found")
		assert.Contains(t, out, "model retired")
		assert.Contains(t, out, "0 passed, 1 failed")
		assert.Equal(t, []domain.AIProvider{domain.AIProviderGemini}, ts.validator.providers)
		assert.Equal(t, "AIza-override", ts.validator.keys[domain.AIProviderGemini])
		assert.NotContains(t, ts.validator.keys, domain.AIProviderOpenAI)
	})

	t.Run("interrupted", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.validator.err = context.Canceled

		_, err := executeCommand(t, "", "models", "validate")

		require.ErrorIs(t, err, context.Canceled)
		assert.Contains(t, err.Error(), "validation interrupted")
	})

	t.Run("local is rejected", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		_, err := executeCommand(t, "", "models", "validate", "--provider", "local")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a hosted provider")
	})

	t.Run("validator not configured", func(t *testing.T) {
		_, err := executeCommand(t, "", "models", "validate")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "model validator not configured")
	})
}

func TestParseHostedProviders(t *testing.T) {
	providers, err := parseHostedProviders([]string{" OpenAI ", "gemini"})
	require.NoError(t, err)
	assert.Equal(t, []domain.AIProvider{domain.AIProviderOpenAI, domain.AIProviderGemini}, providers)

	providers, err = parseHostedProviders(nil)
	require.NoError(t, err)
	assert.Len(t, providers, 2)
}
