package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMode_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		mode     Mode
		expected bool
	}{
		{name: "query is valid", mode: ModeQuery, expected: true},
		{name: "create is valid", mode: ModeCreate, expected: true},
		{name: "empty string is invalid", mode: Mode(""), expected: false},
		{name: "unknown mode is invalid", mode: Mode("summarise"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.mode.IsValid())
		})
	}
}

func TestAIProvider_ErrorPrefix(t *testing.T) {
	assert.Equal(t, "Error querying OpenAI: ", AIProviderOpenAI.ErrorPrefix())
	assert.Equal(t, "Gemini API Error: ", AIProviderGemini.ErrorPrefix())
	assert.Equal(t, "Error querying local model: ", AIProviderLocal.ErrorPrefix())
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderGemini.RequiresAPIKey())
	assert.False(t, AIProviderLocal.RequiresAPIKey())
	assert.False(t, AIProvider("bogus").IsValid())
}

func TestAIProvider_OwnsModel(t *testing.T) {
	tests := []struct {
		provider AIProvider
		model    string
		expected bool
	}{
		{AIProviderOpenAI, "gpt-4o-mini", true},
		{AIProviderOpenAI, "gpt-4.5-preview", true},
		{AIProviderOpenAI, "o3-mini", true},
		{AIProviderOpenAI, "gemini-2.5-pro", false},
		{AIProviderGemini, "gemini-2.5-pro", true},
		{AIProviderGemini, "gemini-exp-1206", true},
		{AIProviderGemini, "gpt-4o", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider)+"/"+tt.model, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.OwnsModel(tt.model))
		})
	}
}

func TestSettings_SelectProvider(t *testing.T) {
	t.Run("resets model that belongs to another provider", func(t *testing.T) {
		s := DefaultSettings()
		s.Model = "gpt-4o"

		s.SelectProvider(AIProviderGemini)

		assert.Equal(t, AIProviderGemini, s.Provider)
		assert.Equal(t, "gemini-2.5-flash", s.Model)
	})

	t.Run("keeps model that already matches", func(t *testing.T) {
		s := DefaultSettings()
		s.Provider = AIProviderGemini
		s.Model = "gpt-4.1"

		s.SelectProvider(AIProviderOpenAI)

		assert.Equal(t, "gpt-4.1", s.Model)
	})

	t.Run("fills empty model with default", func(t *testing.T) {
		s := Settings{}

		s.SelectProvider(AIProviderOpenAI)

		assert.Equal(t, "gpt-4o-mini", s.Model)
	})
}

func TestSettings_Effective(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, AIProviderOpenAI, s.EffectiveProvider())
	assert.Equal(t, "gpt-4o-mini", s.EffectiveModel())

	s.UseLocal = true
	s.LocalModel = "llama3.2"
	assert.Equal(t, AIProviderLocal, s.EffectiveProvider())
	assert.Equal(t, "llama3.2", s.EffectiveModel())
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, ModeQuery, s.Mode)
	assert.True(t, s.IncludeContext)
	assert.True(t, s.LLMTitles)
	assert.False(t, s.UseLocal)
	assert.False(t, s.CurrentDocumentOnly)
	assert.Equal(t, DefaultMaxTokens, s.MaxTokens)
	assert.InDelta(t, DefaultTemperature, s.Temperature, 0.0001)
	assert.Empty(t, s.ExcludeFolders)
	assert.Equal(t, DefaultLocalBaseURL, s.LocalBaseURL)
}
