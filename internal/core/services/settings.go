package services

import (
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driven"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyProvider       = "llm.provider"
	keyModel          = "llm.model"
	keyMaxTokens      = "llm.max_tokens"
	keyTemperature    = "llm.temperature"
	keyUseLocal       = "local.enabled"
	keyLocalBaseURL   = "local.base_url"
	keyLocalModel     = "local.model"
	keyCurrentDocOnly = "context.current_document_only"
	keyIncludeFolder  = "context.include_folder"
	keyExcludeFolders = "context.exclude_folders"
	keyIncludeContext = "context.enabled"
	keyNotesFolder    = "notes.folder"
	keyLLMTitles      = "notes.llm_titles"
	keyMode           = "mode"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings, merging stored values over defaults.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := &domain.Settings{
		Provider:            s.getProvider(d.Provider),
		Model:               s.getString(keyModel, d.Model),
		MaxTokens:           s.getInt(keyMaxTokens, d.MaxTokens),
		Temperature:         s.getFloat(keyTemperature, d.Temperature),
		UseLocal:            s.getBool(keyUseLocal, d.UseLocal),
		LocalBaseURL:        s.getString(keyLocalBaseURL, d.LocalBaseURL),
		LocalModel:          s.getString(keyLocalModel, d.LocalModel),
		CurrentDocumentOnly: s.getBool(keyCurrentDocOnly, d.CurrentDocumentOnly),
		IncludeFolder:       s.configStore.GetString(keyIncludeFolder),
		ExcludeFolders:      s.configStore.GetStringSlice(keyExcludeFolders),
		NotesFolder:         s.getStoredString(keyNotesFolder, d.NotesFolder),
		LLMTitles:           s.getBool(keyLLMTitles, d.LLMTitles),
		IncludeContext:      s.getBool(keyIncludeContext, d.IncludeContext),
		Mode:                s.getMode(d.Mode),
	}

	return settings, nil
}

// Save persists settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if err := validate(settings); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyProvider, settings.Provider.String()},
		{keyModel, settings.Model},
		{keyMaxTokens, settings.MaxTokens},
		{keyTemperature, settings.Temperature},
		{keyUseLocal, settings.UseLocal},
		{keyLocalBaseURL, settings.LocalBaseURL},
		{keyLocalModel, settings.LocalModel},
		{keyCurrentDocOnly, settings.CurrentDocumentOnly},
		{keyIncludeFolder, settings.IncludeFolder},
		{keyExcludeFolders, nonNil(settings.ExcludeFolders)},
		{keyIncludeContext, settings.IncludeContext},
		{keyNotesFolder, settings.NotesFolder},
		{keyLLMTitles, settings.LLMTitles},
		{keyMode, settings.Mode.String()},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetProvider selects the hosted provider. The model is reset to the
// provider's default unless it already follows the provider's naming.
func (s *SettingsService) SetProvider(provider domain.AIProvider) error {
	if !provider.IsHosted() {
		return fmt.Errorf("%w: %q is not a hosted provider", domain.ErrInvalidInput, provider)
	}
	return s.update(func(settings *domain.Settings) error {
		settings.SelectProvider(provider)
		return nil
	})
}

// SetModel selects the hosted model. It must belong to the current provider.
func (s *SettingsService) SetModel(model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return fmt.Errorf("%w: model is required", domain.ErrInvalidInput)
	}
	return s.update(func(settings *domain.Settings) error {
		if !settings.Provider.OwnsModel(model) {
			return fmt.Errorf("%w: model %s does not belong to %s",
				domain.ErrInvalidInput, model, settings.Provider)
		}
		settings.Model = model
		return nil
	})
}

// SetMode sets the default pipeline mode.
func (s *SettingsService) SetMode(mode domain.Mode) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w: invalid mode %q", domain.ErrInvalidInput, mode)
	}
	return s.update(func(settings *domain.Settings) error {
		settings.Mode = mode
		return nil
	})
}

// SetLocal configures the local server. Empty values keep the current ones.
func (s *SettingsService) SetLocal(useLocal bool, baseURL, model string) error {
	return s.update(func(settings *domain.Settings) error {
		settings.UseLocal = useLocal
		if baseURL != "" {
			settings.LocalBaseURL = strings.TrimSpace(baseURL)
		}
		if model != "" {
			settings.LocalModel = strings.TrimSpace(model)
		}
		return nil
	})
}

// SetGeneration sets output length and temperature.
func (s *SettingsService) SetGeneration(maxTokens int, temperature float64) error {
	return s.update(func(settings *domain.Settings) error {
		settings.MaxTokens = maxTokens
		settings.Temperature = temperature
		return nil
	})
}

// SetScope sets the include folder and the current-document-only flag.
func (s *SettingsService) SetScope(includeFolder string, currentDocumentOnly bool) error {
	return s.update(func(settings *domain.Settings) error {
		settings.IncludeFolder = includeFolder
		settings.CurrentDocumentOnly = currentDocumentOnly
		return nil
	})
}

// AddExcludeFolder adds a prefix to the exclusion set. Duplicates are ignored.
func (s *SettingsService) AddExcludeFolder(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("%w: exclude prefix is required", domain.ErrInvalidInput)
	}
	return s.update(func(settings *domain.Settings) error {
		if !slices.Contains(settings.ExcludeFolders, prefix) {
			settings.ExcludeFolders = append(settings.ExcludeFolders, prefix)
		}
		return nil
	})
}

// RemoveExcludeFolder removes a prefix from the exclusion set.
func (s *SettingsService) RemoveExcludeFolder(prefix string) error {
	return s.update(func(settings *domain.Settings) error {
		idx := slices.Index(settings.ExcludeFolders, prefix)
		if idx < 0 {
			return fmt.Errorf("exclude prefix %q: %w", prefix, domain.ErrNotFound)
		}
		settings.ExcludeFolders = slices.Delete(settings.ExcludeFolders, idx, idx+1)
		return nil
	})
}

// SetNotesFolder sets the destination for generated notes.
func (s *SettingsService) SetNotesFolder(folder string) error {
	return s.update(func(settings *domain.Settings) error {
		settings.NotesFolder = strings.Trim(strings.TrimSpace(folder), "/")
		return nil
	})
}

// SetFeatures toggles context inclusion and LLM titling.
func (s *SettingsService) SetFeatures(includeContext, llmTitles bool) error {
	return s.update(func(settings *domain.Settings) error {
		settings.IncludeContext = includeContext
		settings.LLMTitles = llmTitles
		return nil
	})
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// update loads settings, applies fn and persists the result.
func (s *SettingsService) update(fn func(*domain.Settings) error) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := fn(settings); err != nil {
		return err
	}
	return s.Save(settings)
}

// validate checks ranges before anything is persisted.
func validate(settings *domain.Settings) error {
	if !settings.Provider.IsHosted() {
		return fmt.Errorf("%w: invalid provider %q", domain.ErrInvalidInput, settings.Provider)
	}
	if !settings.Mode.IsValid() {
		return fmt.Errorf("%w: invalid mode %q", domain.ErrInvalidInput, settings.Mode)
	}
	if settings.MaxTokens <= 0 {
		return fmt.Errorf("%w: max tokens must be positive", domain.ErrInvalidInput)
	}
	if settings.Temperature < 0 || settings.Temperature > domain.MaxTemperature {
		return fmt.Errorf("%w: temperature must be between 0 and %.0f",
			domain.ErrInvalidInput, domain.MaxTemperature)
	}
	return nil
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

// getStoredString is getString for keys where an empty value is a real
// choice rather than unset.
func (s *SettingsService) getStoredString(key, defaultVal string) string {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetString(key)
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	if val := s.configStore.GetInt(key); val > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return defaultVal
	}
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	p := domain.AIProvider(s.configStore.GetString(keyProvider))
	if p.IsHosted() {
		return p
	}
	return defaultVal
}

func (s *SettingsService) getMode(defaultVal domain.Mode) domain.Mode {
	m := domain.Mode(s.configStore.GetString(keyMode))
	if m.IsValid() {
		return m
	}
	return defaultVal
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
