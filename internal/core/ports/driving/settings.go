package driving

import "github.com/custodia-labs/vaultqa/internal/core/domain"

// SettingsService manages application settings.
// Every setter persists immediately.
type SettingsService interface {
	// Get retrieves current settings merged over defaults.
	Get() (*domain.Settings, error)

	// Save persists settings.
	Save(settings *domain.Settings) error

	// SetProvider selects the hosted provider, keeping the model consistent.
	SetProvider(provider domain.AIProvider) error

	// SetModel selects the hosted model.
	SetModel(model string) error

	// SetMode sets the default pipeline mode.
	SetMode(mode domain.Mode) error

	// SetLocal configures the local server and whether to use it.
	SetLocal(useLocal bool, baseURL, model string) error

	// SetGeneration sets output length and temperature.
	SetGeneration(maxTokens int, temperature float64) error

	// SetScope sets the include folder and current-document-only flag.
	SetScope(includeFolder string, currentDocumentOnly bool) error

	// AddExcludeFolder adds a prefix to the exclusion set.
	AddExcludeFolder(prefix string) error

	// RemoveExcludeFolder removes a prefix from the exclusion set.
	RemoveExcludeFolder(prefix string) error

	// SetNotesFolder sets the destination for generated notes.
	SetNotesFolder(folder string) error

	// SetFeatures toggles context inclusion and LLM titling.
	SetFeatures(includeContext, llmTitles bool) error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
