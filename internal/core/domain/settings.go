package domain

import "strings"

const unknownDescription = "Unknown"

// Mode selects the pipeline variant.
type Mode string

// Available pipeline modes.
const (
	// ModeQuery answers a question about existing notes.
	ModeQuery Mode = "query"

	// ModeCreate generates a new note on a topic.
	ModeCreate Mode = "create"
)

// IsValid returns true if the mode is recognised.
func (m Mode) IsValid() bool {
	switch m {
	case ModeQuery, ModeCreate:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m Mode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m Mode) Description() string {
	switch m {
	case ModeQuery:
		return "Query (answer from notes)"
	case ModeCreate:
		return "Create (generate a new note)"
	default:
		return unknownDescription
	}
}

// AIProvider identifies a text-generation backend.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGemini is the Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderLocal is an OpenAI-compatible server on the local network.
	AIProviderLocal AIProvider = "local"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderGemini, AIProviderLocal:
		return true
	default:
		return false
	}
}

// IsHosted returns true for cloud providers selectable as the hosted backend.
func (p AIProvider) IsHosted() bool {
	return p == AIProviderOpenAI || p == AIProviderGemini
}

// RequiresAPIKey returns true if this provider needs a credential.
func (p AIProvider) RequiresAPIKey() bool {
	return p.IsHosted()
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	case AIProviderLocal:
		return "Local server (OpenAI-compatible)"
	default:
		return unknownDescription
	}
}

// DisplayName is the name used in user-facing error messages.
func (p AIProvider) DisplayName() string {
	switch p {
	case AIProviderOpenAI:
		return "OpenAI"
	case AIProviderGemini:
		return "Gemini"
	case AIProviderLocal:
		return "local model"
	default:
		return string(p)
	}
}

// ErrorPrefix is the leading text of every failure message from this provider.
func (p AIProvider) ErrorPrefix() string {
	if p == AIProviderGemini {
		return "Gemini API Error: "
	}
	return "Error querying " + p.DisplayName() + ": "
}

// modelPrefixes lists the naming conventions of each hosted provider's models.
var modelPrefixes = map[AIProvider][]string{
	AIProviderOpenAI: {"gpt-", "chatgpt-", "o1", "o3", "o4", "davinci", "babbage"},
	AIProviderGemini: {"gemini-"},
}

// OwnsModel reports whether a model id follows this provider's naming convention.
func (p AIProvider) OwnsModel(model string) bool {
	if d, ok := LookupModel(model); ok {
		return d.Provider == p
	}
	for _, prefix := range modelPrefixes[p] {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// Settings is the flat configuration record read at the start of each
// pipeline stage. It is passed explicitly and never mutated by the pipeline.
type Settings struct {
	// Provider is the hosted provider used when UseLocal is false.
	Provider AIProvider

	// Model is the hosted model identifier.
	Model string

	// MaxTokens caps the generated output length.
	MaxTokens int

	// Temperature is the sampling temperature in [0, 2].
	Temperature float64

	// UseLocal routes generation to the local server instead of Provider.
	UseLocal bool

	// LocalBaseURL is the local server base URL.
	LocalBaseURL string

	// LocalModel is the model name sent to the local server.
	LocalModel string

	// CurrentDocumentOnly restricts context to the current document.
	CurrentDocumentOnly bool

	// IncludeFolder keeps only documents whose path starts with it.
	IncludeFolder string

	// ExcludeFolders drops documents whose path starts with any entry.
	ExcludeFolders []string

	// NotesFolder is where generated notes are written.
	NotesFolder string

	// LLMTitles derives note titles with a second generation call.
	LLMTitles bool

	// IncludeContext enables vault context in prompts.
	IncludeContext bool

	// Mode is the default pipeline mode.
	Mode Mode
}

// EffectiveProvider returns the backend a request will be sent to.
func (s Settings) EffectiveProvider() AIProvider {
	if s.UseLocal {
		return AIProviderLocal
	}
	return s.Provider
}

// EffectiveModel returns the model id for the effective provider.
func (s Settings) EffectiveModel() string {
	if s.UseLocal {
		return s.LocalModel
	}
	return s.Model
}

// SelectProvider switches the hosted provider, resetting the model to the
// provider's default unless the current model already belongs to it.
func (s *Settings) SelectProvider(p AIProvider) {
	s.Provider = p
	if s.Model != "" && p.OwnsModel(s.Model) {
		return
	}
	if m, ok := DefaultModels()[p]; ok {
		s.Model = m
	}
}

// Default values for settings.
const (
	DefaultMaxTokens    = 1000
	DefaultTemperature  = 0.7
	DefaultLocalBaseURL = "http://localhost:1234/v1"
	DefaultLocalModel   = "local-model"
	DefaultNotesFolder  = "Generated"
	MaxTemperature      = 2.0
)

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Provider:       AIProviderOpenAI,
		Model:          DefaultModels()[AIProviderOpenAI],
		MaxTokens:      DefaultMaxTokens,
		Temperature:    DefaultTemperature,
		LocalBaseURL:   DefaultLocalBaseURL,
		LocalModel:     DefaultLocalModel,
		NotesFolder:    DefaultNotesFolder,
		LLMTitles:      true,
		IncludeContext: true,
		Mode:           ModeQuery,
	}
}

// AllModes returns all pipeline modes.
func AllModes() []Mode {
	return []Mode{ModeQuery, ModeCreate}
}

// AllProviders returns all providers.
func AllProviders() []AIProvider {
	return []AIProvider{AIProviderOpenAI, AIProviderGemini, AIProviderLocal}
}

// DefaultModels returns the default model for each hosted provider.
func DefaultModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenAI: "gpt-4o-mini",
		AIProviderGemini: "gemini-2.5-flash",
	}
}
