package domain

import "time"

// RequestShape is the request body layout a hosted model expects.
type RequestShape string

// Request shapes understood by the OpenAI adapter.
const (
	// ShapeChat is the chat-messages layout.
	ShapeChat RequestShape = "chat"

	// ShapeCompletion is the legacy single-prompt completion layout.
	ShapeCompletion RequestShape = "completion"

	// ShapeResponses is the structured "input" layout.
	ShapeResponses RequestShape = "responses"
)

// ModelDescriptor is a static catalog entry for a hosted model.
type ModelDescriptor struct {
	// ID is the model identifier sent on the wire.
	ID string

	// Name is the display name.
	Name string

	// Provider owns the model.
	Provider AIProvider

	// Endpoint overrides the request path when non-empty.
	Endpoint string

	// Shape selects the request body layout. Empty means chat.
	Shape RequestShape

	// AltTokenParam marks models that take max_completion_tokens instead of max_tokens.
	AltTokenParam bool
}

// RequestShape returns the effective request shape.
func (m ModelDescriptor) RequestShape() RequestShape {
	if m.Shape == "" {
		return ShapeChat
	}
	return m.Shape
}

var modelCatalog = []ModelDescriptor{
	{ID: "gpt-4o", Name: "GPT-4o", Provider: AIProviderOpenAI},
	{ID: "gpt-4o-mini", Name: "GPT-4o mini", Provider: AIProviderOpenAI},
	{ID: "gpt-4.1", Name: "GPT-4.1", Provider: AIProviderOpenAI},
	{ID: "gpt-4.1-mini", Name: "GPT-4.1 mini", Provider: AIProviderOpenAI},
	{ID: "gpt-4-turbo", Name: "GPT-4 Turbo", Provider: AIProviderOpenAI},
	{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo", Provider: AIProviderOpenAI},
	{ID: "gpt-5", Name: "GPT-5", Provider: AIProviderOpenAI, AltTokenParam: true},
	{ID: "gpt-5-mini", Name: "GPT-5 mini", Provider: AIProviderOpenAI, AltTokenParam: true},
	{ID: "o1", Name: "o1", Provider: AIProviderOpenAI, AltTokenParam: true},
	{ID: "o3-mini", Name: "o3-mini", Provider: AIProviderOpenAI, AltTokenParam: true},
	{ID: "o4-mini", Name: "o4-mini", Provider: AIProviderOpenAI, AltTokenParam: true},
	{
		ID:       "gpt-3.5-turbo-instruct",
		Name:     "GPT-3.5 Turbo Instruct",
		Provider: AIProviderOpenAI,
		Endpoint: "/v1/completions",
		Shape:    ShapeCompletion,
	},
	{
		ID:       "o3-pro",
		Name:     "o3-pro",
		Provider: AIProviderOpenAI,
		Endpoint: "/v1/responses",
		Shape:    ShapeResponses,
	},
	{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Provider: AIProviderGemini},
	{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro", Provider: AIProviderGemini},
	{ID: "gemini-2.5-flash-lite", Name: "Gemini 2.5 Flash-Lite", Provider: AIProviderGemini},
	{ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash", Provider: AIProviderGemini},
}

// ModelCatalog returns a copy of the static model catalog.
func ModelCatalog() []ModelDescriptor {
	out := make([]ModelDescriptor, len(modelCatalog))
	copy(out, modelCatalog)
	return out
}

// ModelsFor returns the catalog entries owned by a provider.
func ModelsFor(p AIProvider) []ModelDescriptor {
	var out []ModelDescriptor
	for _, m := range modelCatalog {
		if m.Provider == p {
			out = append(out, m)
		}
	}
	return out
}

// LookupModel finds a catalog entry by id.
func LookupModel(id string) (ModelDescriptor, bool) {
	for _, m := range modelCatalog {
		if m.ID == id {
			return m, true
		}
	}
	return ModelDescriptor{}, false
}

// ModelCheck is the outcome of a one-token smoke test against a catalog model.
type ModelCheck struct {
	// Model is the catalog entry tested.
	Model ModelDescriptor

	// Passed is true when the model produced a response.
	Passed bool

	// Kind classifies the failure when Passed is false.
	Kind ErrorKind

	// Message explains the failure.
	Message string

	// Latency is the round-trip time of the request.
	Latency time.Duration
}
