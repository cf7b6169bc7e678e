// Package gemini provides a text-generation adapter for the Google Gemini API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/vaultqa/internal/adapters/driven/llm"
	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driven"
)

// Ensure Generator implements the interface.
var _ driven.Generator = (*Generator)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash"
)

// Config holds configuration for the Gemini generator.
type Config struct {
	// APIKey is the Gemini API key (required). It is sent in the URL query.
	APIKey string

	// BaseURL is the API origin (default: https://generativelanguage.googleapis.com).
	BaseURL string

	// Model is the model id (default: gemini-2.5-flash).
	Model string

	// Timeout bounds each request. Zero leaves it to the context and
	// transport defaults.
	Timeout time.Duration
}

// Generator sends prompts to Gemini's generateContent endpoint.
type Generator struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature"`
}

// generateRequest is the generateContent request format.
type generateRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

// apiError is the error object Gemini returns, sometimes alongside a 200.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Finish reasons that end a candidate normally.
const (
	finishStop      = "STOP"
	finishMaxTokens = "MAX_TOKENS"
)

// generateResponse is the generateContent response format.
type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

// NewGenerator creates a new Gemini generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	return &Generator{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Provider returns domain.AIProviderGemini.
func (g *Generator) Provider() domain.AIProvider {
	return domain.AIProviderGemini
}

// ModelName returns the model id.
func (g *Generator) ModelName() string {
	return g.model
}

// Generate sends the prompt as a single content part.
func (g *Generator) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			MaxOutputTokens: opts.MaxTokens,
			Temperature:     opts.Temperature,
		},
	}
	if opts.System != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: opts.System}}}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.modelURL(":generateContent"), bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := llm.Send(g.client, req)
	if err != nil {
		return "", llm.TransportError(ctx, domain.AIProviderGemini, err)
	}
	if status != http.StatusOK {
		return "", llm.StatusError(domain.AIProviderGemini, status, body)
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", llm.Unclassified(domain.AIProviderGemini, status,
			fmt.Sprintf("Could not parse the response: %v", err))
	}
	if resp.Error != nil {
		return "", inlineError(resp.Error, status)
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", llm.Unclassified(domain.AIProviderGemini, status,
				"The prompt was blocked by safety filters ("+resp.PromptFeedback.BlockReason+").")
		}
		return "", llm.Unclassified(domain.AIProviderGemini, status, llm.MsgEmptyResponse)
	}

	candidate := resp.Candidates[0]
	if len(candidate.Content.Parts) == 0 {
		switch candidate.FinishReason {
		case finishStop, finishMaxTokens:
			// Thinking models can spend the whole output budget before
			// emitting text; the call still succeeded.
			return "", nil
		case "":
			return "", llm.Unclassified(domain.AIProviderGemini, status, llm.MsgEmptyResponse)
		default:
			return "", llm.Unclassified(domain.AIProviderGemini, status,
				"The response was stopped before any text was returned ("+candidate.FinishReason+").")
		}
	}

	var b strings.Builder
	for _, p := range candidate.Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

// inlineError classifies an error object found in a 200 body, using its own
// code when present.
func inlineError(e *apiError, status int) *domain.GenerationError {
	code := e.Code
	if code == 0 {
		code = status
	}
	kind := llm.KindForStatus(domain.AIProviderGemini, code)
	if code == http.StatusOK {
		kind = domain.ErrorKindUnclassified
	}

	genErr := domain.NewGenerationError(domain.AIProviderGemini, kind, status, llm.FixedMessage(kind, code))
	if e.Message != "" {
		genErr.Message = e.Message
		genErr.ServerMessage = e.Message
	}
	return genErr
}

// modelURL returns the model resource URL with the key in the query string.
func (g *Generator) modelURL(method string) string {
	q := url.Values{}
	q.Set("key", g.apiKey)
	return g.baseURL + "/v1beta/models/" + url.PathEscape(g.model) + method + "?" + q.Encode()
}

// Ping validates the key and model by fetching the model resource.
func (g *Generator) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.modelURL(""), http.NoBody)
	if err != nil {
		return fmt.Errorf("gemini: failed to create ping request: %w", err)
	}

	status, body, err := llm.Send(g.client, req)
	if err != nil {
		return llm.TransportError(ctx, domain.AIProviderGemini, err)
	}
	if status != http.StatusOK {
		return llm.StatusError(domain.AIProviderGemini, status, body)
	}
	return nil
}

// Close releases resources.
func (g *Generator) Close() error {
	return nil
}
