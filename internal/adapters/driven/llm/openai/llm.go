// Package openai provides a text-generation adapter for the OpenAI API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
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
	DefaultBaseURL  = "https://api.openai.com"
	DefaultModel    = "gpt-4o-mini"
	chatEndpoint    = "/v1/chat/completions"
	modelsEndpoint  = "/v1/models"
	completionRoles = "System: %s\nUser: %s\nAssistant:"
)

// Config holds configuration for the OpenAI generator.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API origin (default: https://api.openai.com).
	BaseURL string

	// Model is the model id (default: gpt-4o-mini).
	Model string

	// Timeout bounds each request. Zero leaves it to the context and
	// transport defaults.
	Timeout time.Duration
}

// Generator sends prompts to OpenAI. The request shape, endpoint and
// token-limit parameter come from the model catalog; unknown models use
// the chat shape.
type Generator struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   domain.ModelDescriptor
}

// chatRequest is the /v1/chat/completions request format.
type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	MaxTokens           int           `json:"max_tokens,omitempty"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
	Temperature         *float64      `json:"temperature,omitempty"`
}

// chatMessage is the chat and responses message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the /v1/chat/completions response format.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// completionRequest is the legacy /v1/completions request format.
type completionRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// completionResponse is the legacy /v1/completions response format.
type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// responsesRequest is the /v1/responses request format. It carries no
// top-level token limit.
type responsesRequest struct {
	Model string        `json:"model"`
	Input []chatMessage `json:"input"`
}

// responsesResponse is the /v1/responses response format.
type responsesResponse struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// NewGenerator creates a new OpenAI generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	model, ok := domain.LookupModel(cfg.Model)
	if !ok {
		model = domain.ModelDescriptor{ID: cfg.Model, Provider: domain.AIProviderOpenAI}
	}

	return &Generator{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
	}, nil
}

// Provider returns domain.AIProviderOpenAI.
func (g *Generator) Provider() domain.AIProvider {
	return domain.AIProviderOpenAI
}

// ModelName returns the model id.
func (g *Generator) ModelName() string {
	return g.model.ID
}

// Generate produces a completion using the model's request shape.
func (g *Generator) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	switch g.model.RequestShape() {
	case domain.ShapeCompletion:
		return g.completion(ctx, prompt, opts)
	case domain.ShapeResponses:
		return g.responses(ctx, prompt, opts)
	default:
		return g.chat(ctx, prompt, opts)
	}
}

func (g *Generator) chat(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	reqBody := chatRequest{
		Model:    g.model.ID,
		Messages: messages(opts.System, prompt),
	}
	if g.model.AltTokenParam {
		// Reasoning models reject max_tokens and a non-default temperature.
		reqBody.MaxCompletionTokens = opts.MaxTokens
	} else {
		reqBody.MaxTokens = opts.MaxTokens
		reqBody.Temperature = temperature(opts.Temperature)
	}

	var resp chatResponse
	status, err := g.post(ctx, g.endpoint(chatEndpoint), reqBody, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", llm.Unclassified(domain.AIProviderOpenAI, status, llm.MsgEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *Generator) completion(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	reqBody := completionRequest{
		Model:       g.model.ID,
		Prompt:      fmt.Sprintf(completionRoles, opts.System, prompt),
		MaxTokens:   opts.MaxTokens,
		Temperature: temperature(opts.Temperature),
	}

	var resp completionResponse
	status, err := g.post(ctx, g.endpoint("/v1/completions"), reqBody, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", llm.Unclassified(domain.AIProviderOpenAI, status, llm.MsgEmptyResponse)
	}
	return strings.TrimSpace(resp.Choices[0].Text), nil
}

func (g *Generator) responses(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	reqBody := responsesRequest{
		Model: g.model.ID,
		Input: messages(opts.System, prompt),
	}

	var resp responsesResponse
	status, err := g.post(ctx, g.endpoint("/v1/responses"), reqBody, &resp)
	if err != nil {
		return "", err
	}

	if resp.OutputText != "" {
		return resp.OutputText, nil
	}
	var b strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == "output_text" {
				b.WriteString(part.Text)
			}
		}
	}
	if b.Len() == 0 {
		return "", llm.Unclassified(domain.AIProviderOpenAI, status, llm.MsgEmptyResponse)
	}
	return b.String(), nil
}

// post sends a JSON request and decodes a 200 response into out.
func (g *Generator) post(ctx context.Context, url string, body, out any) (int, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	status, respBody, err := llm.Send(g.client, req)
	if err != nil {
		return status, llm.TransportError(ctx, domain.AIProviderOpenAI, err)
	}
	if status != http.StatusOK {
		return status, llm.StatusError(domain.AIProviderOpenAI, status, respBody)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return status, llm.Unclassified(domain.AIProviderOpenAI, status,
			fmt.Sprintf("Could not parse the response: %v", err))
	}
	return status, nil
}

// endpoint returns the catalog override or the shape's default path.
func (g *Generator) endpoint(fallback string) string {
	if g.model.Endpoint != "" {
		return g.baseURL + g.model.Endpoint
	}
	return g.baseURL + fallback
}

// Ping validates the API key by listing models.
func (g *Generator) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+modelsEndpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	status, body, err := llm.Send(g.client, req)
	if err != nil {
		return llm.TransportError(ctx, domain.AIProviderOpenAI, err)
	}
	if status != http.StatusOK {
		return llm.StatusError(domain.AIProviderOpenAI, status, body)
	}
	return nil
}

// Close releases resources.
func (g *Generator) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

func messages(system, prompt string) []chatMessage {
	msgs := make([]chatMessage, 0, 2)
	if system != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: system})
	}
	return append(msgs, chatMessage{Role: "user", Content: prompt})
}

func temperature(t float64) *float64 {
	return &t
}
