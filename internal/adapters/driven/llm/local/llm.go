// Package local provides a text-generation adapter for OpenAI-compatible
// servers on the local network, such as LM Studio, Ollama or llama.cpp.
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/custodia-labs/vaultqa/internal/adapters/driven/llm"
	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driven"
)

// Ensure Generator implements the interface.
var _ driven.Generator = (*Generator)(nil)

// Default configuration values.
const (
	DefaultBaseURL = domain.DefaultLocalBaseURL
	DefaultModel   = domain.DefaultLocalModel

	chatCompletionsPath = "/chat/completions"
)

// refusalMarkers are transport error substrings that mean nothing is
// listening at the configured address.
var refusalMarkers = []string{
	"connection refused",
	"econnrefused",
	"actively refused",
	"failed to fetch",
}

// Config holds configuration for the local generator.
type Config struct {
	// BaseURL is the server base URL (default: http://localhost:1234/v1).
	// The chat-completions path is appended when missing.
	BaseURL string

	// Model is the model name sent to the server (default: local-model).
	Model string

	// Timeout bounds each request. Zero leaves it to the context and
	// transport defaults.
	Timeout time.Duration
}

// Generator sends prompts to a local chat-completions endpoint. No
// authentication is sent.
type Generator struct {
	client   *http.Client
	endpoint string
	model    string
}

// chatRequest is the OpenAI-compatible chat request format.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

// chatMessage is the chat message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the OpenAI-compatible chat response format.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewGenerator creates a new local generator.
func NewGenerator(cfg Config) *Generator {
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
		endpoint: NormalizeURL(cfg.BaseURL),
		model:    cfg.Model,
	}
}

// NormalizeURL makes sure a base URL ends in the chat-completions path.
func NormalizeURL(baseURL string) string {
	u := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if strings.HasSuffix(u, chatCompletionsPath) {
		return u
	}
	return u + chatCompletionsPath
}

// Provider returns domain.AIProviderLocal.
func (g *Generator) Provider() domain.AIProvider {
	return domain.AIProviderLocal
}

// ModelName returns the configured model name.
func (g *Generator) ModelName() string {
	return g.model
}

// Endpoint returns the normalised chat-completions URL.
func (g *Generator) Endpoint() string {
	return g.endpoint
}

// Generate sends the prompt as a chat conversation.
func (g *Generator) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if opts.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: opts.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	reqBody := chatRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Stream:      false,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := llm.Send(g.client, req)
	if err != nil {
		return "", g.transportError(ctx, err)
	}
	if status != http.StatusOK {
		return "", llm.StatusError(domain.AIProviderLocal, status, body)
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", llm.Unclassified(domain.AIProviderLocal, status,
			fmt.Sprintf("Could not parse the response: %v", err))
	}
	if len(resp.Choices) == 0 {
		return "", llm.Unclassified(domain.AIProviderLocal, status, llm.MsgEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

// transportError separates a server that is not running from other
// network failures.
func (g *Generator) transportError(ctx context.Context, err error) error {
	if ctx.Err() == nil && IsConnectionRefused(err) {
		return g.refused(err.Error())
	}
	return llm.TransportError(ctx, domain.AIProviderLocal, err)
}

func (g *Generator) refused(detail string) *domain.GenerationError {
	e := domain.NewGenerationError(domain.AIProviderLocal, domain.ErrorKindConnectionRefused,
		domain.StatusTransport, fmt.Sprintf(llm.MsgConnectionRefused, g.endpoint))
	e.ServerMessage = detail
	return e
}

// IsConnectionRefused reports whether a transport error means nothing is
// listening at the address.
func IsConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range refusalMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Ping checks the server is up by listing its models.
func (g *Generator) Ping(ctx context.Context) error {
	modelsURL := strings.TrimSuffix(g.endpoint, chatCompletionsPath) + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, modelsURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("local: failed to create ping request: %w", err)
	}

	status, body, err := llm.Send(g.client, req)
	if err != nil {
		return g.transportError(ctx, err)
	}
	if status != http.StatusOK {
		return llm.StatusError(domain.AIProviderLocal, status, body)
	}
	return nil
}

// Close releases resources.
func (g *Generator) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
