package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vaultqa/internal/adapters/driven/llm"
	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driven"
)

var testOpts = driven.GenerateOptions{MaxTokens: 100, Temperature: 0.7, System: "be brief"}

// capture records the last request seen by a test server.
type capture struct {
	path   string
	auth   string
	body   map[string]any
	status int
	reply  string
}

func (c *capture) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.path = r.URL.Path
		c.auth = r.Header.Get("Authorization")
		c.body = nil
		_ = json.NewDecoder(r.Body).Decode(&c.body)
		if c.status != 0 {
			w.WriteHeader(c.status)
		}
		_, _ = w.Write([]byte(c.reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestGenerator(t *testing.T, baseURL, model string) *Generator {
	t.Helper()
	g, err := NewGenerator(Config{APIKey: "sk-test", BaseURL: baseURL, Model: model})
	require.NoError(t, err)
	return g
}

func TestNewGenerator_RequiresAPIKey(t *testing.T) {
	_, err := NewGenerator(Config{})
	assert.Error(t, err)
}

func TestNewGenerator_Defaults(t *testing.T) {
	g, err := NewGenerator(Config{APIKey: "sk"})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, g.ModelName())
	assert.Equal(t, DefaultBaseURL, g.baseURL)
	assert.Zero(t, g.client.Timeout)
	assert.Equal(t, domain.AIProviderOpenAI, g.Provider())
	assert.NoError(t, g.Close())
}

func TestNewGenerator_ConfiguredTimeout(t *testing.T) {
	g, err := NewGenerator(Config{APIKey: "sk", Timeout: 30 * time.Second})
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, g.client.Timeout)
}

func TestGenerate_ChatShape(t *testing.T) {
	c := &capture{reply: `{"choices":[{"message":{"content":"Paris"}}]}`}
	srv := c.server(t)
	g := newTestGenerator(t, srv.URL, "gpt-4o-mini")

	got, err := g.Generate(context.Background(), "capital of France?", testOpts)

	require.NoError(t, err)
	assert.Equal(t, "Paris", got)
	assert.Equal(t, "/v1/chat/completions", c.path)
	assert.Equal(t, "Bearer sk-test", c.auth)
	assert.Equal(t, "gpt-4o-mini", c.body["model"])
	assert.InDelta(t, 100, c.body["max_tokens"], 0)
	assert.InDelta(t, 0.7, c.body["temperature"], 1e-9)
	assert.NotContains(t, c.body, "max_completion_tokens")

	msgs, ok := c.body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "capital of France?", msgs[1].(map[string]any)["content"])
}

func TestGenerate_AltTokenParam(t *testing.T) {
	c := &capture{reply: `{"choices":[{"message":{"content":"ok"}}]}`}
	srv := c.server(t)
	g := newTestGenerator(t, srv.URL, "o4-mini")

	_, err := g.Generate(context.Background(), "q", testOpts)

	require.NoError(t, err)
	assert.InDelta(t, 100, c.body["max_completion_tokens"], 0)
	assert.NotContains(t, c.body, "max_tokens")
	assert.NotContains(t, c.body, "temperature")
}

func TestGenerate_ZeroTemperatureSent(t *testing.T) {
	c := &capture{reply: `{"choices":[{"message":{"content":"ok"}}]}`}
	srv := c.server(t)
	g := newTestGenerator(t, srv.URL, "gpt-4o")

	_, err := g.Generate(context.Background(), "q", driven.GenerateOptions{MaxTokens: 10})

	require.NoError(t, err)
	assert.Contains(t, c.body, "temperature")
}

func TestGenerate_CompletionShape(t *testing.T) {
	c := &capture{reply: `{"choices":[{"text":"  Paris\n"}]}`}
	srv := c.server(t)
	g := newTestGenerator(t, srv.URL, "gpt-3.5-turbo-instruct")

	got, err := g.Generate(context.Background(), "capital?", testOpts)

	require.NoError(t, err)
	assert.Equal(t, "Paris", got)
	assert.Equal(t, "/v1/completions", c.path)
	assert.Equal(t, "System: be brief\nUser: capital?\nAssistant:", c.body["prompt"])
	assert.InDelta(t, 100, c.body["max_tokens"], 0)
}

func TestGenerate_ResponsesShape(t *testing.T) {
	reply := `{"output":[` +
		`{"type":"reasoning","content":[]},` +
		`{"type":"message","content":[{"type":"output_text","text":"Par"},{"type":"output_text","text":"is"}]}]}`
	c := &capture{reply: reply}
	srv := c.server(t)
	g := newTestGenerator(t, srv.URL, "o3-pro")

	got, err := g.Generate(context.Background(), "capital?", testOpts)

	require.NoError(t, err)
	assert.Equal(t, "Paris", got)
	assert.Equal(t, "/v1/responses", c.path)
	assert.Contains(t, c.body, "input")
	assert.NotContains(t, c.body, "max_tokens")
	assert.NotContains(t, c.body, "max_completion_tokens")
	assert.NotContains(t, c.body, "max_output_tokens")
}

func TestGenerate_UnknownModelUsesChat(t *testing.T) {
	c := &capture{reply: `{"choices":[{"message":{"content":"ok"}}]}`}
	srv := c.server(t)
	g := newTestGenerator(t, srv.URL, "gpt-9-experimental")

	_, err := g.Generate(context.Background(), "q", testOpts)

	require.NoError(t, err)
	assert.Equal(t, "/v1/chat/completions", c.path)
}

func TestGenerate_StatusClassification(t *testing.T) {
	tests := []struct {
		status int
		kind   domain.ErrorKind
		msg    string
	}{
		{http.StatusUnauthorized, domain.ErrorKindAuthentication, llm.MsgAuthentication},
		{http.StatusForbidden, domain.ErrorKindAuthorization, llm.MsgAuthorization},
		{http.StatusNotFound, domain.ErrorKindNotFound, llm.MsgNotFound},
		{http.StatusTooManyRequests, domain.ErrorKindRateLimited, llm.MsgRateLimited},
		{http.StatusInternalServerError, domain.ErrorKindUpstream, llm.MsgUpstream},
		{http.StatusServiceUnavailable, domain.ErrorKindUpstream, llm.MsgUpstream},
		{http.StatusBadRequest, domain.ErrorKindUnclassified, "Unexpected response (status 400)."},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := &capture{status: tt.status}
			srv := c.server(t)
			g := newTestGenerator(t, srv.URL, "gpt-4o-mini")

			_, err := g.Generate(context.Background(), "q", testOpts)

			genErr, ok := llm.AsGenerationError(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, genErr.Kind)
			assert.Equal(t, tt.status, genErr.Status)
			assert.Equal(t, tt.msg, genErr.Message)
		})
	}
}

func TestGenerate_RateLimitedMessage(t *testing.T) {
	c := &capture{status: http.StatusTooManyRequests}
	srv := c.server(t)
	g := newTestGenerator(t, srv.URL, "gpt-4o-mini")

	_, err := g.Generate(context.Background(), "q", testOpts)

	require.Error(t, err)
	assert.Equal(t, "Error querying OpenAI: "+llm.MsgRateLimited, err.Error())
}

func TestGenerate_ServerMessagePreferred(t *testing.T) {
	c := &capture{
		status: http.StatusNotFound,
		reply:  `{"error":{"message":"The model 'gpt-x' does not exist","type":"invalid_request_error"}}`,
	}
	srv := c.server(t)
	g := newTestGenerator(t, srv.URL, "gpt-4o-mini")

	_, err := g.Generate(context.Background(), "q", testOpts)

	genErr, ok := llm.AsGenerationError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrorKindNotFound, genErr.Kind)
	assert.Equal(t, "The model 'gpt-x' does not exist", genErr.Message)
	assert.Equal(t, genErr.Message, genErr.ServerMessage)
}

func TestGenerate_EmptyChoices(t *testing.T) {
	c := &capture{reply: `{"choices":[]}`}
	srv := c.server(t)
	g := newTestGenerator(t, srv.URL, "gpt-4o-mini")

	_, err := g.Generate(context.Background(), "q", testOpts)

	genErr, ok := llm.AsGenerationError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrorKindUnclassified, genErr.Kind)
}

func TestGenerate_MalformedBody(t *testing.T) {
	c := &capture{reply: `not json`}
	srv := c.server(t)
	g := newTestGenerator(t, srv.URL, "gpt-4o-mini")

	_, err := g.Generate(context.Background(), "q", testOpts)

	genErr, ok := llm.AsGenerationError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrorKindUnclassified, genErr.Kind)
	assert.Equal(t, http.StatusOK, genErr.Status)
}

func TestGenerate_Transport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	g := newTestGenerator(t, url, "gpt-4o-mini")

	_, err := g.Generate(context.Background(), "q", testOpts)

	genErr, ok := llm.AsGenerationError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrorKindTransport, genErr.Kind)
	assert.True(t, genErr.IsTransport())
	assert.True(t, strings.HasPrefix(err.Error(), "Error querying OpenAI: "))
}

func TestGenerate_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	g := newTestGenerator(t, srv.URL, "gpt-4o-mini")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := g.Generate(ctx, "q", testOpts)

	require.Error(t, err)
	_, classified := llm.AsGenerationError(err)
	assert.False(t, classified)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPing(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		c := &capture{reply: `{"data":[]}`}
		srv := c.server(t)
		g := newTestGenerator(t, srv.URL, "gpt-4o-mini")

		require.NoError(t, g.Ping(context.Background()))
		assert.Equal(t, "/v1/models", c.path)
		assert.Equal(t, "Bearer sk-test", c.auth)
	})

	t.Run("unauthorized", func(t *testing.T) {
		c := &capture{status: http.StatusUnauthorized}
		srv := c.server(t)
		g := newTestGenerator(t, srv.URL, "gpt-4o-mini")

		genErr, ok := llm.AsGenerationError(g.Ping(context.Background()))
		require.True(t, ok)
		assert.Equal(t, domain.ErrorKindAuthentication, genErr.Kind)
	})
}
