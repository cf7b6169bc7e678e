package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vaultqa/internal/adapters/driven/llm"
	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driven"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:1234/v1", "http://localhost:1234/v1/chat/completions"},
		{"http://localhost:1234/v1/", "http://localhost:1234/v1/chat/completions"},
		{"http://localhost:1234/v1/chat/completions", "http://localhost:1234/v1/chat/completions"},
		{"http://localhost:1234/v1/chat/completions/", "http://localhost:1234/v1/chat/completions"},
		{" http://10.0.0.5:11434/v1 ", "http://10.0.0.5:11434/v1/chat/completions"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeURL(tt.in))
		})
	}
}

func TestNewGenerator_Defaults(t *testing.T) {
	g := NewGenerator(Config{})

	assert.Equal(t, "http://localhost:1234/v1/chat/completions", g.Endpoint())
	assert.Equal(t, DefaultModel, g.ModelName())
	assert.Equal(t, domain.AIProviderLocal, g.Provider())
	assert.Zero(t, g.client.Timeout)
	assert.NoError(t, g.Close())
}

func TestGenerate_Success(t *testing.T) {
	var body map[string]any
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi there"}}]}`))
	}))
	defer srv.Close()

	g := NewGenerator(Config{BaseURL: srv.URL + "/v1", Model: "llama3"})
	got, err := g.Generate(context.Background(), "hello", driven.GenerateOptions{MaxTokens: 50, System: "sys"})

	require.NoError(t, err)
	assert.Equal(t, "hi there", got)
	assert.Equal(t, "/v1/chat/completions", path)
	assert.Empty(t, auth)
	assert.Equal(t, "llama3", body["model"])
	assert.Equal(t, false, body["stream"])
	assert.InDelta(t, 50, body["max_tokens"], 0)
	assert.Len(t, body["messages"], 2)
}

func TestGenerate_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := NewGenerator(Config{BaseURL: url})
	_, err := g.Generate(context.Background(), "hello", driven.GenerateOptions{})

	genErr, ok := llm.AsGenerationError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrorKindConnectionRefused, genErr.Kind)
	assert.Equal(t, domain.StatusTransport, genErr.Status)
	assert.True(t, strings.HasPrefix(err.Error(), "Error querying local model: "))
	assert.Contains(t, genErr.Message, url+"/chat/completions")
}

func TestGenerate_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'llama9' not found"}`))
	}))
	defer srv.Close()

	g := NewGenerator(Config{BaseURL: srv.URL})
	_, err := g.Generate(context.Background(), "hello", driven.GenerateOptions{})

	genErr, ok := llm.AsGenerationError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrorKindNotFound, genErr.Kind)
	assert.Equal(t, "model 'llama9' not found", genErr.Message)
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	g := NewGenerator(Config{BaseURL: srv.URL})
	_, err := g.Generate(context.Background(), "hello", driven.GenerateOptions{})

	genErr, ok := llm.AsGenerationError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrorKindUnclassified, genErr.Kind)
}

func TestIsConnectionRefused(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"errno", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"unix text", errors.New("dial tcp 127.0.0.1:1234: connect: connection refused"), true},
		{"windows text", errors.New("No connection could be made because the target machine actively refused it."), true},
		{"fetch text", errors.New("TypeError: Failed to fetch"), true},
		{"node text", errors.New("ECONNREFUSED 127.0.0.1:1234"), true},
		{"other", errors.New("tls: handshake failure"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConnectionRefused(tt.err))
		})
	}
}

func TestPing(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	g := NewGenerator(Config{BaseURL: srv.URL + "/v1/chat/completions"})

	require.NoError(t, g.Ping(context.Background()))
	assert.Equal(t, "/v1/models", path)
}
