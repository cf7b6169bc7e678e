// Package llm holds the HTTP plumbing shared by the text-generation adapters:
// sending a request, reading the body and classifying failures.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
)

// MaxResponseBytes caps how much of a response body is read.
const MaxResponseBytes = 8 << 20

// Fixed messages per failure class, used when the body carries no message.
const (
	MsgAuthentication    = "Invalid API key. Please check your API key in settings."
	MsgAuthorization     = "Access denied. Your API key may not have access to this model."
	MsgNotFound          = "Model not found. The selected model may be unavailable or deprecated."
	MsgRateLimited       = "Rate limit exceeded or quota reached. Please try again later."
	MsgUpstream          = "The service is temporarily unavailable. Please try again later."
	MsgMalformedRequest  = "Invalid request. Please check your settings and try again."
	MsgTransport         = "Could not reach the service. Please check your network connection."
	MsgConnectionRefused = "Could not connect to the local model server at %s. Make sure it is running."
	MsgEmptyResponse     = "No response was returned."
	msgUnexpectedStatus  = "Unexpected response (status %d)."
)

// Send performs the request and returns the status and body. A non-nil
// error means no response was received.
func Send(client *http.Client, req *http.Request) (int, []byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return domain.StatusTransport, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// KindForStatus maps an HTTP status to a failure class. A 400 is only
// distinguished as malformed for providers that document it.
func KindForStatus(p domain.AIProvider, status int) domain.ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return domain.ErrorKindAuthentication
	case status == http.StatusForbidden:
		return domain.ErrorKindAuthorization
	case status == http.StatusNotFound:
		return domain.ErrorKindNotFound
	case status == http.StatusTooManyRequests:
		return domain.ErrorKindRateLimited
	case status >= http.StatusInternalServerError:
		return domain.ErrorKindUpstream
	case status == http.StatusBadRequest && p == domain.AIProviderGemini:
		return domain.ErrorKindMalformedRequest
	default:
		return domain.ErrorKindUnclassified
	}
}

// FixedMessage returns the human-readable text for a failure class.
func FixedMessage(kind domain.ErrorKind, status int) string {
	switch kind {
	case domain.ErrorKindAuthentication:
		return MsgAuthentication
	case domain.ErrorKindAuthorization:
		return MsgAuthorization
	case domain.ErrorKindNotFound:
		return MsgNotFound
	case domain.ErrorKindRateLimited:
		return MsgRateLimited
	case domain.ErrorKindUpstream:
		return MsgUpstream
	case domain.ErrorKindMalformedRequest:
		return MsgMalformedRequest
	case domain.ErrorKindTransport:
		return MsgTransport
	default:
		return fmt.Sprintf(msgUnexpectedStatus, status)
	}
}

// StatusError classifies a non-success response. The server's own message,
// when the body has one, takes precedence over the fixed text.
func StatusError(p domain.AIProvider, status int, body []byte) *domain.GenerationError {
	kind := KindForStatus(p, status)
	e := domain.NewGenerationError(p, kind, status, FixedMessage(kind, status))
	if msg := ServerMessage(body); msg != "" {
		e.Message = msg
		e.ServerMessage = msg
	}
	return e
}

// TransportError classifies a failure where no response was received.
// Context cancellation is returned as is so callers can tell it apart.
func TransportError(ctx context.Context, p domain.AIProvider, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s request: %w", p, ctxErr)
	}
	e := domain.NewGenerationError(p, domain.ErrorKindTransport, domain.StatusTransport, MsgTransport)
	e.ServerMessage = err.Error()
	return e
}

// Unclassified builds a failure for a successful status with an unusable body.
func Unclassified(p domain.AIProvider, status int, message string) *domain.GenerationError {
	return domain.NewGenerationError(p, domain.ErrorKindUnclassified, status, message)
}

// ServerMessage extracts a nested error message from a JSON error body.
// It understands {"error":{"message":...}}, {"error":"..."} and
// {"message":...}. Returns "" when none is present.
func ServerMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}

	if len(envelope.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Error, &nested); err == nil && nested.Message != "" {
			return strings.TrimSpace(nested.Message)
		}
		var flat string
		if err := json.Unmarshal(envelope.Error, &flat); err == nil && flat != "" {
			return strings.TrimSpace(flat)
		}
	}
	return strings.TrimSpace(envelope.Message)
}

// AsGenerationError unwraps a classified failure.
func AsGenerationError(err error) (*domain.GenerationError, bool) {
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		return genErr, true
	}
	return nil, false
}
