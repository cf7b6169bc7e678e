package domain

import (
	"fmt"
	"time"
)

// ErrorKind classifies a generation failure.
type ErrorKind string

// Generation failure kinds.
const (
	ErrorKindTransport         ErrorKind = "transport"
	ErrorKindAuthentication    ErrorKind = "authentication"
	ErrorKindAuthorization     ErrorKind = "authorization"
	ErrorKindNotFound          ErrorKind = "not_found"
	ErrorKindRateLimited       ErrorKind = "rate_limited"
	ErrorKindUpstream          ErrorKind = "upstream"
	ErrorKindMalformedRequest  ErrorKind = "malformed_request"
	ErrorKindConnectionRefused ErrorKind = "connection_refused"
	ErrorKindUnclassified      ErrorKind = "unclassified"
)

// StatusTransport is the Status of a failure where no response was received.
const StatusTransport = 0

// GenerationError is a classified provider failure.
type GenerationError struct {
	// Provider is the backend that failed.
	Provider AIProvider

	// Kind is the failure class.
	Kind ErrorKind

	// Status is the HTTP status, or StatusTransport.
	Status int

	// Message is the human-readable explanation.
	Message string

	// ServerMessage is the provider's own message, when the body carried one.
	ServerMessage string
}

// Error returns the message with the provider's recognisable prefix.
func (e *GenerationError) Error() string {
	return e.Provider.ErrorPrefix() + e.Message
}

// IsTransport reports whether no HTTP response was received.
func (e *GenerationError) IsTransport() bool {
	return e.Status == StatusTransport
}

// NewGenerationError builds a classified failure.
func NewGenerationError(p AIProvider, kind ErrorKind, status int, message string) *GenerationError {
	return &GenerationError{
		Provider: p,
		Kind:     kind,
		Status:   status,
		Message:  message,
	}
}

// QueryResult is the outcome of one pipeline run. Exactly one of Text or
// Err is meaningful: Err is non-nil when the provider failed.
type QueryResult struct {
	// ID uniquely identifies the request.
	ID string

	// Query is the original query or topic.
	Query string

	// Mode is the pipeline variant used.
	Mode Mode

	// Provider is the backend the request was sent to.
	Provider AIProvider

	// Model is the model id used.
	Model string

	// Sources lists the document paths included as context.
	Sources []string

	// Text is the post-processed generated text.
	Text string

	// Title is the derived note title (create mode only).
	Title string

	// References are citations found in Text.
	References []Reference

	// Err is the classified provider failure, if any.
	Err *GenerationError

	// CreatedAt is when the request started.
	CreatedAt time.Time
}

// Succeeded returns true if the provider produced text.
func (r *QueryResult) Succeeded() bool {
	return r.Err == nil
}

// Status returns a short status label for logs and history.
func (r *QueryResult) Status() string {
	if r.Err != nil {
		return fmt.Sprintf("error:%s", r.Err.Kind)
	}
	return "ok"
}

// HistoryEntry is a persisted summary of a QueryResult.
type HistoryEntry struct {
	ID        string     `json:"id"`
	Query     string     `json:"query"`
	Mode      Mode       `json:"mode"`
	Provider  AIProvider `json:"provider"`
	Model     string     `json:"model"`
	Sources   []string   `json:"sources"`
	Title     string     `json:"title,omitempty"`
	Status    string     `json:"status"`
	ErrorKind ErrorKind  `json:"error_kind,omitempty"`
	NotePath  string     `json:"note_path,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewHistoryEntry summarises a result for persistence.
func NewHistoryEntry(r *QueryResult) HistoryEntry {
	e := HistoryEntry{
		ID:        r.ID,
		Query:     r.Query,
		Mode:      r.Mode,
		Provider:  r.Provider,
		Model:     r.Model,
		Sources:   r.Sources,
		Title:     r.Title,
		Status:    r.Status(),
		CreatedAt: r.CreatedAt,
	}
	if r.Err != nil {
		e.ErrorKind = r.Err.Kind
	}
	return e
}
