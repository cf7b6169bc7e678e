package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrPermissionDenied indicates the store refused the operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPipelineBusy indicates a query is already in flight.
	// A second request is rejected rather than queued.
	ErrPipelineBusy = errors.New("a request is already in progress")

	// ErrLLMUnavailable indicates no generation backend could be configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrNothingToSave indicates a result has no text that could become a note.
	ErrNothingToSave = errors.New("result has no content to save")
)
