package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driven"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driving"
	"github.com/custodia-labs/vaultqa/internal/logger"
)

// Ensure Assistant implements the interfaces.
var (
	_ driving.AssistantService = (*Assistant)(nil)
	_ driven.PromptStoreAware  = (*Assistant)(nil)
)

// Generation parameters for the title request.
const (
	titleMaxTokens   = 32
	titleTemperature = 0.3

	// maxNoteAttempts bounds the numbered-suffix search on name collisions.
	maxNoteAttempts = 100
)

// SettingsProvider supplies the current settings at the start of a request.
type SettingsProvider interface {
	Get() (*domain.Settings, error)
}

// Assistant runs the query/create pipeline:
// select → assemble → build prompt → generate → post-process → normalise links.
type Assistant struct {
	settings SettingsProvider
	vault    driven.VaultStore
	factory  driven.GeneratorFactory
	notes    driven.NoteSink
	history  driven.HistoryStore
	prompts  driven.PromptStore
	now      func() time.Time
	inFlight atomic.Bool
}

// NewAssistant creates the pipeline service.
// The note sink is optional (can be nil); without it SaveNote fails.
func NewAssistant(
	settings SettingsProvider,
	vault driven.VaultStore,
	factory driven.GeneratorFactory,
	notes driven.NoteSink,
) *Assistant {
	return &Assistant{
		settings: settings,
		vault:    vault,
		factory:  factory,
		notes:    notes,
		now:      time.Now,
	}
}

// SetHistoryStore enables recording of completed requests.
func (a *Assistant) SetHistoryStore(store driven.HistoryStore) {
	a.history = store
}

// SetPromptStore enables a user-customised system instruction.
func (a *Assistant) SetPromptStore(store driven.PromptStore) {
	a.prompts = store
}

// systemPrompt returns the customised system instruction, falling back to
// DefaultSystemPrompt when no store is set or loading fails.
func (a *Assistant) systemPrompt() string {
	if a.prompts == nil {
		return DefaultSystemPrompt
	}
	prompt, err := a.prompts.Load(driven.PromptSystem)
	if err != nil || strings.TrimSpace(prompt) == "" {
		if err != nil {
			logger.Warn("Loading system prompt failed: %v", err)
		}
		return DefaultSystemPrompt
	}
	return prompt
}

// Ask runs the pipeline once. Only one request may be in flight; a
// concurrent call fails fast with domain.ErrPipelineBusy.
func (a *Assistant) Ask(ctx context.Context, req driving.AskRequest) (*domain.QueryResult, error) {
	if !a.inFlight.CompareAndSwap(false, true) {
		return nil, domain.ErrPipelineBusy
	}
	defer a.inFlight.Store(false)

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}

	cfg, err := a.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings := *cfg

	mode := settings.Mode
	if req.Mode != "" {
		mode = req.Mode
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidInput, mode)
	}

	gen, err := a.factory.NewGenerator(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	defer gen.Close()

	result := &domain.QueryResult{
		ID:        uuid.New().String(),
		Query:     query,
		Mode:      mode,
		Provider:  gen.Provider(),
		Model:     gen.ModelName(),
		CreatedAt: a.now(),
	}

	logger.Section("Context Selection")
	docs, err := SelectDocuments(ctx, a.vault, settings, req.CurrentPath)
	if err != nil {
		return nil, fmt.Errorf("select documents: %w", err)
	}

	contextBlob := ""
	if settings.IncludeContext {
		contextBlob = AssembleContext(docs, req.ExtraContext)
		result.Sources = ExtractSources(contextBlob)
	}
	logger.Debug("Selected %d documents, context %d bytes", len(docs), len(contextBlob))

	prompt := BuildPrompt(PromptInput{
		Mode:        mode,
		UseContext:  contextBlob != "",
		Query:       query,
		Context:     contextBlob,
		CurrentPath: req.CurrentPath,
	})

	logger.Section("Generation")
	logger.Info("Provider: %s, model: %s, mode: %s", result.Provider, result.Model, mode)
	system := a.systemPrompt()
	raw, err := gen.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
		System:      system,
	})
	if err != nil {
		var genErr *domain.GenerationError
		if !errors.As(err, &genErr) {
			return nil, fmt.Errorf("generate: %w", err)
		}
		logger.Warn("Generation failed (%s): %s", genErr.Kind, genErr.Message)
		result.Err = genErr
		a.record(ctx, result)
		return result, nil
	}

	result.Text = CleanResponse(mode, raw)
	result.References = ResolveReferences(ctx, ParseReferences(result.Text), a.vault)

	if mode == domain.ModeCreate {
		result.Title = a.deriveTitle(ctx, gen, settings, system, query, result.Text)
		logger.Debug("Title: %q", result.Title)
	}

	a.record(ctx, result)
	return result, nil
}

// deriveTitle asks the same backend for a title when LLM titling is on,
// otherwise truncates the query. Any failure falls back to the dated default.
func (a *Assistant) deriveTitle(
	ctx context.Context,
	gen driven.Generator,
	settings domain.Settings,
	system, query, text string,
) string {
	if !settings.LLMTitles {
		if t := TruncateTitle(query, TitleBudget); t != "" {
			return t
		}
		return DefaultTitle(a.now())
	}

	raw, err := gen.Generate(ctx, BuildTitlePrompt(query, text), driven.GenerateOptions{
		MaxTokens:   titleMaxTokens,
		Temperature: titleTemperature,
		System:      system,
	})
	if err != nil {
		logger.Warn("Title generation failed: %v", err)
		return DefaultTitle(a.now())
	}

	title := CleanTitle(raw)
	if title == "" {
		return DefaultTitle(a.now())
	}
	return title
}

// SaveNote writes a create-mode result as a new note in the notes folder.
// Name collisions are resolved with numbered suffixes.
func (a *Assistant) SaveNote(ctx context.Context, result *domain.QueryResult) (string, error) {
	if a.notes == nil {
		return "", errors.New("note sink not configured")
	}
	if result == nil || !result.Succeeded() || strings.TrimSpace(result.Text) == "" {
		return "", domain.ErrNothingToSave
	}

	cfg, err := a.settings.Get()
	if err != nil {
		return "", fmt.Errorf("load settings: %w", err)
	}

	name := NoteFileName(result.Title, a.now())
	folder := strings.Trim(cfg.NotesFolder, "/")

	for attempt := 0; attempt < maxNoteAttempts; attempt++ {
		candidate := name
		if attempt > 0 {
			candidate = fmt.Sprintf("%s %d", name, attempt)
		}
		notePath := path.Join(folder, candidate+".md")

		doc, err := a.notes.Create(ctx, notePath, result.Text)
		if errors.Is(err, domain.ErrAlreadyExists) {
			logger.Debug("Note %s exists, trying next name", notePath)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create note %s: %w", notePath, err)
		}

		logger.Info("Created note %s", doc.Path)
		if a.history != nil {
			if err := a.history.SetNotePath(ctx, result.ID, doc.Path); err != nil {
				logger.Warn("Recording note path failed: %v", err)
			}
		}
		return doc.Path, nil
	}

	return "", fmt.Errorf("create note %q: %w", name, domain.ErrAlreadyExists)
}

// record appends the result to history; failures never fail the request.
func (a *Assistant) record(ctx context.Context, result *domain.QueryResult) {
	if a.history == nil {
		return
	}
	if err := a.history.Record(ctx, domain.NewHistoryEntry(result)); err != nil {
		logger.Warn("Recording history failed: %v", err)
	}
}
