package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/vaultqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driving"
	"github.com/custodia-labs/vaultqa/internal/core/services"
)

// mockAssistant is a mock implementation of driving.AssistantService.
type mockAssistant struct {
	result   *domain.QueryResult
	err      error
	savePath string
	saveErr  error

	requests []driving.AskRequest
	saved    int
}

func (m *mockAssistant) Ask(_ context.Context, req driving.AskRequest) (*domain.QueryResult, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	r := *m.result
	r.Mode = req.Mode
	return &r, nil
}

func (m *mockAssistant) SaveNote(_ context.Context, _ *domain.QueryResult) (string, error) {
	m.saved++
	return m.savePath, m.saveErr
}

// mockSecrets is an in-memory driven.SecretStore.
type mockSecrets struct {
	keys map[domain.AIProvider]string
	err  error
}

func (m *mockSecrets) Get(p domain.AIProvider) (string, error) {
	return m.keys[p], m.err
}

func (m *mockSecrets) Set(p domain.AIProvider, secret string) error {
	if m.err != nil {
		return m.err
	}
	m.keys[p] = secret
	return nil
}

func (m *mockSecrets) Delete(p domain.AIProvider) error {
	delete(m.keys, p)
	return m.err
}

// mockHistory is a mock implementation of driven.HistoryStore.
type mockHistory struct {
	entries []domain.HistoryEntry
	err     error
	limit   int
}

func (m *mockHistory) Record(_ context.Context, e domain.HistoryEntry) error {
	m.entries = append(m.entries, e)
	return m.err
}

func (m *mockHistory) SetNotePath(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockHistory) Recent(_ context.Context, limit int) ([]domain.HistoryEntry, error) {
	m.limit = limit
	return m.entries, m.err
}

func (m *mockHistory) Close() error {
	return nil
}

// mockValidator is a mock CatalogValidator.
type mockValidator struct {
	checks    []domain.ModelCheck
	err       error
	keys      map[domain.AIProvider]string
	providers []domain.AIProvider
}

func (m *mockValidator) SetKey(p domain.AIProvider, key string) {
	m.keys[p] = key
}

func (m *mockValidator) ValidateCatalog(
	_ context.Context,
	providers []domain.AIProvider,
	report func(domain.ModelCheck),
) ([]domain.ModelCheck, error) {
	m.providers = providers
	for _, c := range m.checks {
		report(c)
	}
	return m.checks, m.err
}

// mockChecker is a mock ConnectionChecker.
type mockChecker struct {
	err      error
	settings domain.Settings
}

func (m *mockChecker) Validate(_ context.Context, settings domain.Settings) error {
	m.settings = settings
	return m.err
}

// testServices holds the doubles installed by setupTestServices.
type testServices struct {
	config    *memory.ConfigStore
	settings  *services.SettingsService
	assistant *mockAssistant
	secrets   *mockSecrets
	history   *mockHistory
	validator *mockValidator
	checker   *mockChecker
}

// setupTestServices installs doubles for every service and returns a
// cleanup function that removes them.
func setupTestServices() (*testServices, func()) {
	config := memory.NewConfigStore()
	ts := &testServices{
		config:   config,
		settings: services.NewSettingsService(config),
		assistant: &mockAssistant{
			result: &domain.QueryResult{
				ID:       "req-1",
				Query:    "what is go",
				Provider: domain.AIProviderOpenAI,
				Model:    "gpt-4o-mini",
				Sources:  []string{"notes/go.md"},
				Text:     "Go is a language. See [[notes/go.md]].",
				Title:    "Go Basics",
				References: []domain.Reference{
					{Raw: "[[notes/go.md]]", Path: "notes/go.md", Notation: domain.NotationWiki},
				},
			},
		},
		secrets:   &mockSecrets{keys: make(map[domain.AIProvider]string)},
		history:   &mockHistory{},
		validator: &mockValidator{keys: make(map[domain.AIProvider]string)},
		checker:   &mockChecker{},
	}

	SetServices(&Services{
		Settings:  ts.settings,
		Assistant: ts.assistant,
		History:   ts.history,
		Secrets:   ts.secrets,
		Validator: ts.validator,
		Checker:   ts.checker,
	})

	return ts, func() {
		SetServices(&Services{})
	}
}

// executeCommand runs the root command with args and stdin, returning the
// combined output.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := resetOutput(t)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetOutput resets flags and captures output in a fresh buffer.
func resetOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	return buf
}

// resetFlags restores every flag in the command tree to its default, since
// cobra keeps parsed values between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
