package mcp

import (
	"context"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driving"
)

// mockAssistantService is a mock implementation of driving.AssistantService.
type mockAssistantService struct {
	result   *domain.QueryResult
	err      error
	saveErr  error
	savePath string

	requests []driving.AskRequest
	saved    []*domain.QueryResult
}

func (m *mockAssistantService) Ask(_ context.Context, req driving.AskRequest) (*domain.QueryResult, error) {
	m.requests = append(m.requests, req)
	return m.result, m.err
}

func (m *mockAssistantService) SaveNote(_ context.Context, result *domain.QueryResult) (string, error) {
	m.saved = append(m.saved, result)
	return m.savePath, m.saveErr
}

// mockVault is a mock implementation of driving.VaultBrowser.
type mockVault struct {
	docs     []domain.Document
	contents map[string]string
	err      error
}

func (m *mockVault) ListDocuments(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockVault) Read(_ context.Context, path string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	content, ok := m.contents[path]
	if !ok {
		return "", domain.ErrNotFound
	}
	return content, nil
}
