package mcp

import (
	"context"

	"github.com/custodia-labs/wikibot/internal/core/domain"
)

// mockSearcher is a mock implementation of driving.Searcher.
type mockSearcher struct {
	results  []domain.ScoredChunk
	err      error
	lastTopK int
}

func (m *mockSearcher) Search(_ context.Context, _ string, topK int) ([]domain.ScoredChunk, error) {
	m.lastTopK = topK
	return m.results, m.err
}

// mockAnswerer is a mock implementation of driving.Answerer.
type mockAnswerer struct {
	answer       string
	summary      string
	err          error
	lastQuestion string
}

func (m *mockAnswerer) Answer(_ context.Context, question string) (string, error) {
	m.lastQuestion = question
	return m.answer, m.err
}

func (m *mockAnswerer) SummariseThread(_ context.Context, _, _ string) (string, error) {
	return m.summary, m.err
}

// mockRunStore is a mock implementation of driven.RunStore.
type mockRunStore struct {
	runs []domain.IngestReport
	last *domain.IngestReport
	err  error
}

func (m *mockRunStore) SaveRun(_ context.Context, _ *domain.IngestReport) error {
	return m.err
}

func (m *mockRunStore) ListRuns(_ context.Context, _ int) ([]domain.IngestReport, error) {
	return m.runs, m.err
}

func (m *mockRunStore) LastRun(_ context.Context, _ string) (*domain.IngestReport, error) {
	return m.last, m.err
}

func (m *mockRunStore) Close() error { return nil }
