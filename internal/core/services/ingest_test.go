package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikibot/internal/core/domain"
	htmlnorm "github.com/custodia-labs/wikibot/internal/normalisers/html"
	"github.com/custodia-labs/wikibot/internal/postprocessors/chunker"
)

// --- Mock implementations for ingest testing ---

// ingestMockSource implements driven.ContentSource for testing.
type ingestMockSource struct {
	summaries  []domain.PageSummary
	pages      map[string]*domain.Page
	listErr    error
	getErrs    map[string]error
	fetchCount int
}

func newIngestMockSource() *ingestMockSource {
	return &ingestMockSource{
		pages:   make(map[string]*domain.Page),
		getErrs: make(map[string]error),
	}
}

func (m *ingestMockSource) addPage(p *domain.Page) {
	m.pages[p.ID] = p
	m.summaries = append(m.summaries, domain.PageSummary{ID: p.ID, Title: p.Title})
}

func (m *ingestMockSource) ListPages(_ context.Context, _ string) ([]domain.PageSummary, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.summaries, nil
}

func (m *ingestMockSource) GetPage(_ context.Context, id string) (*domain.Page, error) {
	m.fetchCount++
	if err, ok := m.getErrs[id]; ok {
		return nil, err
	}
	page, ok := m.pages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return page, nil
}

// ingestMockIndex implements driven.VectorIndex, recording the
// delete-then-insert reconciliation so tests can assert on it.
type ingestMockIndex struct {
	stored     map[string][]string // pageID -> chunk ids currently in the index
	deletions  [][]string          // id sets deleted, in call order
	upsertErrs map[string]error
}

func newIngestMockIndex() *ingestMockIndex {
	return &ingestMockIndex{
		stored:     make(map[string][]string),
		upsertErrs: make(map[string]error),
	}
}

func (m *ingestMockIndex) UpsertDocument(
	_ context.Context, pageID, _ string, chunks []string,
) (int, error) {
	if err, ok := m.upsertErrs[pageID]; ok {
		return 0, err
	}

	// Mirror the real adapter: delete everything stored under the page
	// id, then insert fresh positional ids.
	if existing := m.stored[pageID]; len(existing) > 0 {
		m.deletions = append(m.deletions, existing)
	}
	ids := make([]string, len(chunks))
	for i := range chunks {
		ids[i] = domain.ChunkID(pageID, i)
	}
	m.stored[pageID] = ids
	return len(chunks), nil
}

func (m *ingestMockIndex) Query(_ context.Context, _ string, _ int) ([]domain.ScoredChunk, error) {
	return nil, nil
}

func (m *ingestMockIndex) Close() error { return nil }

// allIDs returns every chunk id currently in the mock index.
func (m *ingestMockIndex) allIDs() []string {
	var ids []string
	for _, pageIDs := range m.stored {
		ids = append(ids, pageIDs...)
	}
	return ids
}

func newTestOrchestrator(
	source *ingestMockSource, index *ingestMockIndex,
) *IngestOrchestrator {
	split, err := chunker.New(16, 4)
	if err != nil {
		panic(err)
	}
	return NewIngestOrchestrator(source, index, htmlnorm.New(), split, nil, "WIKI")
}

// --- Tests ---

func TestIngest_EndToEnd(t *testing.T) {
	now := time.Now().UTC()
	source := newIngestMockSource()
	source.addPage(&domain.Page{
		ID: "A", Title: "Greeting", Version: now,
		BodyHTML: "<p>Hello world</p>",
	})
	source.addPage(&domain.Page{
		ID: "B", Title: "Empty", Version: now,
		BodyHTML: "",
	})
	source.addPage(&domain.Page{
		ID: "C", Title: "Stale", Version: now.AddDate(-1, 0, 0),
		BodyHTML: "<p>old content</p>",
	})
	index := newIngestMockIndex()
	o := newTestOrchestrator(source, index)

	after := now.AddDate(0, 0, -30)
	report, err := o.Ingest(context.Background(), domain.IngestOptions{After: &after})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 0, report.Errored)
	assert.Equal(t, "WIKI", report.SpaceKey)

	assert.Equal(t, []string{"A-0"}, index.allIDs())
}

func TestIngest_LimitHaltsBeforeNextCandidate(t *testing.T) {
	source := newIngestMockSource()
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("p%d", i)
		source.addPage(&domain.Page{
			ID: id, Title: id, Version: time.Now().UTC(),
			BodyHTML: "<p>some body text</p>",
		})
	}
	index := newIngestMockIndex()
	o := newTestOrchestrator(source, index)

	report, err := o.Ingest(context.Background(), domain.IngestOptions{Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 0, report.Errored)
	// The third candidate must not even be fetched.
	assert.Equal(t, 2, source.fetchCount)
}

func TestIngest_ExclusionAlwaysSkips(t *testing.T) {
	source := newIngestMockSource()
	source.addPage(&domain.Page{
		ID: "keep", Title: "Keep", Version: time.Now().UTC(),
		BodyHTML: "<p>kept text</p>",
	})
	source.addPage(&domain.Page{
		ID: "drop", Title: "Drop", Version: time.Now().UTC(),
		BodyHTML: "<p>eligible but excluded</p>",
	})
	index := newIngestMockIndex()
	o := newTestOrchestrator(source, index)

	report, err := o.Ingest(context.Background(), domain.IngestOptions{
		ExcludeIDs: []string{"drop"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Skipped)
	assert.NotContains(t, index.stored, "drop")
}

func TestIngest_CutoffBoundaryIsInclusive(t *testing.T) {
	cutoff := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	source := newIngestMockSource()
	source.addPage(&domain.Page{
		ID: "exact", Title: "Exact", Version: cutoff,
		BodyHTML: "<p>modified exactly at the cutoff</p>",
	})
	source.addPage(&domain.Page{
		ID: "earlier", Title: "Earlier", Version: cutoff.Add(-time.Second),
		BodyHTML: "<p>modified just before</p>",
	})
	index := newIngestMockIndex()
	o := newTestOrchestrator(source, index)

	report, err := o.Ingest(context.Background(), domain.IngestOptions{After: &cutoff})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Skipped)
	assert.Contains(t, index.stored, "exact")
	assert.NotContains(t, index.stored, "earlier")
}

func TestIngest_CutoffComparesAcrossTimezones(t *testing.T) {
	// 09:00+09:00 is 00:00 UTC; a cutoff of 01:00 UTC must skip it.
	kst := time.FixedZone("KST", 9*3600)
	source := newIngestMockSource()
	source.addPage(&domain.Page{
		ID: "local", Title: "Local", Version: time.Date(2024, 6, 1, 9, 0, 0, 0, kst),
		BodyHTML: "<p>text</p>",
	})
	index := newIngestMockIndex()
	o := newTestOrchestrator(source, index)

	cutoff := time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC)
	report, err := o.Ingest(context.Background(), domain.IngestOptions{After: &cutoff})
	require.NoError(t, err)

	assert.Equal(t, 0, report.Processed)
	assert.Equal(t, 1, report.Skipped)
}

func TestIngest_FetchErrorIsContained(t *testing.T) {
	source := newIngestMockSource()
	source.addPage(&domain.Page{
		ID: "ok", Title: "OK", Version: time.Now().UTC(),
		BodyHTML: "<p>fine</p>",
	})
	source.summaries = append(source.summaries, domain.PageSummary{ID: "bad", Title: "Bad"})
	source.getErrs["bad"] = errors.New("boom")
	index := newIngestMockIndex()
	o := newTestOrchestrator(source, index)

	report, err := o.Ingest(context.Background(), domain.IngestOptions{})
	require.NoError(t, err, "per-page failures must not abort the run")

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Errored)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "bad", report.Failures[0].PageID)
	assert.Contains(t, report.Failures[0].Reason, "boom")
}

func TestIngest_UpsertErrorIsContained(t *testing.T) {
	source := newIngestMockSource()
	source.addPage(&domain.Page{
		ID: "x", Title: "X", Version: time.Now().UTC(),
		BodyHTML: "<p>text</p>",
	})
	source.addPage(&domain.Page{
		ID: "y", Title: "Y", Version: time.Now().UTC(),
		BodyHTML: "<p>more text</p>",
	})
	index := newIngestMockIndex()
	index.upsertErrs["x"] = errors.New("store down")
	o := newTestOrchestrator(source, index)

	report, err := o.Ingest(context.Background(), domain.IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Errored)
}

func TestIngest_ListErrorPropagates(t *testing.T) {
	source := newIngestMockSource()
	source.listErr = errors.New("connection refused")
	o := newTestOrchestrator(source, newIngestMockIndex())

	_, err := o.Ingest(context.Background(), domain.IngestOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list pages")
}

func TestIngest_ExplicitIDsFetchedInLoop(t *testing.T) {
	source := newIngestMockSource()
	source.pages["a"] = &domain.Page{
		ID: "a", Title: "A", Version: time.Now().UTC(),
		BodyHTML: "<p>alpha</p>",
	}
	source.getErrs["missing"] = domain.ErrNotFound
	o := newTestOrchestrator(source, newIngestMockIndex())

	report, err := o.Ingest(context.Background(), domain.IngestOptions{
		PageIDs: []string{"a", "missing"},
	})
	require.NoError(t, err, "a bad explicit id must not abort the run")

	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Errored)
}

func TestIngest_ReingestIsIdempotent(t *testing.T) {
	source := newIngestMockSource()
	source.addPage(&domain.Page{
		ID: "A", Title: "Doc", Version: time.Now().UTC(),
		BodyHTML: "<p>Hello world</p>",
	})
	index := newIngestMockIndex()
	o := newTestOrchestrator(source, index)

	_, err := o.Ingest(context.Background(), domain.IngestOptions{})
	require.NoError(t, err)
	first := index.allIDs()

	_, err = o.Ingest(context.Background(), domain.IngestOptions{})
	require.NoError(t, err)
	second := index.allIDs()

	// Old ids deleted, identical new ids inserted, nothing duplicated.
	assert.Equal(t, first, second)
	require.Len(t, index.deletions, 1)
	assert.Equal(t, first, index.deletions[0])
}

func TestIngest_CountsInvariant(t *testing.T) {
	source := newIngestMockSource()
	source.addPage(&domain.Page{
		ID: "a", Title: "A", Version: time.Now().UTC(), BodyHTML: "<p>a</p>",
	})
	source.addPage(&domain.Page{
		ID: "b", Title: "B", Version: time.Now().UTC(), BodyHTML: "",
	})
	source.summaries = append(source.summaries, domain.PageSummary{ID: "c"})
	source.getErrs["c"] = errors.New("bad")
	o := newTestOrchestrator(source, newIngestMockIndex())

	report, err := o.Ingest(context.Background(), domain.IngestOptions{})
	require.NoError(t, err)

	assert.LessOrEqual(t, report.Processed+report.Skipped+report.Errored, report.Total)
	assert.Equal(t, 3, report.Total)
}

func TestStatus_IdleWhenNotRunning(t *testing.T) {
	o := newTestOrchestrator(newIngestMockSource(), newIngestMockIndex())

	status, err := o.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Running)
}
