package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/wikibot/internal/core/domain"
	"github.com/custodia-labs/wikibot/internal/core/ports/driven"
	"github.com/custodia-labs/wikibot/internal/core/ports/driving"
	"github.com/custodia-labs/wikibot/internal/logger"
	"github.com/custodia-labs/wikibot/internal/timeutil"
)

// Ensure IngestOrchestrator implements the interface.
var _ driving.Ingestor = (*IngestOrchestrator)(nil)

// IngestOrchestrator drives the end-to-end wiki sync: resolve the
// candidate page set, apply filters, and for each eligible page
// fetch, normalise, chunk and reconcile against the vector index.
//
// The run is strictly sequential over pages. Every failure after the
// initial listing is contained per page so one bad page never stops
// the sync of the rest.
type IngestOrchestrator struct {
	source     driven.ContentSource
	index      driven.VectorIndex
	normaliser driven.Normaliser
	chunker    driven.Chunker
	runStore   driven.RunStore // optional; runs are saved best-effort

	defaultSpaceKey string

	// Status tracking for the CLI progress loop.
	mu     sync.RWMutex
	active *driving.IngestStatus
}

// NewIngestOrchestrator creates a new ingestion orchestrator.
// The runStore is optional - if nil, run history is not persisted.
func NewIngestOrchestrator(
	source driven.ContentSource,
	index driven.VectorIndex,
	normaliser driven.Normaliser,
	chunker driven.Chunker,
	runStore driven.RunStore,
	defaultSpaceKey string,
) *IngestOrchestrator {
	return &IngestOrchestrator{
		source:          source,
		index:           index,
		normaliser:      normaliser,
		chunker:         chunker,
		runStore:        runStore,
		defaultSpaceKey: defaultSpaceKey,
	}
}

// Ingest runs the pipeline with the given options.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *IngestOrchestrator) Ingest(
	ctx context.Context, opts domain.IngestOptions,
) (*domain.IngestReport, error) {
	if o.source == nil {
		return nil, fmt.Errorf("ingest: content source not configured")
	}
	if o.index == nil {
		return nil, fmt.Errorf("ingest: %w", domain.ErrVectorIndexUnavailable)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultIngestLimit
	}

	exclude := make(map[string]struct{}, len(opts.ExcludeIDs))
	for _, id := range opts.ExcludeIDs {
		exclude[id] = struct{}{}
	}

	// Normalise the cutoff once so every comparison is UTC-to-UTC.
	var cutoff *time.Time
	if opts.After != nil {
		c := timeutil.EnsureUTC(*opts.After)
		cutoff = &c
	}

	spaceKey := opts.SpaceKey
	if spaceKey == "" {
		spaceKey = o.defaultSpaceKey
	}

	// Resolve the candidate set. Explicit ids become lightweight
	// candidates and are fetched inside the guarded loop, so a fetch
	// failure for one id surfaces as an errored page, not an abort.
	var candidates []domain.PageSummary
	if len(opts.PageIDs) > 0 {
		candidates = make([]domain.PageSummary, len(opts.PageIDs))
		for i, id := range opts.PageIDs {
			candidates[i] = domain.PageSummary{ID: id}
		}
	} else {
		var err error
		candidates, err = o.source.ListPages(ctx, spaceKey)
		if err != nil {
			return nil, fmt.Errorf("list pages: %w", err)
		}
	}

	report := &domain.IngestReport{
		ID:        uuid.New().String(),
		SpaceKey:  spaceKey,
		Total:     len(candidates),
		StartedAt: time.Now().UTC(),
	}

	o.setStatus(&driving.IngestStatus{Running: true, SpaceKey: spaceKey})
	defer o.clearStatus()

	logger.Info("Starting ingestion: %d candidate pages in space %s", report.Total, spaceKey)

	for i := range candidates {
		// Cancellation is honoured between pages only; each external
		// call blocks until the current page's outcome is final.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// The limit halts the entire run, not just one page.
		if report.Processed >= limit {
			logger.Info("Page limit (%d) reached, halting run", limit)
			break
		}

		cand := candidates[i]

		if _, excluded := exclude[cand.ID]; excluded {
			logger.Debug("Skipping %s: excluded", cand.ID)
			o.skip(report)
			continue
		}

		page, err := o.source.GetPage(ctx, cand.ID)
		if err != nil {
			o.fail(report, cand.ID, cand.Title, fmt.Errorf("fetch page: %w", err))
			continue
		}

		title := page.Title
		if title == "" {
			title = cand.Title
		}

		// Inclusive boundary: skip only pages modified strictly earlier
		// than the cutoff.
		if cutoff != nil && page.Version.UTC().Before(*cutoff) {
			logger.Debug("Skipping %s (%s): modified %s, before cutoff %s",
				page.ID, title, page.Version.Format(time.RFC3339), cutoff.Format(time.RFC3339))
			o.skip(report)
			continue
		}

		if strings.TrimSpace(page.BodyHTML) == "" {
			logger.Debug("Skipping %s (%s): empty body", page.ID, title)
			o.skip(report)
			continue
		}

		text := o.normaliser.ToText(page.BodyHTML)
		if text == "" {
			logger.Debug("Skipping %s (%s): no text after normalisation", page.ID, title)
			o.skip(report)
			continue
		}

		chunks := o.chunker.Split(text)

		stored, err := o.index.UpsertDocument(ctx, page.ID, title, chunks)
		if err != nil {
			o.fail(report, page.ID, title, fmt.Errorf("upsert chunks: %w", err))
			continue
		}

		logger.Debug("Processed %s (%s): %d chunks stored", page.ID, title, stored)
		report.Processed++
		o.updateStatus(report)
	}

	report.FinishedAt = time.Now().UTC()

	logger.Info("Ingestion complete: %d total, %d processed, %d skipped, %d errored",
		report.Total, report.Processed, report.Skipped, report.Errored)

	if o.runStore != nil {
		if err := o.runStore.SaveRun(ctx, report); err != nil {
			logger.Warn("Failed to save run history: %v", err)
		}
	}

	return report, nil
}

// Status returns the progress of the currently running ingestion.
func (o *IngestOrchestrator) Status(_ context.Context) (*driving.IngestStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.active != nil {
		// Return a copy to avoid race conditions.
		s := *o.active
		return &s, nil
	}
	return &driving.IngestStatus{Running: false}, nil
}

// skip tallies a filtered or empty-content page. Skips are not errors.
func (o *IngestOrchestrator) skip(report *domain.IngestReport) {
	report.Skipped++
	o.updateStatus(report)
}

// fail contains one page's failure: tally it, retain the reason for
// the summary, and keep going.
func (o *IngestOrchestrator) fail(report *domain.IngestReport, pageID, title string, err error) {
	logger.Warn("Failed to process %s (%s): %v", pageID, title, err)
	report.Errored++
	report.Failures = append(report.Failures, domain.PageFailure{
		PageID: pageID,
		Title:  title,
		Reason: err.Error(),
	})
	o.updateStatus(report)
}

func (o *IngestOrchestrator) setStatus(status *driving.IngestStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = status
}

func (o *IngestOrchestrator) updateStatus(report *domain.IngestReport) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active == nil {
		return
	}
	o.active.Processed = report.Processed
	o.active.Skipped = report.Skipped
	o.active.Errored = report.Errored
}

func (o *IngestOrchestrator) clearStatus() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = nil
}
