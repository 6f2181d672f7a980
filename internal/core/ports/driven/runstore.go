package driven

import (
	"context"

	"github.com/custodia-labs/wikibot/internal/core/domain"
)

// RunStore persists ingestion run reports for later inspection.
type RunStore interface {
	// SaveRun stores a finished run report.
	SaveRun(ctx context.Context, report *domain.IngestReport) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]domain.IngestReport, error)

	// LastRun returns the most recent run for a space, or
	// domain.ErrNotFound if the space has never been ingested.
	LastRun(ctx context.Context, spaceKey string) (*domain.IngestReport, error)

	// Close releases resources.
	Close() error
}
