package driving

import (
	"context"

	"github.com/custodia-labs/wikibot/internal/core/domain"
)

// Ingestor drives wiki ingestion runs.
type Ingestor interface {
	// Ingest runs the pipeline with the given options and returns the
	// run report. Per-page failures are contained and tallied in the
	// report; only configuration and listing failures return an error.
	Ingest(ctx context.Context, opts domain.IngestOptions) (*domain.IngestReport, error)

	// Status returns the progress of the currently running ingestion,
	// or an idle status when none is active.
	Status(ctx context.Context) (*IngestStatus, error)
}

// IngestStatus is a point-in-time snapshot of a running ingestion.
type IngestStatus struct {
	// Running indicates whether an ingestion is in progress.
	Running bool

	// SpaceKey is the space being ingested.
	SpaceKey string

	// Processed, Skipped and Errored are the counters so far.
	Processed int
	Skipped   int
	Errored   int
}
