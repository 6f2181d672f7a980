package domain

import "time"

// DefaultIngestLimit caps the number of pages processed in one run.
const DefaultIngestLimit = 5000

// IngestOptions configures a single ingestion run.
// All filters are optional; the zero value means "ingest the configured
// space with the default limit".
type IngestOptions struct {
	// SpaceKey selects the wiki space. Empty means the configured default.
	SpaceKey string

	// PageIDs, when non-empty, restricts the run to an explicit page set.
	// The space listing is skipped entirely.
	PageIDs []string

	// ExcludeIDs are page ids skipped even when otherwise eligible.
	ExcludeIDs []string

	// Limit is the maximum number of pages processed before the run
	// halts. Zero or negative means DefaultIngestLimit.
	Limit int

	// After, when set, skips pages whose version is strictly earlier.
	// The boundary is inclusive: a page modified exactly at After is
	// still processed.
	After *time.Time
}

// PageFailure records one errored page and the reason kept for the
// run summary.
type PageFailure struct {
	PageID string
	Title  string
	Reason string
}

// IngestReport summarises one ingestion run.
// Invariant: Processed + Skipped + Errored <= Total.
type IngestReport struct {
	// ID uniquely identifies the run.
	ID string

	// SpaceKey is the space the run targeted ("" for explicit-id runs).
	SpaceKey string

	// Total is the number of candidate pages resolved before filtering.
	Total int

	// Processed counts pages fully normalised, chunked and stored.
	Processed int

	// Skipped counts pages excluded by filters or with empty content.
	Skipped int

	// Errored counts pages that failed fetch or processing.
	Errored int

	// Failures retains the reason for every errored page.
	Failures []PageFailure

	StartedAt  time.Time
	FinishedAt time.Time
}
