package driven

import (
	"context"

	"github.com/custodia-labs/wikibot/internal/core/domain"
)

// ContentSource fetches pages from the external wiki.
// The adapter handles pagination internally: ListPages keeps requesting
// successive pages until the API signals the end with a short or empty
// page.
type ContentSource interface {
	// ListPages returns lightweight summaries for every page in a space.
	// A listing failure aborts the ingestion run before the loop begins;
	// this is the only point where a source error propagates.
	ListPages(ctx context.Context, spaceKey string) ([]domain.PageSummary, error)

	// GetPage fetches one page with body and version detail.
	// A page missing its version timestamp returns an error wrapping
	// domain.ErrMissingField; the caller contains it per page.
	GetPage(ctx context.Context, id string) (*domain.Page, error)
}
