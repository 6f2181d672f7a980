package driven

import (
	"context"

	"github.com/custodia-labs/wikibot/internal/core/domain"
)

// VectorIndex stores and retrieves page chunks by similarity.
// Construction requires a collection name and an injected
// EmbeddingService; every insert triggers embedding computation, which
// is the expensive externally-billed operation the ingestion design
// exists to minimise.
type VectorIndex interface {
	// UpsertDocument replaces all stored chunks for a page: existing
	// entries whose stored page id matches are deleted, then fresh
	// entries with positional ids "{pageID}-{i}" are inserted.
	// The delete is keyed on the stored page id, never on reconstructed
	// chunk ids, so a shrinking chunk count cannot strand stale rows.
	// Returns the number of chunks stored.
	UpsertDocument(ctx context.Context, pageID, title string, chunks []string) (int, error)

	// Query returns the topK most similar chunks to the query text,
	// ranked by the store's similarity metric. Ordering between equal
	// scores is store-native and not deterministic.
	Query(ctx context.Context, text string, topK int) ([]domain.ScoredChunk, error)

	// Close releases resources.
	Close() error
}
