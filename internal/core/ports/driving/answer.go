package driving

import (
	"context"

	"github.com/custodia-labs/wikibot/internal/core/domain"
)

// Answerer produces natural-language answers and summaries from the
// indexed wiki content.
type Answerer interface {
	// Answer retrieves relevant wiki chunks for the question and asks
	// the language model for a grounded reply.
	Answer(ctx context.Context, question string) (string, error)

	// SummariseThread fetches a conversation thread and summarises it.
	SummariseThread(ctx context.Context, channel, threadTS string) (string, error)
}

// Searcher exposes raw chunk retrieval without LLM involvement.
type Searcher interface {
	// Search returns the topK most similar chunks to the query.
	Search(ctx context.Context, query string, topK int) ([]domain.ScoredChunk, error)
}
