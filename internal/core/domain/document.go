package domain

import (
	"fmt"
	"time"
)

// PageSummary is a lightweight listing entry for a wiki page.
// Space listings return summaries; full detail is fetched per page
// during ingestion.
type PageSummary struct {
	// ID is the stable identifier assigned by the wiki.
	ID string

	// Title is the human-readable title. Titles may repeat across pages.
	Title string
}

// Page is a full wiki page snapshot fetched for one ingestion run.
// Pages are read-only: they are re-fetched on every run and never
// mutated by this system.
type Page struct {
	// ID is the stable identifier assigned by the wiki.
	ID string

	// Title is the human-readable title.
	Title string

	// Version is the last-modified instant, always timezone-aware.
	// Naive source timestamps are normalised as UTC.
	Version time.Time

	// BodyHTML is the raw markup body. May be empty.
	BodyHTML string
}

// Chunk is one word-window of a page's normalised text, the unit of
// embedding and retrieval.
type Chunk struct {
	// ID is the positional identifier "{page_id}-{index}". It is stable
	// across runs only while the page text and chunking parameters are
	// unchanged; it is not content-addressed.
	ID string

	// PageID links to the source page.
	PageID string

	// Title is the page title, duplicated across all chunks of a page.
	Title string

	// Content is the word-joined chunk text.
	Content string

	// Position is the ordinal index within the page.
	Position int
}

// ChunkID builds the positional chunk identifier for a page.
func ChunkID(pageID string, index int) string {
	return fmt.Sprintf("%s-%d", pageID, index)
}

// ScoredChunk is a retrieval result: chunk text plus its page metadata
// and the store-reported similarity. Ordering between equal scores is
// store-native and not deterministic.
type ScoredChunk struct {
	PageID     string
	Title      string
	Content    string
	Similarity float64
}
