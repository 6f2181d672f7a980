package mcp

import (
	"github.com/custodia-labs/wikibot/internal/core/ports/driven"
	"github.com/custodia-labs/wikibot/internal/core/ports/driving"
)

// Ports aggregates the port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides raw chunk retrieval.
	Search driving.Searcher

	// Answer provides LLM-backed question answering. Optional; the
	// wiki_ask tool is not registered without it.
	Answer driving.Answerer

	// Runs exposes the ingestion run history. Optional; the runs
	// resources return empty results without it.
	Runs driven.RunStore
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearcher
	}
	return nil
}
