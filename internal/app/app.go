// Package app wires configuration into adapters and services.
package app

import (
	"context"
	"fmt"

	"github.com/custodia-labs/wikibot/internal/adapters/driven/confluence"
	embeddingopenai "github.com/custodia-labs/wikibot/internal/adapters/driven/embedding/openai"
	llmopenai "github.com/custodia-labs/wikibot/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/wikibot/internal/adapters/driven/slack"
	"github.com/custodia-labs/wikibot/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/wikibot/internal/adapters/driven/vector/pgvector"
	"github.com/custodia-labs/wikibot/internal/config"
	"github.com/custodia-labs/wikibot/internal/core/ports/driven"
	"github.com/custodia-labs/wikibot/internal/core/services"
	"github.com/custodia-labs/wikibot/internal/logger"
	"github.com/custodia-labs/wikibot/internal/normalisers/html"
	"github.com/custodia-labs/wikibot/internal/postprocessors/chunker"
)

// App holds the constructed adapters and services for one process.
//
// Construction is tolerant: adapters whose secrets are absent stay
// nil, and so do the services depending on them. Each command checks
// for the services it needs, so `wikibot runs` works without an
// OpenAI key.
type App struct {
	Config *config.Config

	Source    driven.ContentSource
	Embedder  driven.EmbeddingService
	Index     driven.VectorIndex
	LLM       driven.LLMService
	Messenger driven.Messenger
	RunStore  driven.RunStore

	Ingestor *services.IngestOrchestrator
	Answerer *services.AnswerService
}

// New builds the application from config.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	runStore, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	a.RunStore = runStore

	if cfg.Confluence.BaseURL != "" && cfg.ConfluenceToken != "" {
		source, err := confluence.New(confluence.Config{
			BaseURL:           cfg.Confluence.BaseURL,
			Username:          cfg.Confluence.Username,
			APIToken:          cfg.ConfluenceToken,
			RequestsPerSecond: cfg.Confluence.RequestsPerSecond,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("confluence client: %w", err)
		}
		a.Source = source
	}

	if cfg.OpenAIKey != "" {
		embedder, err := embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.EmbeddingModel,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("embedding service: %w", err)
		}
		a.Embedder = embedder

		llm, err := llmopenai.NewLLMService(llmopenai.Config{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.ChatModel,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("llm service: %w", err)
		}
		a.LLM = llm
	}

	if cfg.DatabaseURL != "" && a.Embedder != nil {
		index, err := pgvector.New(ctx, pgvector.Config{
			DatabaseURL: cfg.DatabaseURL,
			Collection:  cfg.Vector.Collection,
			Embedder:    a.Embedder,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("vector index: %w", err)
		}
		a.Index = index
	}

	if cfg.SlackToken != "" {
		messenger, err := slack.New(slack.Config{
			Token:     cfg.SlackToken,
			Username:  cfg.Slack.Username,
			IconEmoji: cfg.Slack.IconEmoji,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("slack client: %w", err)
		}
		a.Messenger = messenger
	}

	split, err := chunker.New(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("chunker: %w", err)
	}

	if a.Source != nil && a.Index != nil {
		a.Ingestor = services.NewIngestOrchestrator(
			a.Source, a.Index, html.New(), split, a.RunStore, cfg.Confluence.SpaceKey)
	}

	if a.Index != nil && a.LLM != nil {
		a.Answerer = services.NewAnswerService(
			a.Index, a.LLM, a.Messenger, cfg.Confluence.BaseURL, cfg.Confluence.SpaceKey)
	}

	return a, nil
}

// Close releases adapter resources.
func (a *App) Close() {
	if a.Index != nil {
		if err := a.Index.Close(); err != nil {
			logger.Warn("Close vector index: %v", err)
		}
	}
	if a.RunStore != nil {
		if err := a.RunStore.Close(); err != nil {
			logger.Warn("Close run store: %v", err)
		}
	}
}
