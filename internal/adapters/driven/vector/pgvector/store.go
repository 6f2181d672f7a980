// Package pgvector provides a Postgres-backed vector index using the
// pgvector extension.
package pgvector

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"
	pgvpgx "github.com/pgvector/pgvector-go/pgx"

	"github.com/custodia-labs/wikibot/internal/core/domain"
	"github.com/custodia-labs/wikibot/internal/core/ports/driven"
	"github.com/custodia-labs/wikibot/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorIndex = (*Store)(nil)

// Config holds vector store configuration.
type Config struct {
	// DatabaseURL is the Postgres connection string.
	DatabaseURL string

	// Collection namespaces the stored chunks, so multiple wikis can
	// share one database.
	Collection string

	// Embedder computes vectors for inserted and queried text.
	Embedder driven.EmbeddingService
}

// Store is a pgvector-backed chunk index.
//
// Chunks are stored with positional ids "{page_id}-{i}" alongside the
// page id they came from. Replacement deletes by the stored page id
// column, so re-ingesting a page that shrank cannot leave stale rows
// behind.
type Store struct {
	pool       *pgxpool.Pool
	collection string
	embedder   driven.EmbeddingService
}

// New connects to Postgres, ensures the schema exists and returns the
// store. The embedding column is sized to the embedder's dimensions.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("pgvector: database URL is required")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("pgvector: collection name is required")
	}
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("pgvector: embedder is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgvector: parse database URL: %w", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgvpgx.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pgvector: connect: %w", err)
	}

	s := &Store{
		pool:       pool,
		collection: cfg.Collection,
		embedder:   cfg.Embedder,
	}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Debug("Vector store ready (collection %s, %d dims)", cfg.Collection, cfg.Embedder.Dimensions())
	return s, nil
}

// ensureSchema creates the extension, table and indexes if missing.
func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id         TEXT NOT NULL,
			collection TEXT NOT NULL,
			page_id    TEXT NOT NULL,
			title      TEXT NOT NULL DEFAULT '',
			content    TEXT NOT NULL,
			embedding  vector(%d) NOT NULL,
			PRIMARY KEY (collection, id)
		)`, s.embedder.Dimensions()),
		`CREATE INDEX IF NOT EXISTS chunks_page_idx ON chunks (collection, page_id)`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("pgvector: ensure schema: %w", err)
		}
	}
	return nil
}

// UpsertDocument replaces all chunks stored for a page.
//
// Embeddings are computed before the transaction opens, so a failed or
// slow embedding call never holds row locks. The delete and insert run
// in one transaction: a reader never observes the page half-indexed.
func (s *Store) UpsertDocument(ctx context.Context, pageID, title string, chunks []string) (int, error) {
	if pageID == "" {
		return 0, fmt.Errorf("pgvector: %w: page id", domain.ErrInvalidInput)
	}

	var embeddings [][]float32
	if len(chunks) > 0 {
		var err error
		embeddings, err = s.embedder.EmbedBatch(ctx, chunks)
		if err != nil {
			return 0, fmt.Errorf("embed %d chunks for page %s: %w", len(chunks), pageID, err)
		}
		if len(embeddings) != len(chunks) {
			return 0, fmt.Errorf("embed page %s: got %d embeddings for %d chunks", pageID, len(embeddings), len(chunks))
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin upsert for page %s: %w", pageID, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM chunks WHERE collection = $1 AND page_id = $2`,
		s.collection, pageID,
	); err != nil {
		return 0, fmt.Errorf("delete stale chunks for page %s: %w", pageID, err)
	}

	for i, chunk := range chunks {
		if _, err := tx.Exec(ctx,
			`INSERT INTO chunks (id, collection, page_id, title, content, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			domain.ChunkID(pageID, i), s.collection, pageID, title, chunk,
			pgv.NewVector(embeddings[i]),
		); err != nil {
			return 0, fmt.Errorf("insert chunk %d of page %s: %w", i, pageID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit upsert for page %s: %w", pageID, err)
	}

	return len(chunks), nil
}

// Query embeds the text and returns the topK nearest chunks by cosine
// distance. Similarity is reported as 1 - distance.
func (s *Store) Query(ctx context.Context, text string, topK int) ([]domain.ScoredChunk, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("pgvector: %w: empty query", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("pgvector: %w: topK must be positive", domain.ErrInvalidInput)
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT page_id, title, content, 1 - (embedding <=> $1) AS similarity
		 FROM chunks
		 WHERE collection = $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		pgv.NewVector(embedding), s.collection, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.ScoredChunk
	for rows.Next() {
		var c domain.ScoredChunk
		if err := rows.Scan(&c.PageID, &c.Title, &c.Content, &c.Similarity); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunk rows: %w", err)
	}

	return results, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
