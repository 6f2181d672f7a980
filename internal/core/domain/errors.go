package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingField indicates an expected field was absent from a
	// fetched page. Counted as a structural error during ingestion.
	ErrMissingField = errors.New("missing field")

	// ErrEmptyContent indicates a page had no indexable text.
	// Treated as a skip, never as an error.
	ErrEmptyContent = errors.New("empty content")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Vector search is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrMessengerUnavailable indicates the chat client is not configured.
	ErrMessengerUnavailable = errors.New("messenger unavailable")
)
