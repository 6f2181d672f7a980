// Package chunker provides fixed-size word-window text chunking.
package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/wikibot/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of words per chunk.
const DefaultChunkSize = 2048

// DefaultOverlap is the default number of words repeated between
// consecutive chunks. The overlap preserves context across chunk
// boundaries.
const DefaultOverlap = 50

// Ensure Splitter implements the interface.
var _ driven.Chunker = (*Splitter)(nil)

// Splitter splits text into overlapping word windows.
// It is a pure function of its input: the same text always yields the
// same chunk sequence.
type Splitter struct {
	chunkSize int
	overlap   int
}

// New creates a splitter. An overlap equal to or larger than the chunk
// size would stop the window from ever advancing, so it is rejected
// here rather than guarded at split time.
func New(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunker: chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunker: overlap must not be negative, got %d", overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("chunker: overlap %d must be smaller than chunk size %d", overlap, chunkSize)
	}

	return &Splitter{
		chunkSize: chunkSize,
		overlap:   overlap,
	}, nil
}

// Default returns a splitter with the default window parameters.
func Default() *Splitter {
	s, err := New(DefaultChunkSize, DefaultOverlap)
	if err != nil {
		// Defaults always satisfy the constructor invariants.
		panic(err)
	}
	return s
}

// Split returns the ordered chunk texts for the input.
// Each chunk takes words [start, start+chunkSize); start advances by
// chunkSize-overlap until it passes the end of the text. Empty text
// yields no chunks; text shorter than one window yields exactly one.
func (s *Splitter) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := s.chunkSize - s.overlap
	chunks := make([]string, 0, (len(words)+step-1)/step)

	for start := 0; start < len(words); start += step {
		end := start + s.chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}

	return chunks
}
