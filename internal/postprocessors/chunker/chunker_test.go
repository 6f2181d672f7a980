package chunker

import (
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		s, err := New(100, 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.chunkSize != 100 || s.overlap != 20 {
			t.Errorf("got chunkSize=%d overlap=%d", s.chunkSize, s.overlap)
		}
	})

	t.Run("overlap equal to chunk size rejected", func(t *testing.T) {
		if _, err := New(100, 100); err == nil {
			t.Error("expected error for overlap == chunkSize")
		}
	})

	t.Run("overlap larger than chunk size rejected", func(t *testing.T) {
		if _, err := New(100, 150); err == nil {
			t.Error("expected error for overlap > chunkSize")
		}
	})

	t.Run("non-positive chunk size rejected", func(t *testing.T) {
		if _, err := New(0, 0); err == nil {
			t.Error("expected error for chunkSize 0")
		}
	})

	t.Run("negative overlap rejected", func(t *testing.T) {
		if _, err := New(100, -1); err == nil {
			t.Error("expected error for negative overlap")
		}
	})
}

func TestDefault(t *testing.T) {
	s := Default()
	if s.chunkSize != DefaultChunkSize {
		t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, s.chunkSize)
	}
	if s.overlap != DefaultOverlap {
		t.Errorf("expected overlap %d, got %d", DefaultOverlap, s.overlap)
	}
}

func TestSplit_Empty(t *testing.T) {
	s := Default()
	if chunks := s.Split(""); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
	if chunks := s.Split("   \n\t "); len(chunks) != 0 {
		t.Errorf("expected no chunks for whitespace text, got %d", len(chunks))
	}
}

func TestSplit_ShortText(t *testing.T) {
	s := Default()
	chunks := s.Split("hello world")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", chunks[0])
	}
}

// nWords builds a text of n distinct words.
func nWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestSplit_ChunkCount(t *testing.T) {
	// For W words, size C, overlap O: ceil((W-O)/(C-O)) chunks.
	tests := []struct {
		words     int
		chunkSize int
		overlap   int
		want      int
	}{
		{words: 10, chunkSize: 10, overlap: 2, want: 1},
		{words: 11, chunkSize: 10, overlap: 2, want: 2},
		{words: 18, chunkSize: 10, overlap: 2, want: 2},
		{words: 19, chunkSize: 10, overlap: 2, want: 3},
		{words: 100, chunkSize: 10, overlap: 0, want: 10},
		{words: 1, chunkSize: 2048, overlap: 50, want: 1},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("W=%d C=%d O=%d", tt.words, tt.chunkSize, tt.overlap)
		t.Run(name, func(t *testing.T) {
			s, err := New(tt.chunkSize, tt.overlap)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			chunks := s.Split(nWords(tt.words))
			if len(chunks) != tt.want {
				t.Errorf("expected %d chunks, got %d", tt.want, len(chunks))
			}
		})
	}
}

func TestSplit_OverlapIdentity(t *testing.T) {
	const overlap = 3
	s, err := New(8, overlap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chunks := s.Split(nWords(30))
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 0; i < len(chunks)-1; i++ {
		cur := strings.Fields(chunks[i])
		next := strings.Fields(chunks[i+1])

		tail := cur[len(cur)-overlap:]
		head := next[:overlap]

		for j := range tail {
			if tail[j] != head[j] {
				t.Errorf("chunk %d/%d overlap mismatch: tail=%v head=%v", i, i+1, tail, head)
				break
			}
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	s := Default()
	text := nWords(5000)

	first := s.Split(text)
	second := s.Split(text)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}
