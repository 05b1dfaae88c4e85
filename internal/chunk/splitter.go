// Package chunk splits raw document text into overlapping fixed-size windows
// suitable for embedding.
package chunk

import (
	"fmt"

	"github.com/saathi-ai/saathi/internal/core"
)

// DefaultSize is the default number of characters per chunk.
const DefaultSize = 1000

// DefaultOverlap is the default number of overlapping characters between
// consecutive chunks.
const DefaultOverlap = 100

// Splitter produces chunks by sliding a window of Size characters over the
// document, advancing Size-Overlap characters each step. Splitting is
// deterministic: the same document and configuration always yield the same
// chunks, which keeps re-ingestion reproducible.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter creates a splitter. Size must be positive and overlap must
// satisfy 0 <= overlap < size.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got %d for size %d", overlap, size)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Size returns the configured window size.
func (s *Splitter) Size() int { return s.size }

// Overlap returns the configured window overlap.
func (s *Splitter) Overlap() int { return s.overlap }

// Split chunks a document. Offsets are rune-based so multi-byte scripts never
// get cut mid-character. An empty document yields zero chunks; the final chunk
// may be shorter than the window. Emission stops once a window reaches the end
// of the text, so no chunk is fully contained in its predecessor.
func (s *Splitter) Split(doc core.Document) []core.Chunk {
	runes := []rune(doc.Text)
	if len(runes) == 0 {
		return nil
	}

	step := s.size - s.overlap
	estimated := (len(runes) / step) + 1
	chunks := make([]core.Chunk, 0, estimated)

	for start := 0; ; start += step {
		end := start + s.size
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, core.Chunk{
			ID:     fmt.Sprintf("%s#%d", doc.Source, len(chunks)),
			Source: doc.Source,
			Start:  start,
			End:    end,
			Text:   string(runes[start:end]),
		})

		if end == len(runes) {
			break
		}
	}

	return chunks
}
