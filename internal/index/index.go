// Package index provides vector storage for retrieval. The default backend is
// an in-process index with a JSON snapshot on disk; a Milvus-backed store is
// available for deployments that already run one.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/saathi-ai/saathi/internal/core"
)

// snapshotVersion guards against loading snapshots written by an incompatible
// build.
const snapshotVersion = 1

type entry struct {
	Chunk  core.Chunk `json:"chunk"`
	Vector []float32  `json:"vector"`
}

type snapshot struct {
	Version   int     `json:"version"`
	Dimension int     `json:"dimension"`
	Entries   []entry `json:"entries"`
}

// Index is an append-only in-memory vector index. It is built once during
// ingestion and read-mostly afterwards; reads and writes never interleave
// because ingestion publishes a fresh snapshot that the gateway loads whole.
type Index struct {
	mu      sync.RWMutex
	dim     int
	entries []entry
}

// New creates an empty index. The dimension is established by the first
// vector added.
func New() *Index {
	return &Index{}
}

// Add appends a chunk with its embedding vector. A vector whose dimension
// differs from the established one fails with core.ErrDimensionMismatch and
// leaves the index unchanged.
func (ix *Index) Add(ctx context.Context, chunk core.Chunk, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("chunk %s: %w: empty vector", chunk.ID, core.ErrDimensionMismatch)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.dim == 0 {
		ix.dim = len(vector)
	} else if len(vector) != ix.dim {
		return fmt.Errorf("chunk %s: %w: got %d, index has %d", chunk.ID, core.ErrDimensionMismatch, len(vector), ix.dim)
	}

	ix.entries = append(ix.entries, entry{Chunk: chunk, Vector: vector})
	return nil
}

// Search returns the k nearest chunks by cosine similarity, in descending
// score order. Ties keep ingestion order. An empty index returns an empty
// result.
func (ix *Index) Search(ctx context.Context, vector []float32, k int) ([]core.SearchResult, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.entries) == 0 {
		return []core.SearchResult{}, nil
	}
	if len(vector) != ix.dim {
		return nil, fmt.Errorf("query vector: %w: got %d, index has %d", core.ErrDimensionMismatch, len(vector), ix.dim)
	}
	if k <= 0 {
		return []core.SearchResult{}, nil
	}

	results := make([]core.SearchResult, len(ix.entries))
	for i, e := range ix.entries {
		results[i] = core.SearchResult{Chunk: e.Chunk, Score: cosine(vector, e.Vector)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Len returns the number of stored chunks.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Dimension returns the established vector dimension, or zero if the index is
// empty.
func (ix *Index) Dimension() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dim
}

// Persist writes a durable snapshot. The file is written to a temp path and
// renamed so a concurrently loading reader sees either the old snapshot or
// the new one, never a partial write.
func (ix *Index) Persist(path string) error {
	ix.mu.RLock()
	snap := snapshot{Version: snapshotVersion, Dimension: ix.dim, Entries: ix.entries}
	data, err := json.Marshal(snap)
	ix.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal index snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write index snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("publish index snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot from disk. A missing, unreadable, corrupt or
// version-incompatible snapshot fails with core.ErrIndexNotFound.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrIndexNotFound, path)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: corrupt snapshot %s: %v", core.ErrIndexNotFound, path, err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: snapshot %s has version %d, want %d", core.ErrIndexNotFound, path, snap.Version, snapshotVersion)
	}

	return &Index{dim: snap.Dimension, entries: snap.Entries}, nil
}

// cosine computes cosine similarity. Zero-norm vectors score zero.
func cosine(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

var _ core.VectorStore = (*Index)(nil)
