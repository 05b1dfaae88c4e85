package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saathi-ai/saathi/internal/core"
)

func testChunk(id string) core.Chunk {
	return core.Chunk{ID: id, Source: "doc.pdf", Text: "text for " + id}
}

func TestSearchEmptyIndex(t *testing.T) {
	ix := New()

	results, err := ix.Search(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAddDimensionMismatch(t *testing.T) {
	ix := New()
	ctx := context.Background()

	require.NoError(t, ix.Add(ctx, testChunk("a"), []float32{1, 0, 0}))

	err := ix.Add(ctx, testChunk("b"), []float32{1, 0})
	require.ErrorIs(t, err, core.ErrDimensionMismatch)

	// The failed add must not mutate the index.
	assert.Equal(t, 1, ix.Len())
	assert.Equal(t, 3, ix.Dimension())
}

func TestAddEmptyVector(t *testing.T) {
	ix := New()
	err := ix.Add(context.Background(), testChunk("a"), nil)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestSearchRanking(t *testing.T) {
	ix := New()
	ctx := context.Background()

	require.NoError(t, ix.Add(ctx, testChunk("orthogonal"), []float32{0, 1, 0}))
	require.NoError(t, ix.Add(ctx, testChunk("aligned"), []float32{2, 0, 0}))
	require.NoError(t, ix.Add(ctx, testChunk("diagonal"), []float32{1, 1, 0}))

	results, err := ix.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Cosine similarity ignores magnitude: the aligned vector wins.
	assert.Equal(t, "aligned", results[0].Chunk.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, "diagonal", results[1].Chunk.ID)
}

func TestSearchStableTieOrder(t *testing.T) {
	ix := New()
	ctx := context.Background()

	// Identical vectors: ties must keep ingestion order.
	for _, id := range []string{"first", "second", "third"} {
		require.NoError(t, ix.Add(ctx, testChunk(id), []float32{1, 1}))
	}

	results, err := ix.Search(ctx, []float32{1, 1}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Chunk.ID)
	assert.Equal(t, "second", results[1].Chunk.ID)
	assert.Equal(t, "third", results[2].Chunk.ID)
}

func TestSearchKLargerThanIndex(t *testing.T) {
	ix := New()
	ctx := context.Background()
	require.NoError(t, ix.Add(ctx, testChunk("only"), []float32{1, 0}))

	results, err := ix.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestPersistLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db", "index.json")

	ix := New()
	ctx := context.Background()
	require.NoError(t, ix.Add(ctx, testChunk("a"), []float32{1, 0}))
	require.NoError(t, ix.Add(ctx, testChunk("b"), []float32{0, 1}))
	require.NoError(t, ix.Persist(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
	assert.Equal(t, 2, loaded.Dimension())

	results, err := loaded.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Chunk.ID)
}

func TestLoadMissingSnapshot(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, core.ErrIndexNotFound)
}

func TestLoadCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, core.ErrIndexNotFound)
}

func TestLoadVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":99,"dimension":2,"entries":[]}`), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, core.ErrIndexNotFound)
}
