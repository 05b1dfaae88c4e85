package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saathi-ai/saathi/internal/chunk"
	"github.com/saathi-ai/saathi/internal/core"
	"github.com/saathi-ai/saathi/internal/index"
)

// fakeLoader serves canned documents; paths mapped to nil simulate corrupt
// files.
type fakeLoader struct {
	docs map[string]*core.Document
}

func (f *fakeLoader) List(dir string) ([]string, error) {
	var paths []string
	for p := range f.docs {
		paths = append(paths, p)
	}
	// Deterministic order for assertions.
	for i := 0; i < len(paths); i++ {
		for j := i + 1; j < len(paths); j++ {
			if paths[j] < paths[i] {
				paths[i], paths[j] = paths[j], paths[i]
			}
		}
	}
	return paths, nil
}

func (f *fakeLoader) Load(path string) (core.Document, error) {
	doc := f.docs[path]
	if doc == nil {
		return core.Document{}, fmt.Errorf("malformed document %s", path)
	}
	return *doc, nil
}

// fakeEmbedder returns a constant-dimension vector and can fail on selected
// texts.
type fakeEmbedder struct {
	calls  int
	dim    int
	failOn map[string]bool
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.failOn[text] {
		return nil, errors.New("embedding service unavailable")
	}
	vec := make([]float32, f.dim)
	for i := range vec {
		vec[i] = float32(len(text) % 7)
	}
	vec[0] = 1
	return vec, nil
}

func newSplitter(t *testing.T) *chunk.Splitter {
	t.Helper()
	s, err := chunk.NewSplitter(50, 10)
	require.NoError(t, err)
	return s
}

func TestRunSkipsCorruptDocument(t *testing.T) {
	loader := &fakeLoader{docs: map[string]*core.Document{
		"docs/good.pdf": {Source: "good.pdf", Text: "a perfectly readable document"},
		"docs/bad.pdf":  nil,
	}}
	store := index.New()
	p := NewPipeline(loader, newSplitter(t), &fakeEmbedder{dim: 4}, store)

	stats, err := p.Run(context.Background(), "docs")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Documents)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Chunks)
	assert.Equal(t, 1, store.Len())
}

func TestRunNoDocuments(t *testing.T) {
	loader := &fakeLoader{docs: map[string]*core.Document{
		"docs/one.pdf": nil,
		"docs/two.pdf": nil,
	}}
	store := index.New()
	embedder := &fakeEmbedder{dim: 4}
	p := NewPipeline(loader, newSplitter(t), embedder, store)

	_, err := p.Run(context.Background(), "docs")
	require.ErrorIs(t, err, core.ErrNoDocumentsIngested)

	// Nothing embedded, nothing stored.
	assert.Zero(t, embedder.calls)
	assert.Zero(t, store.Len())
}

func TestRunKeepsEarlierChunksOnEmbedFailure(t *testing.T) {
	// 120 chars with size 50 / overlap 10 gives 3 chunks; fail the middle
	// one and expect the other two to land in the store. Blocks are distinct
	// so chunk texts never collide.
	text := ""
	for i := 0; i < 12; i++ {
		text += fmt.Sprintf("%-10d", i)
	}
	doc := core.Document{Source: "doc.pdf", Text: text}

	splitter := newSplitter(t)
	chunks := splitter.Split(doc)
	require.Len(t, chunks, 3)

	loader := &fakeLoader{docs: map[string]*core.Document{"docs/doc.pdf": &doc}}
	embedder := &fakeEmbedder{dim: 4, failOn: map[string]bool{chunks[1].Text: true}}
	store := index.New()
	p := NewPipeline(loader, splitter, embedder, store)

	stats, err := p.Run(context.Background(), "docs")
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Chunks)
	assert.Equal(t, 1, stats.EmbedSkipped)
	assert.Equal(t, 2, store.Len())
}

func TestRunAbortsOnDimensionMismatch(t *testing.T) {
	doc := core.Document{Source: "doc.pdf", Text: "short document"}
	loader := &fakeLoader{docs: map[string]*core.Document{"docs/doc.pdf": &doc}}

	store := index.New()
	// Pre-establish a different dimension than the embedder produces.
	require.NoError(t, store.Add(context.Background(), core.Chunk{ID: "seed"}, []float32{1, 2}))

	p := NewPipeline(loader, newSplitter(t), &fakeEmbedder{dim: 4}, store)
	_, err := p.Run(context.Background(), "docs")
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}
