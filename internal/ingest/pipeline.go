// Package ingest drives the one-shot batch job that turns a directory of
// documents into a populated vector store.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/saathi-ai/saathi/internal/chunk"
	"github.com/saathi-ai/saathi/internal/core"
	"github.com/saathi-ai/saathi/internal/logger"
)

// DocumentLoader lists and loads source documents. The concrete loader reads
// PDFs; tests substitute fakes.
type DocumentLoader interface {
	List(dir string) ([]string, error)
	Load(path string) (core.Document, error)
}

// Stats summarizes one ingestion run.
type Stats struct {
	Documents    int // documents loaded successfully
	Skipped      int // documents that failed to load
	Chunks       int // chunks embedded and added to the store
	EmbedSkipped int // chunks dropped because embedding failed
}

// Pipeline orchestrates loading, chunking, embedding and index population.
type Pipeline struct {
	loader   DocumentLoader
	splitter *chunk.Splitter
	embedder core.EmbedService
	store    core.VectorStore
}

// NewPipeline wires an ingestion pipeline from its collaborators.
func NewPipeline(loader DocumentLoader, splitter *chunk.Splitter, embedder core.EmbedService, store core.VectorStore) *Pipeline {
	return &Pipeline{
		loader:   loader,
		splitter: splitter,
		embedder: embedder,
		store:    store,
	}
}

// Run ingests every document under dir. A document that fails to load is
// skipped with a warning rather than aborting the batch; if no document loads
// at all, Run fails with core.ErrNoDocumentsIngested before touching the
// store. Chunks are embedded and added incrementally, so an embedding failure
// partway through never discards work already in the store; the failed chunk
// is logged and skipped. A dimension mismatch is structural and aborts the
// run.
func (p *Pipeline) Run(ctx context.Context, dir string) (Stats, error) {
	var stats Stats

	paths, err := p.loader.List(dir)
	if err != nil {
		return stats, err
	}
	logger.Info("Ingesting %d document(s) from %s", len(paths), dir)

	var docs []core.Document
	for _, path := range paths {
		doc, err := p.loader.Load(path)
		if err != nil {
			logger.Warn("Skipping document %s: %v", path, err)
			stats.Skipped++
			continue
		}
		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return stats, fmt.Errorf("%w: directory %s", core.ErrNoDocumentsIngested, dir)
	}
	stats.Documents = len(docs)

	for _, doc := range docs {
		chunks := p.splitter.Split(doc)
		logger.Info("Document %s: %d chunk(s)", doc.Source, len(chunks))

		for _, c := range chunks {
			vector, err := p.embedder.EmbedQuery(ctx, c.Text)
			if err != nil {
				logger.Warn("Embedding failed for chunk %s: %v", c.ID, err)
				stats.EmbedSkipped++
				continue
			}

			if err := p.store.Add(ctx, c, vector); err != nil {
				if errors.Is(err, core.ErrDimensionMismatch) {
					logger.Error("Index rejected chunk %s from %s: %v", c.ID, doc.Source, err)
					return stats, err
				}
				logger.Warn("Store rejected chunk %s: %v", c.ID, err)
				stats.EmbedSkipped++
				continue
			}
			stats.Chunks++
		}
	}

	logger.Info("Ingestion complete: %d document(s), %d chunk(s), %d document(s) skipped, %d chunk(s) dropped",
		stats.Documents, stats.Chunks, stats.Skipped, stats.EmbedSkipped)
	return stats, nil
}
