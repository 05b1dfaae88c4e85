// Package rag composes grounded answers by retrieving relevant chunks and
// conditioning a generative model on them.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/saathi-ai/saathi/internal/core"
	"github.com/saathi-ai/saathi/internal/logger"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 4

// FallbackAnswer is returned whenever retrieval or generation fails after
// validation. External failures never surface to the user as raw errors.
const FallbackAnswer = "Sorry, an error occurred while answering your question."

// Answerer answers free-text questions against the vector store.
type Answerer struct {
	embedder core.EmbedService
	store    core.VectorStore
	gen      core.GenService
	topK     int
}

// NewAnswerer wires an answerer. The embedder must be the same service the
// store was populated with; topK <= 0 selects DefaultTopK.
func NewAnswerer(embedder core.EmbedService, store core.VectorStore, gen core.GenService, topK int) *Answerer {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Answerer{
		embedder: embedder,
		store:    store,
		gen:      gen,
		topK:     topK,
	}
}

// Answer retrieves the top-k chunks for the question and generates a grounded
// answer. An empty question fails fast with core.ErrEmptyQuery before any
// external call. Any downstream failure degrades to FallbackAnswer instead of
// propagating; the retrieved sources are still attached when available.
func (a *Answerer) Answer(ctx context.Context, question string) (*core.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, core.ErrEmptyQuery
	}

	vector, err := a.embedder.EmbedQuery(ctx, question)
	if err != nil {
		logger.Error("Question embedding failed: %v", err)
		return &core.Answer{Text: FallbackAnswer}, nil
	}

	results, err := a.store.Search(ctx, vector, a.topK)
	if err != nil {
		logger.Error("Retrieval failed: %v", err)
		return &core.Answer{Text: FallbackAnswer}, nil
	}
	logger.Debug("Retrieved %d chunk(s) for question %q", len(results), question)

	sources := make([]core.Chunk, len(results))
	for i, r := range results {
		sources[i] = r.Chunk
	}

	prompt := BuildPrompt(question, results)
	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		logger.Error("Generation failed: %v", err)
		return &core.Answer{Text: FallbackAnswer, Sources: sources}, nil
	}

	return &core.Answer{Text: strings.TrimSpace(text), Sources: sources}, nil
}

// String identifies the answerer configuration in logs.
func (a *Answerer) String() string {
	return fmt.Sprintf("answerer(topK=%d)", a.topK)
}
