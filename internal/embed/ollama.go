// Package embed provides embedding generation for chunks and queries.
package embed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/saathi-ai/saathi/internal/core"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "nomic-embed-text"

// OllamaEmbedder generates embeddings through an Ollama server. The same
// embedder instance (same model) must serve both ingestion and query time.
type OllamaEmbedder struct {
	client     *api.Client
	model      string
	maxRetries int
	timeout    time.Duration
}

// NewOllamaEmbedder creates an embedder for the given Ollama host and model.
func NewOllamaEmbedder(host, model string) (*OllamaEmbedder, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}

	return &OllamaEmbedder{
		client:     api.NewClient(u, http.DefaultClient),
		model:      model,
		maxRetries: 2,
		timeout:    30 * time.Second,
	}, nil
}

// EmbedQuery generates an embedding for the given text, retrying transient
// failures with a linear backoff.
func (e *OllamaEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		vector, err := e.embed(ctx, text)
		if err == nil {
			return vector, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("embedding failed after %d retries: %w", e.maxRetries, lastErr)
}

func (e *OllamaEmbedder) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.Embed(ctx, &api.EmbedRequest{
		Model: e.model,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("ollama returned no embeddings")
	}
	return resp.Embeddings[0], nil
}

var _ core.EmbedService = (*OllamaEmbedder)(nil)
