package core

import "context"

// EmbedService turns text into a fixed-dimension vector. The same service must
// be used at ingestion and at query time; retrieval quality silently degrades
// if the two ever diverge.
type EmbedService interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// GenService generates text from a prompt.
type GenService interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// VectorStore stores (chunk, vector) pairs and retrieves the nearest chunks
// for a query vector. Append-only; no update or delete semantics.
type VectorStore interface {
	// Add appends a chunk with its embedding. The first vector establishes
	// the store's dimension; later vectors of a different dimension fail
	// with ErrDimensionMismatch and leave the store untouched.
	Add(ctx context.Context, chunk Chunk, vector []float32) error

	// Search returns the k nearest chunks by similarity, best first.
	// An empty store returns an empty result, not an error.
	Search(ctx context.Context, vector []float32, k int) ([]SearchResult, error)
}

// TranslateService is the external translation backend.
type TranslateService interface {
	DetectLanguage(ctx context.Context, text string) (string, error)
	Translate(ctx context.Context, text, target string) (string, error)
}

// SpeechService is the external speech-to-text backend. The hint list biases
// recognition toward expected language variants without restricting the
// result to them.
type SpeechService interface {
	Recognize(ctx context.Context, audio []byte, hints []string) ([]Alternative, error)
}

// DialogueEngine is the conversational engine the gateway forwards canonical
// (English) text to.
type DialogueEngine interface {
	Send(ctx context.Context, sender, message string) ([]Reply, error)
}
