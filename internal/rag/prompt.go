package rag

import (
	"fmt"
	"strings"

	"github.com/saathi-ai/saathi/internal/core"
)

// BuildPrompt composes the "stuff" prompt: every retrieved chunk is included
// verbatim ahead of the question. Oversized context is the generative
// service's problem to reject; no truncation happens here.
func BuildPrompt(question string, results []core.SearchResult) string {
	var b strings.Builder

	b.WriteString("You are a helpful assistant answering questions from the provided document excerpts. ")
	b.WriteString("Answer accurately based only on the context below. ")
	b.WriteString("If the answer is not in the context, say you do not have enough information.\n\n")

	b.WriteString("Context:\n")
	for i, r := range results {
		b.WriteString(fmt.Sprintf("Excerpt %d [source: %s]:\n", i+1, r.Chunk.Source))
		b.WriteString(r.Chunk.Text)
		b.WriteString("\n\n")
	}

	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer: ")

	return b.String()
}
