// Package llm provides the generative model client used to compose grounded
// answers.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/saathi-ai/saathi/internal/core"
)

// DefaultModel is the generation model used when none is configured.
const DefaultModel = "llama3"

// OllamaGenerator generates answer text through an Ollama server.
type OllamaGenerator struct {
	client *api.Client
	model  string
}

// NewOllamaGenerator creates a generator for the given Ollama host and model.
func NewOllamaGenerator(host, model string) (*OllamaGenerator, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}

	return &OllamaGenerator{
		client: api.NewClient(u, http.DefaultClient),
		model:  model,
	}, nil
}

// Generate produces a completion for the prompt. The streamed response is
// accumulated and returned whole.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := api.GenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		Options: map[string]interface{}{
			"temperature": 0.7,
		},
	}

	var out strings.Builder
	err := g.client.Generate(ctx, &req, func(resp api.GenerateResponse) error {
		_, err := out.WriteString(resp.Response)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	return out.String(), nil
}

var _ core.GenService = (*OllamaGenerator)(nil)
