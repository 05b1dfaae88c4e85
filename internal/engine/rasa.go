// Package engine talks to the conversational backend that produces replies
// for normalized user messages.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/saathi-ai/saathi/internal/core"
	"github.com/saathi-ai/saathi/internal/logger"
)

// FallbackReply is used when the backend answers but the first reply carries
// no text.
const FallbackReply = "Sorry, I don't have an answer for that."

const defaultTimeout = 30 * time.Second

// RasaEngine sends messages to a Rasa REST webhook and decodes the replies.
type RasaEngine struct {
	url        string
	httpClient *http.Client
}

// NewRasaEngine creates a client for the given webhook URL, for example
// http://localhost:5005/webhooks/rest/webhook.
func NewRasaEngine(url string) *RasaEngine {
	return &RasaEngine{
		url: url,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

type rasaRequest struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// Send posts a message on behalf of sender and returns the engine's replies
// in order. An empty reply list is not an error; callers decide how to
// present it.
func (r *RasaEngine) Send(ctx context.Context, sender, message string) ([]core.Reply, error) {
	payload, err := json.Marshal(rasaRequest{Sender: sender, Message: message})
	if err != nil {
		return nil, fmt.Errorf("marshal engine request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create engine request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send to engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		logger.Error("Engine returned status %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("engine returned status %d", resp.StatusCode)
	}

	var replies []core.Reply
	if err := json.NewDecoder(resp.Body).Decode(&replies); err != nil {
		return nil, fmt.Errorf("decode engine response: %w", err)
	}
	return replies, nil
}

var _ core.DialogueEngine = (*RasaEngine)(nil)
