// Package gateway accepts user messages in any supported language or as
// voice recordings, runs them through the dialogue engine in English and
// returns replies in the user's language.
package gateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/saathi-ai/saathi/internal/core"
	"github.com/saathi-ai/saathi/internal/engine"
	"github.com/saathi-ai/saathi/internal/lang"
	"github.com/saathi-ai/saathi/internal/logger"
	"github.com/saathi-ai/saathi/internal/speech"
)

// User-facing fallback strings. These are produced in English and, where
// noted, translated back to the user's language before delivery.
const (
	MsgMissingMessage    = "missing message"
	MsgUnintelligible    = "Sorry, I could not understand the audio. Please try again."
	MsgEngineUnreachable = "Could not connect to the chatbot engine."
	MsgNoResponse        = "I'm sorry, I didn't get a response. Please try again."
)

// Rejection is a request-level failure carrying the HTTP status to report.
type Rejection struct {
	Status  int
	Message string
}

func (r *Rejection) Error() string { return r.Message }

// Request is a single inbound message. Audio, when present, takes precedence
// over Message.
type Request struct {
	Sender  string
	Message string
	Audio   []byte
}

// Result is the reply delivered to the user together with the language it
// was rendered in.
type Result struct {
	Response string
	Language string
}

// Dispatcher orchestrates transcription, language normalization and the
// dialogue engine for each request.
type Dispatcher struct {
	normalizer  *lang.Normalizer
	transcriber *speech.Transcriber
	engine      core.DialogueEngine
}

// NewDispatcher wires the three stages together. The normalizer and
// transcriber tolerate missing backends themselves; engine must be non-nil.
func NewDispatcher(n *lang.Normalizer, t *speech.Transcriber, engine core.DialogueEngine) *Dispatcher {
	return &Dispatcher{normalizer: n, transcriber: t, engine: engine}
}

// Handle runs one request through the pipeline. A returned *Rejection means
// the request never reached a usable reply; any other error is internal.
func (d *Dispatcher) Handle(ctx context.Context, req Request) (Result, error) {
	reqID := uuid.New().String()

	message := req.Message
	voiceLang := ""
	if len(req.Audio) > 0 {
		transcript, detected := d.transcriber.Transcribe(ctx, req.Audio)
		if strings.TrimSpace(transcript) == "" {
			logger.Warn("[%s] Audio could not be transcribed", reqID)
			return Result{}, &Rejection{Status: http.StatusBadRequest, Message: MsgUnintelligible}
		}
		message = transcript
		voiceLang = detected
		logger.Info("[%s] Transcript (%s): %s", reqID, detected, transcript)
	}

	if strings.TrimSpace(message) == "" {
		return Result{}, &Rejection{Status: http.StatusBadRequest, Message: MsgMissingMessage}
	}

	// The recognizer's language tag is authoritative for voice; detection
	// runs only on typed text.
	replyLang := voiceLang
	if replyLang == "" {
		replyLang, _ = d.normalizer.Detect(ctx, message)
	}

	normalized, degraded := d.normalizer.ToCanonical(ctx, message, replyLang)
	if degraded {
		logger.Warn("[%s] Message passed to engine untranslated", reqID)
	}

	replies, err := d.engine.Send(ctx, req.Sender, normalized)
	if err != nil {
		logger.Error("[%s] Engine call failed: %v", reqID, err)
		return Result{}, &Rejection{Status: http.StatusInternalServerError, Message: MsgEngineUnreachable}
	}

	if len(replies) == 0 {
		logger.Warn("[%s] Engine returned no replies", reqID)
		return Result{Response: MsgNoResponse, Language: lang.Canonical}, nil
	}

	text := replies[0].Text
	if strings.TrimSpace(text) == "" {
		text = engine.FallbackReply
	}

	localized, degraded := d.normalizer.FromCanonical(ctx, text, replyLang)
	if degraded {
		logger.Warn("[%s] Reply delivered untranslated", reqID)
		return Result{Response: text, Language: lang.Canonical}, nil
	}
	return Result{Response: localized, Language: replyLang}, nil
}
