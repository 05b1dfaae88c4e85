// Package speech converts inbound audio into text plus a best-guess language
// tag.
package speech

import (
	"context"
	"strings"

	"github.com/saathi-ai/saathi/internal/core"
	"github.com/saathi-ai/saathi/internal/logger"
)

// DefaultLanguage is assumed when no transcript or language is available.
const DefaultLanguage = "en"

// HintLanguages biases recognition toward common Indian regional variants.
// The backend may still return languages outside this list.
var HintLanguages = []string{
	"en-IN", "hi-IN", "bn-IN", "te-IN", "mr-IN",
	"ta-IN", "gu-IN", "kn-IN", "ml-IN", "pa-IN",
}

// Transcriber adapts an optional speech backend. A nil backend means voice is
// not configured: Transcribe then returns no transcript immediately, without
// attempting a network call.
type Transcriber struct {
	svc   core.SpeechService
	hints []string
}

// NewTranscriber creates a transcriber. svc may be nil.
func NewTranscriber(svc core.SpeechService) *Transcriber {
	return &Transcriber{svc: svc, hints: HintLanguages}
}

// Available reports whether a speech backend is configured.
func (t *Transcriber) Available() bool { return t.svc != nil }

// Transcribe recognizes audio and returns the top alternative's transcript
// together with its base language ("hi-IN" becomes "hi"). An absent backend,
// a failed call or zero results all yield an empty transcript and the default
// language.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) (string, string) {
	if t.svc == nil {
		return "", DefaultLanguage
	}

	alts, err := t.svc.Recognize(ctx, audio, t.hints)
	if err != nil {
		logger.Warn("Transcription failed: %v", err)
		return "", DefaultLanguage
	}
	if len(alts) == 0 {
		logger.Info("Speech backend returned no results")
		return "", DefaultLanguage
	}

	top := alts[0]
	logger.Info("Transcription successful, detected language: %s", top.LanguageCode)
	return top.Transcript, BaseLanguage(top.LanguageCode)
}

// BaseLanguage strips the region from a qualified tag: "hi-IN" -> "hi".
func BaseLanguage(code string) string {
	if code == "" {
		return DefaultLanguage
	}
	base, _, _ := strings.Cut(code, "-")
	return strings.ToLower(base)
}
