// Package lang normalizes inbound text to the canonical working language and
// translates responses back.
package lang

import (
	"context"

	"github.com/saathi-ai/saathi/internal/core"
	"github.com/saathi-ai/saathi/internal/logger"
)

// Canonical is the single working language the dialogue engine understands.
const Canonical = "en"

// Normalizer wraps an optional translation service. A nil service is a valid
// configuration: every operation then runs in degraded mode, assuming the
// canonical language and passing text through unchanged. Degraded results are
// flagged, not errored, so callers can tell "translation unavailable" apart
// from a hard failure.
type Normalizer struct {
	svc core.TranslateService
}

// NewNormalizer creates a normalizer. svc may be nil when no translation
// backend is configured.
func NewNormalizer(svc core.TranslateService) *Normalizer {
	return &Normalizer{svc: svc}
}

// Available reports whether a translation backend is configured.
func (n *Normalizer) Available() bool { return n.svc != nil }

// Detect returns the language code of text. When the backend is absent or
// unreachable it falls back to the canonical language and reports degraded.
func (n *Normalizer) Detect(ctx context.Context, text string) (string, bool) {
	if n.svc == nil {
		return Canonical, true
	}

	code, err := n.svc.DetectLanguage(ctx, text)
	if err != nil {
		logger.Warn("Language detection failed, assuming %q: %v", Canonical, err)
		return Canonical, true
	}
	return code, false
}

// ToCanonical translates text into the canonical language. It is the identity
// transform when source is already canonical; on backend absence or failure
// the input is returned unchanged (best-effort, degraded).
func (n *Normalizer) ToCanonical(ctx context.Context, text, source string) (string, bool) {
	if source == Canonical {
		return text, false
	}
	if n.svc == nil {
		return text, true
	}

	out, err := n.svc.Translate(ctx, text, Canonical)
	if err != nil {
		logger.Warn("Translation to %q failed, passing text through: %v", Canonical, err)
		return text, true
	}
	return out, false
}

// FromCanonical translates canonical text into the target language, with the
// same identity and degraded behavior as ToCanonical.
func (n *Normalizer) FromCanonical(ctx context.Context, text, target string) (string, bool) {
	if target == Canonical {
		return text, false
	}
	if n.svc == nil {
		return text, true
	}

	out, err := n.svc.Translate(ctx, text, target)
	if err != nil {
		logger.Warn("Translation to %q failed, passing text through: %v", target, err)
		return text, true
	}
	return out, false
}
