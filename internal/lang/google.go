package lang

import (
	"context"
	"fmt"

	"cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/saathi-ai/saathi/internal/core"
)

// GoogleTranslator implements core.TranslateService against the Google Cloud
// Translation API. Authentication uses application default credentials, or an
// explicit credentials file when one is supplied.
type GoogleTranslator struct {
	client *translate.Client
}

// NewGoogleTranslator creates a translation client. credentialsFile may be
// empty to use ambient credentials.
func NewGoogleTranslator(ctx context.Context, credentialsFile string) (*GoogleTranslator, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create translate client: %w", err)
	}
	return &GoogleTranslator{client: client}, nil
}

// DetectLanguage returns the most confident language code for text.
func (g *GoogleTranslator) DetectLanguage(ctx context.Context, text string) (string, error) {
	detections, err := g.client.DetectLanguage(ctx, []string{text})
	if err != nil {
		return "", fmt.Errorf("detect language: %w", err)
	}
	if len(detections) == 0 || len(detections[0]) == 0 {
		return "", fmt.Errorf("detect language: no result")
	}
	return detections[0][0].Language.String(), nil
}

// Translate translates text into the target language code.
func (g *GoogleTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	tag, err := language.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse target language %q: %w", target, err)
	}

	translations, err := g.client.Translate(ctx, []string{text}, tag, nil)
	if err != nil {
		return "", fmt.Errorf("translate to %q: %w", target, err)
	}
	if len(translations) == 0 {
		return "", fmt.Errorf("translate to %q: no result", target)
	}
	return translations[0].Text, nil
}

// Close releases the underlying client.
func (g *GoogleTranslator) Close() error {
	return g.client.Close()
}

var _ core.TranslateService = (*GoogleTranslator)(nil)
