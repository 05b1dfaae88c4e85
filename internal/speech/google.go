package speech

import (
	"context"
	"fmt"

	speechapi "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"

	"github.com/saathi-ai/saathi/internal/core"
)

// Browser capture defaults: WebM/Opus at 48 kHz is what MediaRecorder emits.
const (
	recognitionEncoding   = speechpb.RecognitionConfig_WEBM_OPUS
	recognitionSampleRate = 48000
	baseLanguageCode      = "en-US"
)

// GoogleSpeech implements core.SpeechService against the Google Cloud
// Speech-to-Text API.
type GoogleSpeech struct {
	client *speechapi.Client
}

// NewGoogleSpeech creates a speech client. credentialsFile may be empty to
// use ambient credentials.
func NewGoogleSpeech(ctx context.Context, credentialsFile string) (*GoogleSpeech, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := speechapi.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	return &GoogleSpeech{client: client}, nil
}

// Recognize sends audio for synchronous recognition. The hint list is passed
// as alternative language codes, biasing but not restricting detection.
func (g *GoogleSpeech) Recognize(ctx context.Context, audio []byte, hints []string) ([]core.Alternative, error) {
	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   recognitionEncoding,
			SampleRateHertz:            recognitionSampleRate,
			EnableAutomaticPunctuation: true,
			LanguageCode:               baseLanguageCode,
			AlternativeLanguageCodes:   hints,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("recognize audio: %w", err)
	}

	var alts []core.Alternative
	for _, result := range resp.GetResults() {
		for _, alt := range result.GetAlternatives() {
			alts = append(alts, core.Alternative{
				Transcript:   alt.GetTranscript(),
				LanguageCode: result.GetLanguageCode(),
			})
		}
	}
	return alts, nil
}

// Close releases the underlying client.
func (g *GoogleSpeech) Close() error {
	return g.client.Close()
}

var _ core.SpeechService = (*GoogleSpeech)(nil)
