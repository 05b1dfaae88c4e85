package gateway

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saathi-ai/saathi/internal/core"
	"github.com/saathi-ai/saathi/internal/engine"
	"github.com/saathi-ai/saathi/internal/lang"
	"github.com/saathi-ai/saathi/internal/speech"
)

// fakeTranslator detects a fixed language and tags translations with the
// target code so tests can see which direction ran.
type fakeTranslator struct {
	detected    string
	detectCalls int
	transCalls  int
}

func (f *fakeTranslator) DetectLanguage(ctx context.Context, text string) (string, error) {
	f.detectCalls++
	return f.detected, nil
}

func (f *fakeTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	f.transCalls++
	return "[" + target + "]" + text, nil
}

type fakeEngine struct {
	replies []core.Reply
	err     error
	calls   int
	gotMsg  string
	gotSndr string
}

func (f *fakeEngine) Send(ctx context.Context, sender, message string) ([]core.Reply, error) {
	f.calls++
	f.gotSndr = sender
	f.gotMsg = message
	return f.replies, f.err
}

type fakeSpeech struct {
	alts []core.Alternative
}

func (f *fakeSpeech) Recognize(ctx context.Context, audio []byte, hints []string) ([]core.Alternative, error) {
	return f.alts, nil
}

func newDispatcher(tr *fakeTranslator, sp core.SpeechService, eng core.DialogueEngine) *Dispatcher {
	return NewDispatcher(lang.NewNormalizer(tr), speech.NewTranscriber(sp), eng)
}

func TestHandleEnglishPassthrough(t *testing.T) {
	tr := &fakeTranslator{detected: "en"}
	eng := &fakeEngine{replies: []core.Reply{{Text: "hello there"}}}
	d := newDispatcher(tr, nil, eng)

	res, err := d.Handle(context.Background(), Request{Sender: "u1", Message: "hello"})
	require.NoError(t, err)

	assert.Equal(t, "hello", eng.gotMsg, "english input must reach the engine untouched")
	assert.Equal(t, "u1", eng.gotSndr)
	assert.Equal(t, "hello there", res.Response)
	assert.Equal(t, "en", res.Language)
	assert.Zero(t, tr.transCalls)
}

func TestHandleRoundTrip(t *testing.T) {
	tr := &fakeTranslator{detected: "hi"}
	eng := &fakeEngine{replies: []core.Reply{{Text: "the answer"}}}
	d := newDispatcher(tr, nil, eng)

	res, err := d.Handle(context.Background(), Request{Sender: "u1", Message: "नमस्ते"})
	require.NoError(t, err)

	assert.Equal(t, "[en]नमस्ते", eng.gotMsg, "engine must see the canonical form")
	assert.Equal(t, "[hi]the answer", res.Response)
	assert.Equal(t, "hi", res.Language)
}

func TestHandleVoiceLanguageAuthoritative(t *testing.T) {
	// The recognizer's tag drives both translation directions; text
	// detection never runs for voice, even if it would disagree.
	tr := &fakeTranslator{detected: "en"}
	sp := &fakeSpeech{alts: []core.Alternative{{Transcript: "शुल्क क्या है", LanguageCode: "hi-IN"}}}
	eng := &fakeEngine{replies: []core.Reply{{Text: "the fee is ten"}}}
	d := newDispatcher(tr, sp, eng)

	res, err := d.Handle(context.Background(), Request{Sender: "u1", Audio: []byte{0x01}})
	require.NoError(t, err)

	assert.Zero(t, tr.detectCalls, "voice requests must not re-detect the language")
	assert.Equal(t, "[en]शुल्क क्या है", eng.gotMsg)
	assert.Equal(t, "[hi]the fee is ten", res.Response)
	assert.Equal(t, "hi", res.Language)
}

func TestHandleUnintelligibleAudio(t *testing.T) {
	sp := &fakeSpeech{}
	eng := &fakeEngine{}
	d := newDispatcher(&fakeTranslator{detected: "en"}, sp, eng)

	_, err := d.Handle(context.Background(), Request{Sender: "u1", Audio: []byte{0x01}})
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, http.StatusBadRequest, rej.Status)
	assert.Equal(t, MsgUnintelligible, rej.Message)
	assert.Zero(t, eng.calls, "engine must not be called without a transcript")
}

func TestHandleMissingMessage(t *testing.T) {
	eng := &fakeEngine{}
	d := newDispatcher(&fakeTranslator{detected: "en"}, nil, eng)

	_, err := d.Handle(context.Background(), Request{Sender: "u1", Message: "   "})
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, http.StatusBadRequest, rej.Status)
	assert.Equal(t, MsgMissingMessage, rej.Message)
	assert.Zero(t, eng.calls)
}

func TestHandleEngineUnreachable(t *testing.T) {
	eng := &fakeEngine{err: errors.New("connection refused")}
	d := newDispatcher(&fakeTranslator{detected: "en"}, nil, eng)

	_, err := d.Handle(context.Background(), Request{Sender: "u1", Message: "hello"})
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, http.StatusInternalServerError, rej.Status)
	assert.Equal(t, MsgEngineUnreachable, rej.Message)
}

func TestHandleEmptyReplyList(t *testing.T) {
	tr := &fakeTranslator{detected: "hi"}
	eng := &fakeEngine{replies: []core.Reply{}}
	d := newDispatcher(tr, nil, eng)

	res, err := d.Handle(context.Background(), Request{Sender: "u1", Message: "नमस्ते"})
	require.NoError(t, err)

	assert.Equal(t, MsgNoResponse, res.Response, "the no-response notice stays in english")
	assert.Equal(t, lang.Canonical, res.Language)
}

func TestHandleBlankReplyText(t *testing.T) {
	tr := &fakeTranslator{detected: "hi"}
	eng := &fakeEngine{replies: []core.Reply{{Text: "  "}}}
	d := newDispatcher(tr, nil, eng)

	res, err := d.Handle(context.Background(), Request{Sender: "u1", Message: "नमस्ते"})
	require.NoError(t, err)
	assert.Equal(t, "[hi]"+engine.FallbackReply, res.Response)
}

func TestHandleDegradedWithoutTranslator(t *testing.T) {
	eng := &fakeEngine{replies: []core.Reply{{Text: "reply"}}}
	d := NewDispatcher(lang.NewNormalizer(nil), speech.NewTranscriber(nil), eng)

	res, err := d.Handle(context.Background(), Request{Sender: "u1", Message: "hola"})
	require.NoError(t, err)

	assert.Equal(t, "hola", eng.gotMsg, "without translation the message passes through")
	assert.Equal(t, "reply", res.Response)
	assert.Equal(t, lang.Canonical, res.Language)
}
