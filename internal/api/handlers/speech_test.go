package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voiceforge/backend/internal/api/handlers"
	"github.com/voiceforge/backend/internal/openvoice"
	"github.com/voiceforge/backend/internal/voicestore"
)

func speechRequest(body string) *http.Request {
	req := httptest.NewRequest("POST", "/generate-speech", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func storeWithEmbedding(t *testing.T, voiceID string) *voicestore.Store {
	t.Helper()
	store := newStore(t)
	tmp := store.TempPath("embedding.pt")
	require.NoError(t, os.WriteFile(tmp, []byte("fake-embedding"), 0o644))
	_, err := store.PromoteEmbedding(tmp, voiceID)
	require.NoError(t, err)
	return store
}

func TestGenerateSpeechCustomVoiceTakesConversionPath(t *testing.T) {
	store := storeWithEmbedding(t, "alice")
	synth := &fakeSynth{}
	conv := &fakeConverter{}
	h := handlers.NewVoiceHandler(&openvoice.Models{Synth: synth, Converter: conv}, store, 64<<20)

	rec := httptest.NewRecorder()
	h.GenerateSpeech(rec, speechRequest(`{"voice_id":"alice","text":"hello world"}`))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())

	// Base synthesis with the fixed default speaker, then conversion.
	require.Len(t, synth.calls, 1)
	assert.Equal(t, "default", synth.calls[0].Speaker)
	assert.Equal(t, "English", synth.calls[0].Language)
	assert.Equal(t, 1.0, synth.calls[0].Speed)

	require.Len(t, conv.converts, 1)
	assert.Equal(t, store.EmbeddingPath("alice"), conv.converts[0].TargetSE)
	assert.Equal(t, "@MyShell", conv.converts[0].Message)

	// Only the persisted embedding survives the request.
	assert.Equal(t, []string{"alice_embedding.pt"}, dirNames(t, store.Dir()))
}

func TestGenerateSpeechBuiltinVoiceSkipsConversion(t *testing.T) {
	store := newStore(t)
	synth := &fakeSynth{}
	conv := &fakeConverter{}
	h := handlers.NewVoiceHandler(&openvoice.Models{Synth: synth, Converter: conv}, store, 64<<20)

	rec := httptest.NewRecorder()
	h.GenerateSpeech(rec, speechRequest(`{"voice_id":"friendly","text":"hello"}`))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))

	require.Len(t, synth.calls, 1)
	assert.Equal(t, "friendly", synth.calls[0].Speaker)
	assert.Empty(t, conv.converts, "built-in voices must not go through conversion")

	assert.Empty(t, dirNames(t, store.Dir()), "no waveform may remain after the response")
}

func TestGenerateSpeechCleansUpOnFailure(t *testing.T) {
	store := storeWithEmbedding(t, "alice")
	synth := &fakeSynth{}
	conv := &fakeConverter{failConvert: true}
	h := handlers.NewVoiceHandler(&openvoice.Models{Synth: synth, Converter: conv}, store, 64<<20)

	rec := httptest.NewRecorder()
	h.GenerateSpeech(rec, speechRequest(`{"voice_id":"alice","text":"hello"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "convert to target voice")

	// The intermediate base waveform was written and must be gone.
	assert.Equal(t, []string{"alice_embedding.pt"}, dirNames(t, store.Dir()))
}

func TestGenerateSpeechSynthesisFailure(t *testing.T) {
	store := newStore(t)
	h := handlers.NewVoiceHandler(&openvoice.Models{
		Synth:     &fakeSynth{fail: true},
		Converter: &fakeConverter{},
	}, store, 64<<20)

	rec := httptest.NewRecorder()
	h.GenerateSpeech(rec, speechRequest(`{"voice_id":"friendly","text":"hello"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, dirNames(t, store.Dir()))
}

func TestGenerateSpeechUnavailableModels(t *testing.T) {
	h := handlers.NewVoiceHandler(&openvoice.Models{}, newStore(t), 64<<20)

	rec := httptest.NewRecorder()
	h.GenerateSpeech(rec, speechRequest(`{"voice_id":"alice","text":"hello"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "not initialized")
}

func TestGenerateSpeechValidation(t *testing.T) {
	h := handlers.NewVoiceHandler(&openvoice.Models{
		Synth:     &fakeSynth{},
		Converter: &fakeConverter{},
	}, newStore(t), 64<<20)

	rec := httptest.NewRecorder()
	h.GenerateSpeech(rec, speechRequest(`{"voice_id":"alice"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.GenerateSpeech(rec, speechRequest(`not-json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// End-to-end: clone a voice, then generate speech with it.
func TestCloneThenGenerateSpeech(t *testing.T) {
	store := newStore(t)
	h := handlers.NewVoiceHandler(&openvoice.Models{
		Synth:     &fakeSynth{},
		Converter: &fakeConverter{},
	}, store, 64<<20)

	rec := httptest.NewRecorder()
	h.CloneVoice(rec, multipartUpload(t, "ref.wav", "narrator", []byte("reference-audio")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	h.GenerateSpeech(rec, speechRequest(`{"voice_id":"narrator","text":"once upon a time"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
	assert.Greater(t, rec.Body.Len(), 0)
}
