package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voiceforge/backend/internal/api/handlers"
	"github.com/voiceforge/backend/internal/openvoice"
)

func TestCloneVoiceRejectsUnsupportedExtensions(t *testing.T) {
	store := newStore(t)
	h := handlers.NewVoiceHandler(&openvoice.Models{
		Synth:     &fakeSynth{},
		Converter: &fakeConverter{},
	}, store, 64<<20)

	for _, filename := range []string{"clip.flac", "clip.m4a", "clip.txt", "clip"} {
		rec := httptest.NewRecorder()
		h.CloneVoice(rec, multipartUpload(t, filename, "alice", []byte("data")))

		assert.Equal(t, http.StatusBadRequest, rec.Code, "extension %s", filename)
		assert.Empty(t, dirNames(t, store.Dir()), "rejected upload %s must not write any file", filename)
	}
}

func TestCloneVoiceAcceptsSupportedExtensions(t *testing.T) {
	for _, filename := range []string{"clip.wav", "clip.WAV"} {
		store := newStore(t)
		conv := &fakeConverter{}
		h := handlers.NewVoiceHandler(&openvoice.Models{
			Synth:     &fakeSynth{},
			Converter: conv,
		}, store, 64<<20)

		rec := httptest.NewRecorder()
		h.CloneVoice(rec, multipartUpload(t, filename, "alice", []byte("data")))

		require.Equal(t, http.StatusOK, rec.Code, "extension %s: %s", filename, rec.Body.String())
		require.Len(t, conv.extracts, 1)
		assert.True(t, conv.extracts[0].VAD, "embedding extraction must enable VAD")
	}
}

func TestCloneVoiceSuccessPersistsEmbedding(t *testing.T) {
	store := newStore(t)
	h := handlers.NewVoiceHandler(&openvoice.Models{
		Synth:     &fakeSynth{},
		Converter: &fakeConverter{},
	}, store, 64<<20)

	rec := httptest.NewRecorder()
	h.CloneVoice(rec, multipartUpload(t, "ref.wav", "alice", []byte("reference-audio")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, "alice", resp["voiceId"])
	assert.Equal(t, store.EmbeddingPath("alice"), resp["embeddingPath"])

	_, err := os.Stat(store.EmbeddingPath("alice"))
	assert.NoError(t, err, "embedding must exist on disk")

	// The reference upload is retained after extraction.
	_, err = os.Stat(store.UploadPath("alice", "ref.wav"))
	assert.NoError(t, err)
}

func TestCloneVoiceGeneratesNameWhenMissing(t *testing.T) {
	store := newStore(t)
	h := handlers.NewVoiceHandler(&openvoice.Models{
		Synth:     &fakeSynth{},
		Converter: &fakeConverter{},
	}, store, 64<<20)

	rec := httptest.NewRecorder()
	h.CloneVoice(rec, multipartUpload(t, "ref.wav", "", []byte("reference-audio")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Regexp(t, `^voice_[0-9a-f]{8}$`, resp["voiceId"])
}

func TestCloneVoiceUnavailableWithoutConverter(t *testing.T) {
	store := newStore(t)
	h := handlers.NewVoiceHandler(&openvoice.Models{Synth: &fakeSynth{}}, store, 64<<20)

	rec := httptest.NewRecorder()
	h.CloneVoice(rec, multipartUpload(t, "ref.wav", "alice", []byte("data")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "not initialized")
	assert.Empty(t, dirNames(t, store.Dir()))
}

func TestCloneVoiceExtractionFailure(t *testing.T) {
	store := newStore(t)
	h := handlers.NewVoiceHandler(&openvoice.Models{
		Synth:     &fakeSynth{},
		Converter: &fakeConverter{failExtract: true},
	}, store, 64<<20)

	rec := httptest.NewRecorder()
	h.CloneVoice(rec, multipartUpload(t, "ref.wav", "alice", []byte("data")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "extracting speaker embedding")

	// No rollback: the upload stays even though extraction failed.
	_, err := os.Stat(store.UploadPath("alice", "ref.wav"))
	assert.NoError(t, err)
	assert.False(t, store.HasEmbedding("alice"))
}
