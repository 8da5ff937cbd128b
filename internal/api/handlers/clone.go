package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/voiceforge/backend/internal/ffmpeg"
	"github.com/voiceforge/backend/internal/openvoice"
	"github.com/voiceforge/backend/internal/voicestore"
)

// CloneVoice accepts a reference audio upload, extracts a speaker embedding
// and persists it under the voice id. Earlier steps are not rolled back when
// a later one fails; the upload may remain on disk without an embedding.
func (h *VoiceHandler) CloneVoice(w http.ResponseWriter, r *http.Request) {
	if !h.models.ConverterReady() {
		jsonError(w, msgModelsUnavailable, http.StatusInternalServerError)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		jsonError(w, "audio file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// Suffix-only validation; nothing is written before this gate.
	if !voicestore.IsAudioFile(header.Filename) {
		jsonError(w, "only WAV, MP3, and OGG files are supported", http.StatusBadRequest)
		return
	}

	voiceID := r.FormValue("name")
	if voiceID == "" {
		voiceID = generateVoiceID()
	}

	uploadPath, err := h.store.SaveUpload(voiceID, header.Filename, file)
	if err != nil {
		log.Printf("[voice] save upload for %s: %v", voiceID, err)
		jsonError(w, fmt.Sprintf("error saving uploaded audio: %v", err), http.StatusInternalServerError)
		return
	}

	if info, err := ffmpeg.Probe(r.Context(), uploadPath); err == nil {
		log.Printf("[voice] processing %s: codec=%s sample_rate=%s duration=%ss",
			uploadPath, info.Codec, info.SampleRate, info.Duration)
	}

	wavPath := uploadPath
	if strings.ToLower(filepath.Ext(uploadPath)) != ".wav" {
		wavPath = strings.TrimSuffix(uploadPath, filepath.Ext(uploadPath)) + ".wav"
		log.Printf("[voice] converting %s to WAV", uploadPath)
		if err := ffmpeg.ToWAV(r.Context(), uploadPath, wavPath); err != nil {
			log.Printf("[voice] convert %s: %v", uploadPath, err)
			jsonError(w, fmt.Sprintf("error converting audio to WAV: %v", err), http.StatusInternalServerError)
			return
		}
	}

	embTmp, err := h.models.Converter.ExtractEmbedding(r.Context(), openvoice.EmbeddingRequest{
		AudioPath: wavPath,
		TargetDir: h.store.Dir(),
		VAD:       true,
	})
	if err != nil {
		log.Printf("[voice] extract embedding for %s: %v", voiceID, err)
		jsonError(w, fmt.Sprintf("error extracting speaker embedding: %v", err), http.StatusInternalServerError)
		return
	}

	embeddingPath, err := h.store.PromoteEmbedding(embTmp, voiceID)
	if err != nil {
		h.store.Remove(embTmp)
		log.Printf("[voice] save embedding for %s: %v", voiceID, err)
		jsonError(w, fmt.Sprintf("error saving speaker embedding: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("[voice] embedding extracted: voice=%s path=%s", voiceID, embeddingPath)
	jsonResponse(w, map[string]string{
		"status":        "success",
		"message":       "Voice embedding extracted successfully",
		"voiceId":       voiceID,
		"embeddingPath": embeddingPath,
	}, http.StatusOK)
}

// generateVoiceID makes a short random voice name when the client gave none.
// Collisions are not otherwise checked.
func generateVoiceID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return "voice_" + hex.EncodeToString(b)
}
