package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/voiceforge/backend/internal/openvoice"
)

// watermarkMessage is encoded into converted audio by the converter model.
const watermarkMessage = "@MyShell"

type speechRequest struct {
	VoiceID string `json:"voice_id"`
	Text    string `json:"text"`
}

// GenerateSpeech synthesizes req.Text in the requested voice. A voice id
// with a stored embedding takes the conversion path; any other id is passed
// to the base model as a built-in speaker. All intermediate and output
// waveforms are deleted before the response is written; the audio is fully
// buffered in memory first.
func (h *VoiceHandler) GenerateSpeech(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}

	if !h.models.Ready() {
		jsonError(w, msgModelsUnavailable, http.StatusInternalServerError)
		return
	}

	log.Printf("[voice] generate speech: voice=%s text_len=%d", req.VoiceID, len(req.Text))

	var (
		audio []byte
		err   error
	)
	if h.store.HasEmbedding(req.VoiceID) {
		audio, err = h.generateCustom(r.Context(), req)
	} else {
		audio, err = h.generateBuiltin(r.Context(), req)
	}
	if err != nil {
		log.Printf("[voice] generate speech for %s: %v", req.VoiceID, err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Write(audio)
}

// generateCustom synthesizes base speech and converts it to the stored
// target voice. Both temp waveforms are removed on every exit path.
func (h *VoiceHandler) generateCustom(ctx context.Context, req speechRequest) ([]byte, error) {
	srcPath := h.store.TempPath("base.wav")
	defer h.store.Remove(srcPath)

	if err := h.models.Synth.Synthesize(ctx, openvoice.SynthesisRequest{
		Text:       req.Text,
		Speaker:    "default",
		Language:   "English",
		Speed:      1.0,
		OutputPath: srcPath,
	}); err != nil {
		return nil, fmt.Errorf("synthesize base speech: %w", err)
	}

	outPath := h.store.TempPath("generated.wav")
	defer h.store.Remove(outPath)

	if err := h.models.Converter.Convert(ctx, openvoice.ConvertRequest{
		AudioPath:  srcPath,
		SourceSE:   h.models.DefaultSourceSE(),
		TargetSE:   h.store.EmbeddingPath(req.VoiceID),
		OutputPath: outPath,
		Message:    watermarkMessage,
	}); err != nil {
		return nil, fmt.Errorf("convert to target voice: %w", err)
	}

	audio, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read generated audio: %w", err)
	}
	return audio, nil
}

// generateBuiltin synthesizes directly with the voice id as a built-in
// speaker, skipping conversion.
func (h *VoiceHandler) generateBuiltin(ctx context.Context, req speechRequest) ([]byte, error) {
	outPath := h.store.TempPath("generated.wav")
	defer h.store.Remove(outPath)

	if err := h.models.Synth.Synthesize(ctx, openvoice.SynthesisRequest{
		Text:       req.Text,
		Speaker:    req.VoiceID,
		Language:   "English",
		Speed:      1.0,
		OutputPath: outPath,
	}); err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}

	audio, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read generated audio: %w", err)
	}
	return audio, nil
}
