package handlers

import (
	"net/http"

	"github.com/voiceforge/backend/internal/openvoice"
	"github.com/voiceforge/backend/internal/voicestore"
)

// msgModelsUnavailable is the fixed unavailable-dependency message. Model
// loading is best-effort at startup, so every dependent handler gates on it.
const msgModelsUnavailable = "OpenVoice models not initialized. Please check the server logs for details."

type VoiceHandler struct {
	models    *openvoice.Models
	store     *voicestore.Store
	maxUpload int64
}

func NewVoiceHandler(models *openvoice.Models, store *voicestore.Store, maxUpload int64) *VoiceHandler {
	return &VoiceHandler{models: models, store: store, maxUpload: maxUpload}
}

type voiceEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListVoices returns the speaker ids known to the base synthesizer's
// checkpoint config. Read-only, no side effects.
func (h *VoiceHandler) ListVoices(w http.ResponseWriter, r *http.Request) {
	if !h.models.SynthReady() {
		jsonError(w, msgModelsUnavailable, http.StatusInternalServerError)
		return
	}

	ids := h.models.Synth.Speakers()
	voices := make([]voiceEntry, 0, len(ids))
	for _, id := range ids {
		voices = append(voices, voiceEntry{ID: id, Name: id})
	}

	jsonResponse(w, map[string]interface{}{
		"voices": voices,
	}, http.StatusOK)
}

// Health always answers 200; model availability is reported, not required.
func (h *VoiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]interface{}{
		"status": "ok",
		"models": map[string]bool{
			"synthesizer": h.models.SynthReady(),
			"converter":   h.models.ConverterReady(),
		},
	}, http.StatusOK)
}
