package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/voiceforge/backend/internal/transcribe"
)

type TranscribeHandler struct {
	svc *transcribe.Service
}

func NewTranscribeHandler(svc *transcribe.Service) *TranscribeHandler {
	return &TranscribeHandler{svc: svc}
}

type transcribeRequest struct {
	URL string `json:"url"`
}

// Transcribe downloads the URL's audio and returns its transcription.
func (h *TranscribeHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req transcribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		jsonError(w, "url is required", http.StatusBadRequest)
		return
	}

	log.Printf("[transcribe] received request for URL: %s", req.URL)

	text, err := h.svc.Process(r.Context(), req.URL)
	if err != nil {
		jsonError(w, "failed to transcribe video: "+err.Error(), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]string{
		"status":        "success",
		"transcription": text,
	}, http.StatusOK)
}

// Health always answers 200.
func (h *TranscribeHandler) Health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}
