package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/voiceforge/backend/internal/api/handlers"
	"github.com/voiceforge/backend/internal/api/middleware"
	"github.com/voiceforge/backend/internal/config"
	"github.com/voiceforge/backend/internal/openvoice"
	"github.com/voiceforge/backend/internal/transcribe"
	"github.com/voiceforge/backend/internal/voicestore"
)

// jsonBodyLimit caps JSON request bodies; the clone-voice upload route
// carries its own larger limit.
const jsonBodyLimit = 1 << 20

// NewVoiceRouter builds the voice service's HTTP surface.
func NewVoiceRouter(cfg *config.Voice, models *openvoice.Models, store *voicestore.Store) *chi.Mux {
	r := newRouter(cfg.CORSOrigins, cfg.RateLimit)

	voiceHandler := handlers.NewVoiceHandler(models, store, cfg.MaxUploadBytes)

	r.Get("/health", voiceHandler.Health)
	r.Post("/clone-voice", voiceHandler.CloneVoice)
	r.With(middleware.MaxBodySize(jsonBodyLimit)).Post("/generate-speech", voiceHandler.GenerateSpeech)
	r.Get("/voices", voiceHandler.ListVoices)

	return r
}

// NewTranscribeRouter builds the transcription service's HTTP surface.
func NewTranscribeRouter(cfg *config.Transcribe, svc *transcribe.Service) *chi.Mux {
	r := newRouter(cfg.CORSOrigins, cfg.RateLimit)

	transcribeHandler := handlers.NewTranscribeHandler(svc)

	r.Get("/health", transcribeHandler.Health)
	r.With(middleware.MaxBodySize(jsonBodyLimit)).Post("/transcribe", transcribeHandler.Transcribe)

	return r
}

// newRouter applies the middleware stack shared by both services.
func newRouter(corsOrigins []string, rateLimit int) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(corsOrigins))
	if rateLimit > 0 {
		r.Use(middleware.NewRateLimiter(rateLimit, time.Minute).Handler)
	}

	return r
}
