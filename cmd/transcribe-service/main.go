package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/voiceforge/backend/internal/api"
	"github.com/voiceforge/backend/internal/config"
	"github.com/voiceforge/backend/internal/transcribe"
	"github.com/voiceforge/backend/internal/whisper"
	"github.com/voiceforge/backend/internal/ytdlp"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded environment from .env")
	}

	cfg := config.LoadTranscribe()

	var engine whisper.Transcriber
	if cfg.WhisperServerURL != "" {
		engine = whisper.NewServerClient(cfg.WhisperServerURL)
	} else {
		engine = whisper.NewCLIEngine(cfg.WhisperBin)
	}
	log.Printf("Using whisper engine: %s (model=%s)", engine.Name(), cfg.WhisperModel)

	downloader := ytdlp.New(cfg.YTDLPBin)

	svc, err := transcribe.NewService(cfg.DownloadPath, downloader, engine, cfg.WhisperModel)
	if err != nil {
		log.Fatalf("Failed to initialize transcription service: %v", err)
	}

	router := api.NewTranscribeRouter(cfg, svc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Starting transcription service on %s", addr)
	log.Printf("Download path: %s", cfg.DownloadPath)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		os.Exit(0)
	}()

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
