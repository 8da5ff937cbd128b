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
	"github.com/voiceforge/backend/internal/device"
	"github.com/voiceforge/backend/internal/openvoice"
	"github.com/voiceforge/backend/internal/voicestore"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded environment from .env")
	}

	cfg := config.LoadVoice()

	store, err := voicestore.New(cfg.UploadPath)
	if err != nil {
		log.Fatalf("Failed to initialize voice store: %v", err)
	}

	// Device choice is fixed for the process lifetime.
	dev := device.Detect()

	// Best-effort: the server starts even when checkpoints are absent and
	// reports model unavailability per request instead.
	models := openvoice.Initialize(cfg.CheckpointPath, cfg.RunnerBin, dev)

	router := api.NewVoiceRouter(cfg, models, store)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Starting voice service on %s", addr)
	log.Printf("Upload path: %s", cfg.UploadPath)
	log.Printf("Checkpoint path: %s", cfg.CheckpointPath)

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
