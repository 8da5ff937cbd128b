// Command download-checkpoints fetches the pretrained OpenVoice model
// artifacts the voice service loads at startup. Files already on disk are
// skipped; individual download failures do not abort the rest.
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/voiceforge/backend/internal/checkpoints"
)

func main() {
	_ = godotenv.Load()

	baseURL := getEnv("CHECKPOINT_BASE_URL", checkpoints.DefaultBaseURL)
	destDir := getEnv("CHECKPOINT_PATH", "checkpoints")

	log.Printf("Downloading checkpoints from %s into %s", baseURL, destDir)

	fetcher := checkpoints.NewFetcher(baseURL, destDir)
	if err := fetcher.FetchAll(context.Background(), checkpoints.Manifest()); err != nil {
		log.Fatalf("Checkpoint download incomplete: %v", err)
	}

	log.Println("All checkpoints present")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
