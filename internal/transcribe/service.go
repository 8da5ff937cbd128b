// Package transcribe orchestrates the download → transcribe → cleanup
// pipeline behind the transcription service's single endpoint.
package transcribe

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"lukechampine.com/blake3"

	"github.com/voiceforge/backend/internal/whisper"
)

// Downloader fetches a video URL's audio track to a local WAV file.
type Downloader interface {
	DownloadAudio(ctx context.Context, url, outputPath string) error
}

// Service runs the per-request transcription pipeline. It holds no mutable
// state; isolation between concurrent requests comes from uuid-scoped
// download paths.
type Service struct {
	downloadDir string
	downloader  Downloader
	engine      whisper.Transcriber
	model       string
}

// NewService creates the pipeline service and its download directory.
func NewService(downloadDir string, dl Downloader, engine whisper.Transcriber, model string) (*Service, error) {
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}
	return &Service{
		downloadDir: downloadDir,
		downloader:  dl,
		engine:      engine,
		model:       model,
	}, nil
}

// Process downloads the URL's audio, transcribes it, and returns the text.
// The downloaded artifact is removed on every exit path; a failure in any
// state short-circuits to a terminal error after cleanup.
func (s *Service) Process(ctx context.Context, rawURL string) (string, error) {
	key := WorkingKey(rawURL)
	audioPath := filepath.Join(s.downloadDir, fmt.Sprintf("%s-%s.wav", key, uuid.New().String()))

	log.Printf("[transcribe] key=%s state=downloading url=%s", key, rawURL)
	if err := s.downloader.DownloadAudio(ctx, rawURL, audioPath); err != nil {
		log.Printf("[transcribe] key=%s state=download_failed: %v", key, err)
		return "", fmt.Errorf("download audio: %w", err)
	}
	defer func() {
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			log.Printf("[transcribe] key=%s cleanup failed for %s: %v", key, audioPath, err)
		} else {
			log.Printf("[transcribe] key=%s state=cleaned_up", key)
		}
	}()

	log.Printf("[transcribe] key=%s state=transcribing engine=%s model=%s", key, s.engine.Name(), s.model)
	result, err := s.engine.Transcribe(ctx, whisper.Request{
		FilePath: audioPath,
		Language: "auto",
		Model:    s.model,
	})
	if err != nil {
		log.Printf("[transcribe] key=%s state=transcription_failed: %v", key, err)
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	if result.Text == "" {
		log.Printf("[transcribe] key=%s state=transcription_failed: empty result", key)
		return "", fmt.Errorf("transcription produced no text")
	}

	log.Printf("[transcribe] key=%s state=transcribed chars=%d", key, len(result.Text))
	return result.Text, nil
}

// WorkingKey derives a filesystem-safe identifier for a video URL: the "v"
// query parameter when the URL carries one, else a short blake3 hash of the
// whole URL so short-link formats still get a well-formed key.
func WorkingKey(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if v := u.Query().Get("v"); v != "" {
			return sanitizeKey(v)
		}
	}
	sum := blake3.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:8])
}

func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		}
		return '_'
	}, key)
}
