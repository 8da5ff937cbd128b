// Package ytdlp wraps the yt-dlp executable for audio-only downloads.
package ytdlp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Downloader fetches the best available audio stream of a video URL and
// transcodes it to WAV through yt-dlp's ffmpeg postprocessor.
type Downloader struct {
	bin string
}

// New creates a downloader around the given yt-dlp executable.
func New(bin string) *Downloader {
	return &Downloader{bin: bin}
}

// DownloadAudio downloads url's audio as WAV at outputPath. outputPath must
// end in ".wav"; yt-dlp renames its intermediate download into place after
// extraction.
func (d *Downloader) DownloadAudio(ctx context.Context, url, outputPath string) error {
	if !strings.HasSuffix(outputPath, ".wav") {
		return fmt.Errorf("output path must end in .wav: %s", outputPath)
	}
	// yt-dlp substitutes the real container extension during download,
	// then the extract-audio step produces the final .wav.
	template := strings.TrimSuffix(outputPath, ".wav") + ".%(ext)s"

	cmd := exec.CommandContext(ctx, d.bin,
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", "wav",
		"--audio-quality", "192K",
		"--no-playlist",
		"-o", template,
		url,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("yt-dlp: %s: %w", strings.TrimSpace(string(output)), err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("yt-dlp finished but %s does not exist: %w", outputPath, err)
	}
	return nil
}
