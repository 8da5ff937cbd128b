package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// SampleRate is the waveform rate the voice models expect.
const SampleRate = 16000

// ToWAV converts any audio file to WAV 16kHz mono PCM at outputPath.
// A partial output file is removed on failure.
func ToWAV(ctx context.Context, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner",
		"-loglevel", "error",
		"-i", inputPath,
		"-vn", // no video
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-ac", "1", // mono
		"-y", // overwrite
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("ffmpeg: %s: %w", string(output), err)
	}

	return nil
}
