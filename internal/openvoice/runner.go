package openvoice

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// runnerSynthesizer drives the base speaker model through the inference
// runner executable. One runner invocation per synthesis call.
type runnerSynthesizer struct {
	bin      string
	ckptDir  string
	device   string
	speakers []string
}

func newRunnerSynthesizer(bin, ckptDir, device string, cfg *CheckpointConfig) *runnerSynthesizer {
	return &runnerSynthesizer{
		bin:      bin,
		ckptDir:  ckptDir,
		device:   device,
		speakers: cfg.SpeakerIDs(),
	}
}

func (s *runnerSynthesizer) Speakers() []string {
	return s.speakers
}

func (s *runnerSynthesizer) Synthesize(ctx context.Context, req SynthesisRequest) error {
	args := []string{
		"tts",
		"--config", filepath.Join(s.ckptDir, "config.json"),
		"--checkpoint", filepath.Join(s.ckptDir, "checkpoint.pth"),
		"--device", s.device,
		"--speaker", req.Speaker,
		"--language", req.Language,
		"--speed", strconv.FormatFloat(req.Speed, 'f', -1, 64),
		"--output", req.OutputPath,
	}
	// Text goes over stdin so arbitrary content never hits the arg list.
	return runRunner(ctx, s.bin, args, req.Text, req.OutputPath)
}

// runnerConverter drives the tone color converter through the inference
// runner executable.
type runnerConverter struct {
	bin     string
	ckptDir string
	device  string
}

func newRunnerConverter(bin, ckptDir, device string) *runnerConverter {
	return &runnerConverter{bin: bin, ckptDir: ckptDir, device: device}
}

func (c *runnerConverter) ExtractEmbedding(ctx context.Context, req EmbeddingRequest) (string, error) {
	outPath := filepath.Join(req.TargetDir, fmt.Sprintf(".se-%s.pt", strings.TrimSuffix(filepath.Base(req.AudioPath), filepath.Ext(req.AudioPath))))
	args := []string{
		"extract-se",
		"--config", filepath.Join(c.ckptDir, "config.json"),
		"--checkpoint", filepath.Join(c.ckptDir, "checkpoint.pth"),
		"--device", c.device,
		"--audio", req.AudioPath,
		"--target-dir", req.TargetDir,
		"--output", outPath,
	}
	if req.VAD {
		args = append(args, "--vad")
	}
	if err := runRunner(ctx, c.bin, args, "", outPath); err != nil {
		return "", err
	}
	return outPath, nil
}

func (c *runnerConverter) Convert(ctx context.Context, req ConvertRequest) error {
	args := []string{
		"convert",
		"--config", filepath.Join(c.ckptDir, "config.json"),
		"--checkpoint", filepath.Join(c.ckptDir, "checkpoint.pth"),
		"--device", c.device,
		"--audio", req.AudioPath,
		"--source-se", req.SourceSE,
		"--target-se", req.TargetSE,
		"--message", req.Message,
		"--output", req.OutputPath,
	}
	return runRunner(ctx, c.bin, args, "", req.OutputPath)
}

// runRunner executes one inference runner invocation. On failure any partial
// output file is removed and the runner's combined output is folded into the
// returned error.
func runRunner(ctx context.Context, bin string, args []string, stdin, outputPath string) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		if outputPath != "" {
			os.Remove(outputPath)
		}
		return fmt.Errorf("%s %s: %s: %w", filepath.Base(bin), args[0], strings.TrimSpace(string(output)), err)
	}

	if outputPath != "" {
		if _, err := os.Stat(outputPath); err != nil {
			return fmt.Errorf("%s %s: runner produced no output at %s", filepath.Base(bin), args[0], outputPath)
		}
	}

	if len(output) > 0 {
		log.Printf("[openvoice] %s: %s", args[0], strings.TrimSpace(string(output)))
	}
	return nil
}
