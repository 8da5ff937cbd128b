package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// CLIEngine execs the whisper CLI for each request. The model is loaded
// fresh per invocation, which keeps the service's memory flat between
// requests at the cost of per-call startup time.
type CLIEngine struct {
	bin string
}

// NewCLIEngine creates an engine around the given whisper executable.
func NewCLIEngine(bin string) *CLIEngine {
	return &CLIEngine{bin: bin}
}

func (e *CLIEngine) Name() string {
	return "whisper-cli"
}

// cliResult is the JSON document the whisper CLI writes next to the input.
type cliResult struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start decimal.Decimal `json:"start"`
		End   decimal.Decimal `json:"end"`
		Text  string          `json:"text"`
	} `json:"segments"`
}

// Transcribe runs the whisper CLI on an audio file and parses its JSON output.
func (e *CLIEngine) Transcribe(ctx context.Context, req Request) (*Result, error) {
	outDir, err := os.MkdirTemp("", "whisper-out-")
	if err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := []string{
		req.FilePath,
		"--model", req.Model,
		"--output_format", "json",
		"--output_dir", outDir,
	}
	if req.Language != "" && req.Language != "auto" {
		args = append(args, "--language", req.Language)
	}

	cmd := exec.CommandContext(ctx, e.bin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("whisper: %s: %w", strings.TrimSpace(string(output)), err)
	}

	base := strings.TrimSuffix(filepath.Base(req.FilePath), filepath.Ext(req.FilePath))
	res, err := parseResultFile(filepath.Join(outDir, base+".json"))
	if err != nil {
		return nil, err
	}

	log.Printf("[whisper] cli transcription done: file=%s segments=%d language=%s",
		filepath.Base(req.FilePath), len(res.Segments), res.Language)
	return res, nil
}

// parseResultFile decodes the JSON document the whisper CLI writes.
// Timestamps come back as decimal seconds and are converted to integer
// milliseconds without float drift.
func parseResultFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open whisper result: %w", err)
	}
	defer f.Close()

	var cr cliResult
	if err := json.NewDecoder(f).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decode whisper result: %w", err)
	}

	res := &Result{
		Text:     strings.TrimSpace(cr.Text),
		Language: cr.Language,
		Segments: make([]Segment, len(cr.Segments)),
	}
	thousand := decimal.NewFromInt(1000)
	for n, s := range cr.Segments {
		res.Segments[n] = Segment{
			StartMs: s.Start.Mul(thousand).BigInt().Uint64(),
			EndMs:   s.End.Mul(thousand).BigInt().Uint64(),
			Text:    strings.TrimSpace(s.Text),
		}
	}
	return res, nil
}
