// Package openvoice wraps the OpenVoice base-speaker synthesizer and tone
// color converter. Go owns the orchestration; the model inference itself
// runs in an external runner process driven by checkpoint files on disk.
package openvoice

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/voiceforge/backend/internal/device"
)

// SynthesisRequest asks the base speaker model to render text to a WAV file.
type SynthesisRequest struct {
	Text       string
	Speaker    string // speaker id from the base checkpoint config
	Language   string
	Speed      float64
	OutputPath string
}

// EmbeddingRequest asks the converter to extract a speaker embedding from
// reference audio.
type EmbeddingRequest struct {
	AudioPath string
	TargetDir string // directory the runner may use for intermediate segments
	VAD       bool   // voice activity detection during extraction
}

// ConvertRequest asks the converter to reshape synthesized speech into the
// target speaker's voice.
type ConvertRequest struct {
	AudioPath  string // base speech to convert
	SourceSE   string // path to the source speaker embedding
	TargetSE   string // path to the target speaker embedding
	OutputPath string
	Message    string // watermark message encoded into the output
}

// Synthesizer is the base speaker text-to-speech model.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) error
	Speakers() []string
}

// Converter is the tone color conversion model.
type Converter interface {
	ExtractEmbedding(ctx context.Context, req EmbeddingRequest) (string, error)
	Convert(ctx context.Context, req ConvertRequest) error
}

// Models holds the process-wide model handles. Either handle may be nil when
// its checkpoints were missing or invalid at startup; handlers must check
// before use. The struct is read-only after Initialize returns.
type Models struct {
	Synth     Synthesizer
	Converter Converter

	baseDir string // base speaker checkpoint directory
}

// Ready reports whether both model handles are available.
func (m *Models) Ready() bool {
	return m != nil && m.Synth != nil && m.Converter != nil
}

// SynthReady reports whether the base synthesizer is available.
func (m *Models) SynthReady() bool {
	return m != nil && m.Synth != nil
}

// ConverterReady reports whether the tone color converter is available.
func (m *Models) ConverterReady() bool {
	return m != nil && m.Converter != nil
}

// DefaultSourceSE returns the path of the reference source-speaker embedding
// shipped with the base checkpoint.
func (m *Models) DefaultSourceSE() string {
	return filepath.Join(m.baseDir, "en_default_se.pth")
}

// Initialize loads both model components best-effort. Any failure is logged
// and leaves the corresponding handle nil; startup itself never fails, so
// the service can come up in environments without checkpoints or a GPU and
// report unavailability per request instead of crashing.
func Initialize(checkpointDir, runnerBin string, dev *device.Info) *Models {
	m := &Models{
		baseDir: filepath.Join(checkpointDir, "base_speakers", "EN"),
	}
	converterDir := filepath.Join(checkpointDir, "converter")

	baseCfg, err := loadCheckpoint(m.baseDir)
	if err != nil {
		log.Printf("[openvoice] base speaker checkpoints unavailable: %v", err)
	} else {
		m.Synth = newRunnerSynthesizer(runnerBin, m.baseDir, dev.Kind, baseCfg)
		log.Printf("[openvoice] base speaker model initialized (%d speakers, device=%s)",
			len(baseCfg.Speakers), dev.Kind)
	}

	if _, err := loadCheckpoint(converterDir); err != nil {
		log.Printf("[openvoice] converter checkpoints unavailable: %v", err)
	} else {
		m.Converter = newRunnerConverter(runnerBin, converterDir, dev.Kind)
		log.Printf("[openvoice] tone color converter initialized (device=%s)", dev.Kind)
	}

	return m
}

// loadCheckpoint validates a checkpoint directory and parses its config.
func loadCheckpoint(dir string) (*CheckpointConfig, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint dir %s: %w", dir, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("checkpoint dir %s is empty", dir)
	}

	if _, err := os.Stat(filepath.Join(dir, "checkpoint.pth")); err != nil {
		return nil, fmt.Errorf("missing checkpoint.pth in %s: %w", dir, err)
	}

	cfg, err := LoadCheckpointConfig(filepath.Join(dir, "config.json"))
	if err != nil {
		return nil, fmt.Errorf("load config.json in %s: %w", dir, err)
	}
	return cfg, nil
}
