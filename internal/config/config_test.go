package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pointAwayFromConfigFile keeps tests independent of a developer's local
// config.toml.
func pointAwayFromConfigFile(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.toml"))
}

func TestLoadVoiceDefaults(t *testing.T) {
	pointAwayFromConfigFile(t)

	cfg := LoadVoice()
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "uploads", cfg.UploadPath)
	assert.Equal(t, "checkpoints", cfg.CheckpointPath)
	assert.Equal(t, "openvoice-infer", cfg.RunnerBin)
	assert.Equal(t, int64(64<<20), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 0, cfg.RateLimit)
}

func TestLoadTranscribeDefaults(t *testing.T) {
	pointAwayFromConfigFile(t)

	cfg := LoadTranscribe()
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "downloads", cfg.DownloadPath)
	assert.Equal(t, "whisper", cfg.WhisperBin)
	assert.Equal(t, "small", cfg.WhisperModel)
	assert.Empty(t, cfg.WhisperServerURL)
	assert.Equal(t, "yt-dlp", cfg.YTDLPBin)
}

func TestEnvOverridesDefaults(t *testing.T) {
	pointAwayFromConfigFile(t)
	t.Setenv("PORT", "9000")
	t.Setenv("UPLOAD_PATH", "/var/voices")
	t.Setenv("MAX_UPLOAD_MB", "8")
	t.Setenv("RATE_LIMIT", "30")

	cfg := LoadVoice()
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/var/voices", cfg.UploadPath)
	assert.Equal(t, int64(8<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 30, cfg.RateLimit)
}

func TestTOMLFileOverridesDefaultsButNotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[voice]
port = 9100
upload_path = "/from/file"

[transcribe]
whisper_model = "medium"
`), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("UPLOAD_PATH", "/from/env")

	vcfg := LoadVoice()
	assert.Equal(t, 9100, vcfg.Port, "file value beats default")
	assert.Equal(t, "/from/env", vcfg.UploadPath, "env beats file")

	tcfg := LoadTranscribe()
	assert.Equal(t, "medium", tcfg.WhisperModel)
}

func TestCORSOriginsParsing(t *testing.T) {
	pointAwayFromConfigFile(t)
	t.Setenv("CORS_ORIGINS", " https://one.example , https://two.example ,")

	cfg := LoadVoice()
	assert.Equal(t, []string{"https://one.example", "https://two.example"}, cfg.CORSOrigins)
}

func TestInvalidIntFallsBack(t *testing.T) {
	pointAwayFromConfigFile(t)
	t.Setenv("PORT", "not-a-number")

	cfg := LoadVoice()
	assert.Equal(t, 8000, cfg.Port)
}
