package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Voice holds configuration for the voice cloning service.
type Voice struct {
	Port           int
	UploadPath     string
	CheckpointPath string
	RunnerBin      string // OpenVoice inference runner executable
	MaxUploadBytes int64
	CORSOrigins    []string
	RateLimit      int // requests per minute per IP, 0 disables
}

// Transcribe holds configuration for the transcription service.
type Transcribe struct {
	Port             int
	DownloadPath     string
	WhisperBin       string
	WhisperModel     string
	WhisperServerURL string // when set, use whisper-server instead of the CLI
	YTDLPBin         string
	CORSOrigins      []string
	RateLimit        int
}

// fileConfig mirrors the optional TOML config file. Env vars take
// precedence over file values, file values over built-in defaults.
type fileConfig struct {
	Voice struct {
		Port           int    `toml:"port"`
		UploadPath     string `toml:"upload_path"`
		CheckpointPath string `toml:"checkpoint_path"`
		RunnerBin      string `toml:"runner_bin"`
		MaxUploadMB    int64  `toml:"max_upload_mb"`
	} `toml:"voice"`
	Transcribe struct {
		Port             int    `toml:"port"`
		DownloadPath     string `toml:"download_path"`
		WhisperBin       string `toml:"whisper_bin"`
		WhisperModel     string `toml:"whisper_model"`
		WhisperServerURL string `toml:"whisper_server_url"`
		YTDLPBin         string `toml:"ytdlp_bin"`
	} `toml:"transcribe"`
}

// LoadVoice builds the voice service configuration.
func LoadVoice() *Voice {
	fc := loadFile()

	cfg := &Voice{
		Port:           8000,
		UploadPath:     "uploads",
		CheckpointPath: "checkpoints",
		RunnerBin:      "openvoice-infer",
		MaxUploadBytes: 64 << 20,
	}
	if fc != nil {
		applyInt(&cfg.Port, fc.Voice.Port)
		applyString(&cfg.UploadPath, fc.Voice.UploadPath)
		applyString(&cfg.CheckpointPath, fc.Voice.CheckpointPath)
		applyString(&cfg.RunnerBin, fc.Voice.RunnerBin)
		if fc.Voice.MaxUploadMB > 0 {
			cfg.MaxUploadBytes = fc.Voice.MaxUploadMB << 20
		}
	}

	cfg.Port = envInt("PORT", cfg.Port)
	cfg.UploadPath = getEnv("UPLOAD_PATH", cfg.UploadPath)
	cfg.CheckpointPath = getEnv("CHECKPOINT_PATH", cfg.CheckpointPath)
	cfg.RunnerBin = getEnv("OPENVOICE_RUNNER", cfg.RunnerBin)
	if mb := envInt("MAX_UPLOAD_MB", 0); mb > 0 {
		cfg.MaxUploadBytes = int64(mb) << 20
	}
	cfg.CORSOrigins = corsOrigins()
	cfg.RateLimit = envInt("RATE_LIMIT", 0)

	return cfg
}

// LoadTranscribe builds the transcription service configuration.
func LoadTranscribe() *Transcribe {
	fc := loadFile()

	cfg := &Transcribe{
		Port:         8001,
		DownloadPath: "downloads",
		WhisperBin:   "whisper",
		WhisperModel: "small",
		YTDLPBin:     "yt-dlp",
	}
	if fc != nil {
		applyInt(&cfg.Port, fc.Transcribe.Port)
		applyString(&cfg.DownloadPath, fc.Transcribe.DownloadPath)
		applyString(&cfg.WhisperBin, fc.Transcribe.WhisperBin)
		applyString(&cfg.WhisperModel, fc.Transcribe.WhisperModel)
		applyString(&cfg.WhisperServerURL, fc.Transcribe.WhisperServerURL)
		applyString(&cfg.YTDLPBin, fc.Transcribe.YTDLPBin)
	}

	cfg.Port = envInt("PORT", cfg.Port)
	cfg.DownloadPath = getEnv("DOWNLOAD_PATH", cfg.DownloadPath)
	cfg.WhisperBin = getEnv("WHISPER_BIN", cfg.WhisperBin)
	cfg.WhisperModel = getEnv("WHISPER_MODEL", cfg.WhisperModel)
	cfg.WhisperServerURL = getEnv("WHISPER_SERVER_URL", cfg.WhisperServerURL)
	cfg.YTDLPBin = getEnv("YTDLP_BIN", cfg.YTDLPBin)
	cfg.CORSOrigins = corsOrigins()
	cfg.RateLimit = envInt("RATE_LIMIT", 0)

	return cfg
}

// loadFile reads the optional TOML config file. A missing file is not an
// error; a malformed one is fatal because silently ignoring it would run
// the service with settings the operator did not intend.
func loadFile() *fileConfig {
	path := getEnv("CONFIG_FILE", "config.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[config] cannot read %s: %v", path, err)
		}
		return nil
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		log.Fatalf("[config] invalid config file %s: %v", path, err)
	}
	log.Printf("[config] loaded %s", path)
	return &fc
}

// corsOrigins parses CORS_ORIGINS as a comma-separated list, defaulting to "*".
func corsOrigins() []string {
	origins := []string{"*"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins = make([]string, 0, len(parts))
		for _, o := range parts {
			o = strings.TrimSpace(o)
			if o != "" {
				origins = append(origins, o)
			}
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("[config] invalid integer for %s: %q", key, v)
	}
	return fallback
}

func applyString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func applyInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
