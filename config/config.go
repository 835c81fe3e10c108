package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Record sources selectable with RECORD_SOURCE.
const (
	SourceAuto        = "auto"
	SourceBlobs       = "blobs"
	SourceTranscripts = "transcripts"
	SourceCatalog     = "catalog"
)

// TranscriptionConfig is fixed at startup and handed to the ingest service.
type TranscriptionConfig struct {
	Enabled   bool
	Provider  string // google|command
	Model     string
	Device    string
	Language  string
	Command   string
	Workers   int
	QueueSize int
	Timeout   time.Duration
	SourceTag string
}

type AppConfig struct {
	Port     string
	LogLevel string

	UploadDir      string
	TranscriptDir  string
	MaxUploadBytes int64

	Transcription   TranscriptionConfig
	TranscriptStore string // file|mongo
	RecordSource    string

	MongoURI    string
	MongoDB     string
	PostgresURI string
	RedisAddr   string
	CacheTTL    time.Duration

	GCSBucket          string
	GCSPrefix          string
	GCPCredentialsFile string
}

// Load reads .env (when present) and the environment.
func Load() (AppConfig, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (AppConfig, error) {
	cfg := AppConfig{
		Port:           env("PORT", "5000"),
		LogLevel:       env("LOG_LEVEL", "info"),
		UploadDir:      env("UPLOAD_DIR", "uploads_raw"),
		TranscriptDir:  env("TRANSCRIPT_DIR", "transcripts"),
		MaxUploadBytes: 50 << 20,

		Transcription: TranscriptionConfig{
			Provider:  strings.ToLower(env("STT_PROVIDER", "")),
			Model:     env("STT_MODEL", ""),
			Device:    env("STT_DEVICE", "cpu"),
			Language:  env("STT_LANGUAGE", ""),
			Command:   env("STT_COMMAND", ""),
			Workers:   2,
			QueueSize: 8,
			Timeout:   5 * time.Minute,
			SourceTag: env("TRANSCRIPT_SOURCE_TAG", "esp32"),
		},
		TranscriptStore: strings.ToLower(env("TRANSCRIPT_STORE", "file")),
		RecordSource:    strings.ToLower(env("RECORD_SOURCE", SourceAuto)),

		MongoURI:    env("MONGO_URI", ""),
		MongoDB:     env("MONGO_DB", "yoorecord"),
		PostgresURI: env("POSTGRES_URI", ""),
		RedisAddr:   firstEnv("REDIS_ADDR", "REDIS_URI", "REDIS_URL"),
		CacheTTL:    30 * time.Second,

		GCSBucket:          env("GCS_BUCKET", ""),
		GCSPrefix:          env("GCS_PREFIX", "recordings"),
		GCPCredentialsFile: env("GCP_CREDENTIALS_FILE", ""),
	}

	var errs []error
	var err error
	if cfg.Transcription.Enabled, err = boolEnv("TRANSCRIBE_ENABLED", false); err != nil {
		errs = append(errs, err)
	}
	if cfg.Transcription.Workers, err = intEnv("TRANSCRIBE_WORKERS", cfg.Transcription.Workers); err != nil {
		errs = append(errs, err)
	}
	if cfg.Transcription.QueueSize, err = intEnv("TRANSCRIBE_QUEUE", cfg.Transcription.QueueSize); err != nil {
		errs = append(errs, err)
	}
	if cfg.Transcription.Timeout, err = durationEnv("TRANSCRIBE_TIMEOUT", cfg.Transcription.Timeout); err != nil {
		errs = append(errs, err)
	}
	if cfg.CacheTTL, err = durationEnv("RECORD_CACHE_TTL", cfg.CacheTTL); err != nil {
		errs = append(errs, err)
	}
	var maxBytes int
	if maxBytes, err = intEnv("MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes)); err != nil {
		errs = append(errs, err)
	}
	cfg.MaxUploadBytes = int64(maxBytes)

	if err := errors.Join(errs...); err != nil {
		return AppConfig{}, err
	}
	return cfg, cfg.Validate()
}

func (c AppConfig) Validate() error {
	if c.Transcription.Enabled {
		switch c.Transcription.Provider {
		case "google":
		case "command":
			if strings.TrimSpace(c.Transcription.Command) == "" {
				return errors.New("STT_COMMAND must be set when STT_PROVIDER=command")
			}
		default:
			return fmt.Errorf("STT_PROVIDER must be google or command when TRANSCRIBE_ENABLED is set, got %q", c.Transcription.Provider)
		}
	}
	switch c.TranscriptStore {
	case "file":
	case "mongo":
		if c.MongoURI == "" {
			return errors.New("MONGO_URI environment variable is not set (TRANSCRIPT_STORE=mongo)")
		}
	default:
		return fmt.Errorf("TRANSCRIPT_STORE must be file or mongo, got %q", c.TranscriptStore)
	}
	switch c.RecordSource {
	case SourceAuto, SourceBlobs:
	case SourceTranscripts:
		if !c.Transcription.Enabled {
			return errors.New("RECORD_SOURCE=transcripts requires TRANSCRIBE_ENABLED")
		}
	case SourceCatalog:
		if c.PostgresURI == "" {
			return errors.New("POSTGRES_URI environment variable is not set (RECORD_SOURCE=catalog)")
		}
	default:
		return fmt.Errorf("unknown RECORD_SOURCE %q", c.RecordSource)
	}
	return nil
}

// EffectiveRecordSource resolves "auto" against the transcription switch.
func (c AppConfig) EffectiveRecordSource() string {
	if c.RecordSource != SourceAuto {
		return c.RecordSource
	}
	if c.Transcription.Enabled {
		return SourceTranscripts
	}
	return SourceBlobs
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func boolEnv(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
