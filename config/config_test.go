package config

import (
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "LOG_LEVEL", "UPLOAD_DIR", "TRANSCRIPT_DIR", "TRANSCRIBE_ENABLED", "STT_PROVIDER",
		"STT_COMMAND", "TRANSCRIBE_WORKERS", "TRANSCRIBE_QUEUE", "TRANSCRIBE_TIMEOUT", "TRANSCRIPT_STORE",
		"RECORD_SOURCE", "MONGO_URI", "POSTGRES_URI", "REDIS_ADDR", "REDIS_URI", "REDIS_URL",
		"RECORD_CACHE_TTL", "MAX_UPLOAD_BYTES", "GCS_BUCKET",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != "5000" || cfg.UploadDir != "uploads_raw" || cfg.TranscriptDir != "transcripts" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Transcription.Enabled {
		t.Error("transcription should default to off")
	}
	if cfg.Transcription.SourceTag != "esp32" {
		t.Errorf("SourceTag = %q", cfg.Transcription.SourceTag)
	}
	if got := cfg.EffectiveRecordSource(); got != SourceBlobs {
		t.Errorf("EffectiveRecordSource = %q", got)
	}
}

func TestFromEnvTranscription(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRANSCRIBE_ENABLED", "true")
	t.Setenv("STT_PROVIDER", "Command")
	t.Setenv("STT_COMMAND", "python3 whisper.py")
	t.Setenv("TRANSCRIBE_WORKERS", "4")
	t.Setenv("TRANSCRIBE_TIMEOUT", "90s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	tc := cfg.Transcription
	if !tc.Enabled || tc.Provider != "command" || tc.Workers != 4 || tc.Timeout != 90*time.Second {
		t.Errorf("transcription = %+v", tc)
	}
	if cfg.RedisAddr != "redis://localhost:6379/0" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
	if got := cfg.EffectiveRecordSource(); got != SourceTranscripts {
		t.Errorf("EffectiveRecordSource = %q", got)
	}
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad bool", map[string]string{"TRANSCRIBE_ENABLED": "maybe"}, "TRANSCRIBE_ENABLED"},
		{"bad duration", map[string]string{"TRANSCRIBE_TIMEOUT": "soon"}, "TRANSCRIBE_TIMEOUT"},
		{"missing provider", map[string]string{"TRANSCRIBE_ENABLED": "1"}, "STT_PROVIDER"},
		{"command without path", map[string]string{"TRANSCRIBE_ENABLED": "1", "STT_PROVIDER": "command"}, "STT_COMMAND"},
		{"mongo without uri", map[string]string{"TRANSCRIPT_STORE": "mongo"}, "MONGO_URI"},
		{"catalog without uri", map[string]string{"RECORD_SOURCE": "catalog"}, "POSTGRES_URI"},
		{"transcripts without stt", map[string]string{"RECORD_SOURCE": "transcripts"}, "TRANSCRIBE_ENABLED"},
		{"unknown source", map[string]string{"RECORD_SOURCE": "s3"}, "RECORD_SOURCE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}
}
