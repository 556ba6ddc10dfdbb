package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoader_DefaultsWhenFileMissing(t *testing.T) {
	loader := NewLoader().WithDotEnv(false).WithPath(filepath.Join(t.TempDir(), "missing.yaml"))

	result, err := loader.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Path != "" {
		t.Errorf("expected empty origin path for missing file, got %q", result.Path)
	}

	cfg := result.Config
	if cfg.Pool.Workers != 4 {
		t.Errorf("default pool workers = %d, want 4", cfg.Pool.Workers)
	}
	if cfg.Audio.MaxDurationSeconds != 120 {
		t.Errorf("default ceiling = %v, want 120", cfg.Audio.MaxDurationSeconds)
	}
	if cfg.LLM.MaxTokens != 450 || cfg.LLM.Temperature != 0.2 {
		t.Errorf("default llm tuning = (%d, %v), want (450, 0.2)", cfg.LLM.MaxTokens, cfg.LLM.Temperature)
	}
	if cfg.ASR.PrimaryModel != "gpt-4o-transcribe" || cfg.ASR.FallbackModel != "whisper-1" {
		t.Errorf("default asr models = (%s, %s)", cfg.ASR.PrimaryModel, cfg.ASR.FallbackModel)
	}
}

func TestLoader_FileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9001
pool:
  workers: 2
audio:
  max_duration_seconds: 30
asr:
  timeout: 10s
tts:
  voice: en-US-GuyNeural
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	result, err := NewLoader().WithDotEnv(false).WithPath(path).Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := result.Config
	if cfg.Server.Port != 9001 {
		t.Errorf("port = %d, want 9001", cfg.Server.Port)
	}
	if cfg.Pool.Workers != 2 {
		t.Errorf("workers = %d, want 2", cfg.Pool.Workers)
	}
	if cfg.Audio.MaxDurationSeconds != 30 {
		t.Errorf("ceiling = %v, want 30", cfg.Audio.MaxDurationSeconds)
	}
	if cfg.ASR.Timeout.Std() != 10*time.Second {
		t.Errorf("asr timeout = %v, want 10s", cfg.ASR.Timeout)
	}
	if cfg.TTS.Voice != "en-US-GuyNeural" {
		t.Errorf("voice = %s", cfg.TTS.Voice)
	}
	// Untouched keys keep their defaults.
	if cfg.LLM.Model != "gpt-3.5-turbo" {
		t.Errorf("llm model = %s, want default", cfg.LLM.Model)
	}
}

func TestLoader_EnvAPIKeyOverride(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test-123")

	result, err := NewLoader().WithDotEnv(false).WithPath(filepath.Join(t.TempDir(), "none.yaml")).Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Config.ASR.APIKey != "sk-test-123" {
		t.Errorf("asr api key not taken from environment")
	}
	if result.Config.LLM.APIKey != "sk-test-123" {
		t.Errorf("llm api key not taken from environment")
	}
}

func TestLoader_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("transcript:\n  type: carrier-pigeon\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := NewLoader().WithDotEnv(false).WithPath(path).Load(); err == nil {
		t.Fatal("expected validation error for unknown transcript store type")
	}
}
