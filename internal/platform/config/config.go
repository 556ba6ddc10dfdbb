package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so yaml values like "30s" parse directly.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(n)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Web        WebConfig        `yaml:"web"`
	Audio      AudioConfig      `yaml:"audio"`
	Pool       PoolConfig       `yaml:"pool"`
	ASR        ASRConfig        `yaml:"asr"`
	LLM        LLMConfig        `yaml:"llm"`
	TTS        TTSConfig        `yaml:"tts"`
	Transcript TranscriptConfig `yaml:"transcript"`
}

type ServerConfig struct {
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

type WebConfig struct {
	StaticDir string `yaml:"static_dir"`
	OutputDir string `yaml:"output_dir"`
	UploadDir string `yaml:"upload_dir"`
}

type AudioConfig struct {
	// MaxDurationSeconds is the ceiling enforced after normalization.
	MaxDurationSeconds float64 `yaml:"max_duration_seconds"`
	// TempDir is the parent for per-request working areas. Empty means os.TempDir.
	TempDir string `yaml:"temp_dir"`
	// FFmpegPath overrides the ffmpeg binary looked up on PATH.
	FFmpegPath string `yaml:"ffmpeg_path"`
}

type PoolConfig struct {
	Workers    int `yaml:"workers"`
	QueueDepth int `yaml:"queue_depth"`
}

type ASRConfig struct {
	APIKey        string   `yaml:"api_key"`
	BaseURL       string   `yaml:"url"`
	PrimaryModel  string   `yaml:"primary_model"`
	FallbackModel string   `yaml:"fallback_model"`
	Timeout       Duration `yaml:"timeout"`
}

type LLMConfig struct {
	APIKey      string   `yaml:"api_key"`
	BaseURL     string   `yaml:"url"`
	Model       string   `yaml:"model_name"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature float32  `yaml:"temperature"`
	Timeout     Duration `yaml:"timeout"`
}

type TTSConfig struct {
	Voice    string   `yaml:"voice"`
	Language string   `yaml:"language"`
	Timeout  Duration `yaml:"timeout"`
}

type TranscriptConfig struct {
	Type   string                `yaml:"type"`
	File   TranscriptFileStore   `yaml:"file,omitempty"`
	Redis  TranscriptRedisStore  `yaml:"redis,omitempty"`
	SQLite TranscriptSQLiteStore `yaml:"sqlite,omitempty"`
}

type TranscriptFileStore struct {
	Path string `yaml:"path"`
}

type TranscriptRedisStore struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Key      string `yaml:"key"`
}

type TranscriptSQLiteStore struct {
	DSN string `yaml:"dsn"`
}
