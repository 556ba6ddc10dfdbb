package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	platformerrors "voicerag-server-go/internal/platform/errors"
)

const (
	envConfigPath = "VOICERAG_CONFIG"
	envAPIKey     = "OPENAI_API_KEY"
	envBaseURL    = "OPENAI_BASE_URL"
)

// Loader reads configuration from defaults, an optional yaml file and the
// process environment, in that order.
type Loader struct {
	path      string
	useDotEnv bool
}

func NewLoader() *Loader {
	return &Loader{useDotEnv: true}
}

// WithPath pins the config file location instead of consulting VOICERAG_CONFIG.
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		// No .env file is fine, the process environment still applies.
		_ = godotenv.Load()
	}

	cfg := DefaultConfig()

	path := l.path
	if path == "" {
		path = os.Getenv(envConfigPath)
	}
	if path == "" {
		path = "config.yaml"
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindConfig, "load",
				fmt.Sprintf("failed to parse %s", path), err)
		}
	case os.IsNotExist(err):
		// Defaults plus environment only.
		path = ""
	default:
		return nil, platformerrors.Wrap(platformerrors.KindConfig, "load",
			fmt.Sprintf("failed to read %s", path), err)
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &Result{Config: cfg, Path: path}, nil
}

func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv(envAPIKey); key != "" {
		if cfg.ASR.APIKey == "" {
			cfg.ASR.APIKey = key
		}
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = key
		}
	}
	if url := os.Getenv(envBaseURL); url != "" {
		if cfg.ASR.BaseURL == "" {
			cfg.ASR.BaseURL = url
		}
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = url
		}
	}
}

func validate(cfg *Config) error {
	if cfg.Audio.MaxDurationSeconds <= 0 {
		return platformerrors.New(platformerrors.KindConfig, "validate",
			"audio.max_duration_seconds must be positive")
	}
	if cfg.Pool.Workers <= 0 {
		return platformerrors.New(platformerrors.KindConfig, "validate",
			"pool.workers must be positive")
	}
	if cfg.ASR.PrimaryModel == "" || cfg.ASR.FallbackModel == "" {
		return platformerrors.New(platformerrors.KindConfig, "validate",
			"asr primary and fallback models are required")
	}
	switch cfg.Transcript.Type {
	case "file", "redis", "sqlite":
	default:
		return platformerrors.New(platformerrors.KindConfig, "validate",
			fmt.Sprintf("unknown transcript store type %q", cfg.Transcript.Type))
	}
	return nil
}
