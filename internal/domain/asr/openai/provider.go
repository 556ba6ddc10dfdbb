package openai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"

	"voicerag-server-go/internal/domain/asr"
)

// Config holds the OpenAI transcription settings. The primary model is tried
// first; on any failure the fallback model gets exactly one attempt with the
// same audio.
type Config struct {
	APIKey        string
	BaseURL       string
	PrimaryModel  string
	FallbackModel string
	Timeout       time.Duration
}

type transcribeFunc func(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)

// Provider transcribes audio through the OpenAI audio API.
type Provider struct {
	cfg    Config
	logger *slog.Logger

	// create is the remote call, swappable in tests.
	create transcribeFunc
}

func NewProvider(cfg Config, logger *slog.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api_key is required")
	}
	if cfg.PrimaryModel == "" {
		cfg.PrimaryModel = "gpt-4o-transcribe"
	}
	if cfg.FallbackModel == "" {
		cfg.FallbackModel = "whisper-1"
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	return &Provider{
		cfg:    cfg,
		logger: logger,
		create: client.CreateTranscription,
	}, nil
}

// Transcribe tries the primary model, then the fallback once. Both failing
// surfaces a TranscriptionError wrapping the fallback's error.
func (p *Provider) Transcribe(ctx context.Context, audioPath string) (string, error) {
	text, err := p.transcribeOnce(ctx, p.cfg.PrimaryModel, audioPath)
	if err == nil {
		return text, nil
	}
	if ctx.Err() != nil {
		return "", &asr.TranscriptionError{Model: p.cfg.PrimaryModel, Cause: err}
	}

	p.logger.Warn("primary transcription model failed, trying fallback",
		"primary", p.cfg.PrimaryModel, "fallback", p.cfg.FallbackModel, "error", err)

	text, err = p.transcribeOnce(ctx, p.cfg.FallbackModel, audioPath)
	if err != nil {
		return "", &asr.TranscriptionError{Model: p.cfg.FallbackModel, Cause: err}
	}
	return text, nil
}

func (p *Provider) transcribeOnce(ctx context.Context, model, audioPath string) (string, error) {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	resp, err := p.create(ctx, openai.AudioRequest{
		Model:    model,
		FilePath: audioPath,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
