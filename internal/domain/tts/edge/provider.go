package edge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wujunwei928/edge-tts-go/edge_tts"

	"voicerag-server-go/internal/domain/tts"
)

// Config holds the edge TTS settings. When Voice is empty one is picked for
// the configured language.
type Config struct {
	Voice    string
	Language string
	Timeout  time.Duration
}

var defaultVoices = map[string]string{
	"en": "en-US-AriaNeural",
	"zh": "zh-CN-XiaoxiaoNeural",
}

// Provider synthesizes speech through the Microsoft Edge TTS service and
// writes mp3 output. Files are written to a temporary sibling and moved into
// place so a failed synthesis never leaves a partial file behind.
type Provider struct {
	voice   string
	timeout time.Duration
	logger  *slog.Logger

	// synth is the remote call, swappable in tests.
	synth func(text string) ([]byte, error)
}

func NewProvider(cfg Config, logger *slog.Logger) *Provider {
	voice := cfg.Voice
	if voice == "" {
		voice = defaultVoices[strings.ToLower(cfg.Language)]
	}
	if voice == "" {
		voice = defaultVoices["en"]
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Provider{voice: voice, timeout: cfg.Timeout, logger: logger}
	p.synth = p.performSynthesis
	return p
}

func (p *Provider) Synthesize(ctx context.Context, text, destPath string) error {
	if strings.TrimSpace(text) == "" {
		return &tts.SynthesisError{Cause: errors.New("empty text")}
	}

	if dir := filepath.Dir(destPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &tts.SynthesisError{Cause: err}
		}
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	data, err := p.synthesizeWithContext(ctx, text)
	if err != nil {
		return &tts.SynthesisError{Cause: err}
	}
	if len(data) == 0 {
		return &tts.SynthesisError{Cause: errors.New("backend returned no audio")}
	}

	tmpPath := destPath + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		os.Remove(tmpPath)
		return &tts.SynthesisError{Cause: err}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return &tts.SynthesisError{Cause: err}
	}

	p.logger.Debug("speech synthesized", "voice", p.voice, "bytes", len(data), "dest", destPath)
	return nil
}

// synthesizeWithContext runs the blocking synthesis call and abandons the wait
// when the context expires. The edge TTS client itself is not cancellable.
func (p *Provider) synthesizeWithContext(ctx context.Context, text string) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := p.synth(text)
		ch <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.data, r.err
	}
}

func (p *Provider) performSynthesis(text string) ([]byte, error) {
	communicate, err := edge_tts.NewCommunicate(text, edge_tts.SetVoice(p.voice))
	if err != nil {
		return nil, fmt.Errorf("failed to create edge TTS communicator: %w", err)
	}

	return communicate.Stream()
}
