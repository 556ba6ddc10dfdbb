package edge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"voicerag-server-go/internal/domain/tts"
)

func TestSynthesize_WritesFile(t *testing.T) {
	p := NewProvider(Config{Language: "en"}, nil)
	p.synth = func(text string) ([]byte, error) {
		return []byte("mp3-bytes-for: " + text), nil
	}

	dest := filepath.Join(t.TempDir(), "replies", "response.mp3")
	if err := p.Synthesize(context.Background(), "hello there", dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(data) == 0 {
		t.Error("output file is empty")
	}
}

func TestSynthesize_EmptyText(t *testing.T) {
	p := NewProvider(Config{}, nil)
	p.synth = func(text string) ([]byte, error) {
		t.Fatal("backend must not be called for empty text")
		return nil, nil
	}

	err := p.Synthesize(context.Background(), "   ", filepath.Join(t.TempDir(), "out.mp3"))
	var serr *tts.SynthesisError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SynthesisError, got %v", err)
	}
}

func TestSynthesize_FailureLeavesNoFile(t *testing.T) {
	p := NewProvider(Config{}, nil)
	p.synth = func(text string) ([]byte, error) {
		return nil, errors.New("service unreachable")
	}

	dir := t.TempDir()
	dest := filepath.Join(dir, "response.mp3")

	err := p.Synthesize(context.Background(), "hello", dest)
	var serr *tts.SynthesisError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SynthesisError, got %v", err)
	}

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatalf("read dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("destination dir not clean after failure: %v", entries)
	}
}

func TestSynthesize_DefaultVoiceByLanguage(t *testing.T) {
	tests := []struct {
		cfg   Config
		voice string
	}{
		{Config{Language: "en"}, "en-US-AriaNeural"},
		{Config{Language: "zh"}, "zh-CN-XiaoxiaoNeural"},
		{Config{Language: "xx"}, "en-US-AriaNeural"},
		{Config{Voice: "en-US-GuyNeural", Language: "en"}, "en-US-GuyNeural"},
	}

	for _, tt := range tests {
		if p := NewProvider(tt.cfg, nil); p.voice != tt.voice {
			t.Errorf("NewProvider(%+v).voice = %s, want %s", tt.cfg, p.voice, tt.voice)
		}
	}
}
