package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"

	"voicerag-server-go/internal/domain/asr"
)

func testProvider(t *testing.T, create transcribeFunc) *Provider {
	t.Helper()
	p, err := NewProvider(Config{
		APIKey:        "sk-test",
		PrimaryModel:  "gpt-4o-transcribe",
		FallbackModel: "whisper-1",
	}, nil)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	p.create = create
	return p
}

func TestTranscribe_PrimarySucceeds(t *testing.T) {
	var calls []string
	p := testProvider(t, func(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
		calls = append(calls, req.Model)
		return openai.AudioResponse{Text: "what is RAG?"}, nil
	})

	text, err := p.Transcribe(context.Background(), "/tmp/input.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "what is RAG?" {
		t.Errorf("text = %q", text)
	}
	if len(calls) != 1 || calls[0] != "gpt-4o-transcribe" {
		t.Errorf("calls = %v, want one primary call", calls)
	}
}

func TestTranscribe_FallbackUsedOnce(t *testing.T) {
	var calls []openai.AudioRequest
	p := testProvider(t, func(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
		calls = append(calls, req)
		if req.Model == "gpt-4o-transcribe" {
			return openai.AudioResponse{}, errors.New("quota exceeded")
		}
		return openai.AudioResponse{Text: "hello"}, nil
	})

	text, err := p.Transcribe(context.Background(), "/tmp/input.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello" {
		t.Errorf("text = %q", text)
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[1].Model != "whisper-1" {
		t.Errorf("fallback model = %s", calls[1].Model)
	}
	if calls[0].FilePath != calls[1].FilePath {
		t.Error("fallback must receive the same audio file")
	}
}

func TestTranscribe_BothModelsFail(t *testing.T) {
	lastErr := errors.New("server overloaded")
	var calls int
	p := testProvider(t, func(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
		calls++
		return openai.AudioResponse{}, lastErr
	})

	_, err := p.Transcribe(context.Background(), "/tmp/input.wav")

	var terr *asr.TranscriptionError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TranscriptionError, got %v", err)
	}
	if !errors.Is(err, lastErr) {
		t.Error("TranscriptionError must chain the underlying cause")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want exactly 2 (no retries)", calls)
	}
}

func TestNewProvider_RequiresAPIKey(t *testing.T) {
	if _, err := NewProvider(Config{}, nil); err == nil {
		t.Error("expected error for missing api key")
	}
}
