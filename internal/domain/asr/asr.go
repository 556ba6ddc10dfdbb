// Package asr defines the speech-to-text contract used by the voice pipeline.
package asr

import (
	"context"
	"fmt"
)

// TranscriptionError means both the primary and the fallback model failed.
// Cause is the last underlying error.
type TranscriptionError struct {
	Model string
	Cause error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed (model %s): %v", e.Model, e.Cause)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Cause
}

// Provider turns a normalized PCM WAV file into text. The returned transcript
// is the backend's text verbatim.
type Provider interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}
