// Package tts defines the text-to-speech contract used by the voice pipeline.
package tts

import (
	"context"
	"fmt"
)

// SynthesisError means the speech backend was unreachable or rejected the
// input. No partial file is left at the destination when it occurs.
type SynthesisError struct {
	Cause error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("speech synthesis failed: %v", e.Cause)
}

func (e *SynthesisError) Unwrap() error {
	return e.Cause
}

// Provider renders text as a spoken mp3 at destPath, creating parent
// directories as needed.
type Provider interface {
	Synthesize(ctx context.Context, text, destPath string) error
}
