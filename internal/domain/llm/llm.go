// Package llm defines the answer-generation contract used by the voice
// pipeline. Providers return plain errors; converting them into a speakable
// diagnostic is the orchestrator's decision, not theirs.
package llm

import "context"

// Provider generates an answer for a transcribed question.
type Provider interface {
	Answer(ctx context.Context, question string) (string, error)
}
